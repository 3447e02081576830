package document

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

func page(w, h int) image.Image {
	img := imaging.New(w, h, color.White)
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.Black)
	}
	return img
}

// readBack returns the page count and the MediaBox of every page.
func readBack(t *testing.T, path string) []pdf.Rectangle {
	t.Helper()
	r, err := pdf.Open(path, nil)
	if err != nil {
		t.Fatalf("pdf.Open() error: %v", err)
	}
	defer r.Close()

	n, err := pagetree.NumPages(r)
	if err != nil {
		t.Fatalf("NumPages() error: %v", err)
	}
	boxes := make([]pdf.Rectangle, n)
	for i := range n {
		_, dict, err := pagetree.GetPage(r, i)
		if err != nil {
			t.Fatalf("GetPage(%d) error: %v", i, err)
		}
		box, err := pdf.GetRectangle(r, dict["MediaBox"])
		if err != nil || box == nil {
			t.Fatalf("page %d MediaBox = %v, %v", i, box, err)
		}
		boxes[i] = *box
	}
	return boxes
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestPageSize(t *testing.T) {
	got := PageSize(image.Rect(0, 0, 2480, 3508), 300)
	if !near(got.W, 595.2) || !near(got.H, 841.92) {
		t.Errorf("PageSize(A4 @300) = %vx%v, want 595.2x841.92", got.W, got.H)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sheet.pdf")
	pages := []image.Image{page(300, 150), page(300, 150), page(300, 150)}

	if err := NewPDFWriter().Write(path, pages, 150); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	boxes := readBack(t, path)
	if len(boxes) != 3 {
		t.Fatalf("page count = %d, want 3", len(boxes))
	}
	for i, b := range boxes {
		if !near(b.URx-b.LLx, 144) || !near(b.URy-b.LLy, 72) {
			t.Errorf("page %d MediaBox = %+v, want 144x72 pt", i, b)
		}
	}
}

func TestWriteA4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a4.pdf")
	w := &PDFWriter{Title: "codes"}
	if err := w.Write(path, []image.Image{page(2480, 3508)}, 300); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	boxes := readBack(t, path)
	if len(boxes) != 1 {
		t.Fatalf("page count = %d, want 1", len(boxes))
	}
	b := boxes[0]
	if !near(b.URx-b.LLx, 595.2) || !near(b.URy-b.LLy, 841.92) {
		t.Errorf("MediaBox = %+v, want A4 (595.2x841.92 pt)", b)
	}
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	w := NewPDFWriter()
	if err := w.Write(path, []image.Image{page(100, 100), page(100, 100)}, 100); err != nil {
		t.Fatal(err)
	}
	if err := w.Write(path, []image.Image{page(100, 100)}, 100); err != nil {
		t.Fatalf("second Write() error: %v", err)
	}
	if n := len(readBack(t, path)); n != 1 {
		t.Errorf("page count after rewrite = %d, want 1", n)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the document", len(entries))
	}
}

func TestWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := NewPDFWriter().Write(path, nil, 300)
	if !errors.Is(err, errors.ErrCodeEmptyDocument) {
		t.Errorf("Write(nil) error = %v, want EMPTY_DOCUMENT", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("Write(nil) created %s", path)
	}
}

func TestEncodeInvalidDPI(t *testing.T) {
	err := NewPDFWriter().Encode(&discard{}, []image.Image{page(10, 10)}, 0)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Encode(dpi=0) error = %v, want INVALID_CONFIG", err)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
