package raster

import (
	"image"
	"testing"

	"github.com/matzehuels/qrsheet/pkg/compose"
	"github.com/matzehuels/qrsheet/pkg/config"
	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/qr"
	"github.com/matzehuels/qrsheet/pkg/vector"
)

func unitSVG(t *testing.T, code string) []byte {
	t.Helper()
	c, err := compose.New(config.Default().Unit, qr.Medium, nil)
	if err != nil {
		t.Fatal(err)
	}
	svg, err := c.Compose(code)
	if err != nil {
		t.Fatal(err)
	}
	return svg
}

func isDark(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return (r+g+b)/3 < 0x8000
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "*raster.Native", false},
		{"native", "*raster.Native", false},
		{"rsvg", "*raster.RSVG", false},
		{"cairo", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.name)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidConfig) {
					t.Errorf("New(%q) error = %v, want INVALID_CONFIG", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error: %v", tt.name, err)
			}
			switch r.(type) {
			case *Native, *RSVG:
			default:
				t.Errorf("New(%q) = %T, want %s", tt.name, r, tt.want)
			}
		})
	}
}

func TestNativeRasterize(t *testing.T) {
	img, err := NewNative().Rasterize(unitSVG(t, "P0301"), 400, 400)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 400 || b.Dy() != 400 {
		t.Fatalf("Rasterize() size = %dx%d, want 400x400", b.Dx(), b.Dy())
	}

	// Canvas margin and quiet zone are white, the top-left finder pattern
	// starts at module 4 of the symbol, which sits at (50, 50).
	module := 300.0 / 29
	at := func(m float64) int { return 50 + int((m+0.5)*module) }
	if isDark(img, 5, 5) {
		t.Error("canvas corner is dark")
	}
	if isDark(img, at(1), at(1)) {
		t.Error("quiet zone is dark")
	}
	if !isDark(img, at(4), at(4)) {
		t.Error("finder pattern corner is light")
	}

	label := false
	for y := 355; y < 395 && !label; y++ {
		for x := 120; x < 280; x++ {
			if isDark(img, x, y) {
				label = true
				break
			}
		}
	}
	if !label {
		t.Error("no label pixels below the symbol")
	}
}

func TestNativeOpaque(t *testing.T) {
	img, err := NewNative().Rasterize(unitSVG(t, "P0480"), 400, 400)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 7 {
		for x := b.Min.X; x < b.Max.X; x += 7 {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				t.Fatalf("pixel (%d,%d) alpha = %#x, want opaque", x, y, a)
			}
		}
	}
}

func TestNativeScales(t *testing.T) {
	img, err := NewNative().Rasterize(unitSVG(t, "P0301"), 200, 100)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("Rasterize() size = %dx%d, want 200x100", b.Dx(), b.Dy())
	}
}

// inkSpan returns the horizontal extent of dark pixels.
func inkSpan(img image.Image) int {
	b := img.Bounds()
	lo, hi := b.Max.X, b.Min.X-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if isDark(img, x, y) {
				lo, hi = min(lo, x), max(hi, x)
			}
		}
	}
	return hi - lo + 1
}

func TestNativeTextScales(t *testing.T) {
	doc := &vector.Document{Width: 100, Height: 40, Children: []vector.Node{
		vector.Text{X: 50, Y: 30, Size: 20, Anchor: vector.AnchorMiddle, Fill: "black", Content: "P0301"},
	}}
	svg := doc.Marshal()

	small, err := NewNative().Rasterize(svg, 100, 40)
	if err != nil {
		t.Fatal(err)
	}
	large, err := NewNative().Rasterize(svg, 200, 80)
	if err != nil {
		t.Fatal(err)
	}

	s, l := inkSpan(small), inkSpan(large)
	if s <= 0 {
		t.Fatal("no text drawn at 1x")
	}
	if diff := l - 2*s; diff < -4 || diff > 4 {
		t.Errorf("label width at 2x = %d px, want about %d (1x = %d)", l, 2*s, s)
	}
}

func TestNativeDecoration(t *testing.T) {
	doc := &vector.Document{Width: 10, Height: 10, Children: []vector.Node{
		vector.Rect{X: 1, Y: 1, W: 8, H: 8, Fill: vector.None, Stroke: "#ff0000", StrokeWidth: 2},
		vector.Circle{CX: 5, CY: 5, R: 2, Fill: "#00f"},
	}}
	img, err := NewNative().Rasterize(doc.Marshal(), 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b, _ := img.At(1, 5).RGBA(); r < 0xf000 || g > 0x1000 || b > 0x1000 {
		t.Errorf("border pixel = (%#x,%#x,%#x), want red", r, g, b)
	}
	if r, g, b, _ := img.At(5, 5).RGBA(); b < 0xf000 || r > 0x1000 || g > 0x1000 {
		t.Errorf("marker pixel = (%#x,%#x,%#x), want blue", r, g, b)
	}
	if isDark(img, 7, 2) {
		t.Error("unfilled interior is dark")
	}
}

func TestNativeErrors(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		w, h int
	}{
		{"malformed", "<svg", 10, 10},
		{"not svg", `<html width="1" height="1"></html>`, 10, 10},
		{"no size", `<svg></svg>`, 10, 10},
		{"bad color", `<svg width="1" height="1"><rect width="1" height="1" fill="url(#g)"/></svg>`, 10, 10},
		{"zero target", `<svg width="1" height="1"></svg>`, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewNative().Rasterize([]byte(tt.svg), tt.w, tt.h)
			if !errors.Is(err, errors.ErrCodeRasterization) {
				t.Errorf("Rasterize() error = %v, want RASTERIZATION", err)
			}
		})
	}
}

func TestRSVGMissingBinary(t *testing.T) {
	r := &RSVG{Binary: "qrsheet-no-such-rsvg-convert"}
	if r.Available() {
		t.Skip("unexpected binary on PATH")
	}
	_, err := r.Rasterize(unitSVG(t, "P0301"), 400, 400)
	if !errors.Is(err, errors.ErrCodeRasterization) {
		t.Errorf("Rasterize() error = %v, want RASTERIZATION", err)
	}
}
