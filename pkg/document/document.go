// Package document writes rendered pages as a multi-page PDF.
//
// Each page image becomes one PDF page whose physical size is the image
// size at the run's dpi, so a 2480x3508 page at 300 dpi prints as A4 with no
// scaling.
package document

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/signintech/gopdf"

	"github.com/matzehuels/qrsheet/pkg/buildinfo"
	"github.com/matzehuels/qrsheet/pkg/errors"
)

// pointsPerInch is the PDF user-space unit.
const pointsPerInch = 72.0

// Writer writes an ordered list of pages to path.
type Writer interface {
	Write(path string, pages []image.Image, dpi float64) error
}

// PDFWriter is the gopdf backed [Writer].
type PDFWriter struct {
	// Title, if set, is written to the document information dictionary.
	Title string
}

// NewPDFWriter returns a PDF writer.
func NewPDFWriter() *PDFWriter { return &PDFWriter{} }

// Write implements [Writer]. The parent directory is created if needed and
// an existing file is replaced. An empty page list is an EMPTY_DOCUMENT
// error and leaves the file system untouched.
func (w *PDFWriter) Write(path string, pages []image.Image, dpi float64) error {
	if len(pages) == 0 {
		return errors.New(errors.ErrCodeEmptyDocument, "nothing generated").For(path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodePersist, err, "create output directory").For(path)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodePersist, err, "create document").For(path)
	}
	defer os.Remove(tmp.Name())

	if err := w.Encode(tmp, pages, dpi); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodePersist, err, "write document").For(path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodePersist, err, "write document").For(path)
	}
	return nil
}

// Encode writes the PDF to out.
func (w *PDFWriter) Encode(out io.Writer, pages []image.Image, dpi float64) error {
	if len(pages) == 0 {
		return errors.New(errors.ErrCodeEmptyDocument, "nothing generated")
	}
	if dpi <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "dpi must be positive, got %g", dpi)
	}

	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit:     gopdf.UnitPT,
		PageSize: PageSize(pages[0].Bounds(), dpi),
	})
	pdf.SetInfo(gopdf.PdfInfo{Title: w.Title, Creator: buildinfo.UserAgent()})

	for i, page := range pages {
		size := PageSize(page.Bounds(), dpi)
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &size})
		if err := pdf.ImageFrom(page, 0, 0, &size); err != nil {
			return errors.Wrap(errors.ErrCodePersist, err, "embed page %d", i+1)
		}
	}

	if err := pdf.Write(out); err != nil {
		return errors.Wrap(errors.ErrCodePersist, fmt.Errorf("gopdf: %w", err), "write document")
	}
	return nil
}

// PageSize converts a page in pixels at dpi to PDF points.
func PageSize(px image.Rectangle, dpi float64) gopdf.Rect {
	return gopdf.Rect{
		W: float64(px.Dx()) / dpi * pointsPerInch,
		H: float64(px.Dy()) / dpi * pointsPerInch,
	}
}
