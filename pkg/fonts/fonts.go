// Package fonts provides the embedded label font.
//
// Labels are set in Go Regular, which ships with golang.org/x/image, so
// rasterization never depends on fonts installed on the host.
package fonts

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the family name written into generated SVGs. Viewers that
// lack Helvetica fall back through the list.
const FontFamily = "Helvetica, Arial, sans-serif"

var (
	parsed     *opentype.Font
	parsedErr  error
	parsedOnce sync.Once
)

// Regular returns the parsed Go Regular font. It is parsed once.
func Regular() (*opentype.Font, error) {
	parsedOnce.Do(func() {
		parsed, parsedErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parsedErr
}

// Face returns a face of the label font at size pixels (72 dpi, so one
// point is one pixel).
func Face(size float64) (font.Face, error) {
	f, err := Regular()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Measure returns the advance width of s and the descent below the baseline,
// both in pixels, for the label font at size.
func Measure(s string, size float64) (width, descent float64, err error) {
	face, err := Face(size)
	if err != nil {
		return 0, 0, err
	}
	defer face.Close()
	return px(font.MeasureString(face, s)), px(face.Metrics().Descent), nil
}

func px(v fixed.Int26_6) float64 { return float64(v) / 64 }
