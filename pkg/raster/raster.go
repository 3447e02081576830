// Package raster turns unit SVGs into bitmaps.
//
// Two backends are available:
//
//   - [Native] draws the SVG subset produced by package compose with
//     fogleman/gg and the embedded label font. It needs nothing installed.
//   - [RSVG] shells out to rsvg-convert (librsvg) and accepts any SVG.
//
// Both return an opaque image of exactly the requested size.
package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

// Rasterizer converts an SVG document to a width x height bitmap.
type Rasterizer interface {
	Rasterize(svg []byte, width, height int) (image.Image, error)
}

// Backend names accepted by [New].
const (
	BackendNative = "native"
	BackendRSVG   = "rsvg"
)

// Backends lists the accepted backend names, for flag help and completion.
var Backends = []string{BackendNative, BackendRSVG}

// New returns the backend called name. The empty name selects [Native].
func New(name string) (Rasterizer, error) {
	switch name {
	case "", BackendNative:
		return NewNative(), nil
	case BackendRSVG:
		return NewRSVG(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown rasterizer %q (want %s or %s)", name, BackendNative, BackendRSVG)
}

// flatten composites img onto an opaque white canvas of the same size.
func flatten(img image.Image) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

func checkSize(img image.Image, width, height int) error {
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return errors.New(errors.ErrCodeRasterization, "rendered %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}
	return nil
}

func checkTarget(width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New(errors.ErrCodeRasterization, "invalid target size %dx%d", width, height)
	}
	return nil
}
