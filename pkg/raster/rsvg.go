package raster

import (
	"bytes"
	"fmt"
	"image"
	"os/exec"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

// RSVG rasterizes by shelling out to rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
type RSVG struct {
	// Binary is the executable to run; defaults to "rsvg-convert".
	Binary string
}

// NewRSVG returns an rsvg-convert backed rasterizer.
func NewRSVG() *RSVG { return &RSVG{Binary: "rsvg-convert"} }

// Available reports whether the binary can be found on PATH.
func (r *RSVG) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

func (r *RSVG) binary() string {
	if r.Binary == "" {
		return "rsvg-convert"
	}
	return r.Binary
}

// Rasterize implements [Rasterizer].
func (r *RSVG) Rasterize(svg []byte, width, height int) (image.Image, error) {
	if err := checkTarget(width, height); err != nil {
		return nil, err
	}
	if !r.Available() {
		return nil, errors.New(errors.ErrCodeRasterization,
			"rsvg rasterizer requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")
	}

	cmd := exec.Command(r.binary(), "-f", "png", "-w", strconv.Itoa(width), "-h", strconv.Itoa(height))
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, fmt.Errorf("%v: %s", err, errBuf.String()), "rsvg-convert")
	}

	img, err := imaging.Decode(&out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "decode rsvg-convert output")
	}
	if err := checkSize(img, width, height); err != nil {
		return nil, err
	}
	return flatten(img), nil
}
