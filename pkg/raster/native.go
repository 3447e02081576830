package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/fonts"
	"github.com/matzehuels/qrsheet/pkg/vector"
)

// Native rasterizes with fogleman/gg. It understands the element subset of
// package vector: rect, circle, text and translated groups.
type Native struct{}

// NewNative returns the built-in rasterizer.
func NewNative() *Native { return &Native{} }

// Rasterize implements [Rasterizer]. The document's viewBox is stretched
// onto width x height.
func (n *Native) Rasterize(svg []byte, width, height int) (image.Image, error) {
	if err := checkTarget(width, height); err != nil {
		return nil, err
	}
	doc, err := vector.Parse(svg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "parse svg")
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(float64(width)/doc.Width, float64(height)/doc.Height)

	if err := drawNodes(dc, doc.Children); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterization, err, "draw svg")
	}
	return flatten(dc.Image()), nil
}

func drawNodes(dc *gg.Context, nodes []vector.Node) error {
	for _, node := range nodes {
		if err := drawNode(dc, node); err != nil {
			return err
		}
	}
	return nil
}

func drawNode(dc *gg.Context, node vector.Node) error {
	switch v := node.(type) {
	case vector.Group:
		dc.Push()
		defer dc.Pop()
		dc.Translate(v.TX, v.TY)
		return drawNodes(dc, v.Children)

	case vector.Rect:
		return paintShape(dc, v.Fill, v.Stroke, v.StrokeWidth, func() {
			dc.DrawRectangle(v.X, v.Y, v.W, v.H)
		})

	case vector.Circle:
		return paintShape(dc, v.Fill, v.Stroke, v.StrokeWidth, func() {
			dc.DrawCircle(v.CX, v.CY, v.R)
		})

	case vector.Text:
		return drawText(dc, v)
	}
	return fmt.Errorf("unsupported node %T", node)
}

func paintShape(dc *gg.Context, fill, stroke string, width float64, path func()) error {
	if c, ok, err := parseColor(fill); err != nil {
		return err
	} else if ok {
		path()
		dc.SetColor(c)
		dc.Fill()
	}
	if c, ok, err := parseColor(stroke); err != nil {
		return err
	} else if ok && width > 0 {
		path()
		dc.SetColor(c)
		dc.SetLineWidth(width)
		dc.Stroke()
	}
	return nil
}

func drawText(dc *gg.Context, t vector.Text) error {
	c, ok, err := parseColor(t.Fill)
	if err != nil || !ok || t.Content == "" {
		return err
	}
	face, err := fonts.Face(t.Size)
	if err != nil {
		return fmt.Errorf("load font: %w", err)
	}
	defer face.Close()

	var ax float64
	switch t.Anchor {
	case vector.AnchorMiddle:
		ax = 0.5
	case vector.AnchorEnd:
		ax = 1
	}
	dc.SetFontFace(face)
	dc.SetColor(c)
	// gg transforms each glyph mask by the context matrix, so the face stays
	// at its user-space size.
	dc.DrawStringAnchored(t.Content, t.X, t.Y, ax, 0)
	return nil
}

var namedColors = map[string]color.Color{
	"black": color.Black,
	"white": color.White,
}

// parseColor resolves a paint value. ok is false for "none" and "".
func parseColor(s string) (color.Color, bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == vector.None {
		return nil, false, nil
	}
	if c, found := namedColors[s]; found {
		return c, true, nil
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, false, fmt.Errorf("unsupported color %q", s)
	}
	return c.Clamped(), true, nil
}
