// Package compose builds the unit image for one code: the QR symbol, its
// human-readable label and optional decoration on a fixed canvas.
//
// Geometry is derived from [config.Unit] once, in [New], so a run with an
// impossible layout fails before the first code is encoded. [Composer.Compose]
// is then a pure function of the code: the same code always produces the same
// bytes.
//
// Canvas layout, top to bottom:
//
//	+---------------------------+
//	|  header band (optional)   |  marker circle centered here
//	|     +---------------+     |
//	|     |               |     |
//	|     |   QR symbol   |     |  S x S, horizontally centered
//	|     |               |     |
//	|     +---------------+     |
//	|          P0301            |  label, baseline just below the symbol
//	+---------------------------+
package compose

import (
	"github.com/matzehuels/qrsheet/pkg/config"
	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/fonts"
	"github.com/matzehuels/qrsheet/pkg/qr"
	"github.com/matzehuels/qrsheet/pkg/vector"
)

const (
	// LabelScale is the label font size relative to the canvas width.
	LabelScale = 0.10

	// baselineGap places the baseline this many font sizes below the symbol.
	baselineGap = 0.75
)

// Region is a square area of the canvas, in pixels.
type Region struct {
	X, Y, Size float64
}

// Geometry is the resolved layout of a unit canvas.
type Geometry struct {
	Width, Height float64
	Symbol        Region

	FontSize      float64
	LabelX        float64 // anchor (middle)
	LabelBaseline float64

	Header float64
	Border float64
	Marker bool
}

// Plan resolves and validates the canvas geometry for u.
func Plan(u config.Unit) (Geometry, error) {
	w, h := float64(u.Width), float64(u.Height)
	s := float64(u.Symbol)
	header, border := float64(u.Header), float64(u.Border)

	if w <= 0 || h <= 0 || s <= 0 {
		return Geometry{}, constraint("canvas %dx%d and symbol %d must be positive", u.Width, u.Height, u.Symbol)
	}
	if s > min(w, h) {
		return Geometry{}, constraint("symbol %d does not fit canvas %dx%d", u.Symbol, u.Width, u.Height)
	}
	if header+s > h {
		return Geometry{}, constraint("header %d plus symbol %d exceeds canvas height %d", u.Header, u.Symbol, u.Height)
	}

	g := Geometry{
		Width:  w,
		Height: h,
		Symbol: Region{
			X:    (w - s) / 2,
			Y:    header + (h-header-s)/2,
			Size: s,
		},
		FontSize: LabelScale * w,
		LabelX:   w / 2,
		Header:   header,
		Border:   border,
		Marker:   u.Marker,
	}
	g.LabelBaseline = g.Symbol.Y + s + baselineGap*g.FontSize

	_, descent, err := fonts.Measure("", g.FontSize)
	if err != nil {
		return Geometry{}, errors.Wrap(errors.ErrCodeLayoutConstraint, err, "measure label font")
	}
	if bottom := g.LabelBaseline + descent; bottom > h-border {
		return Geometry{}, constraint("label bottom %s falls outside canvas height %d less border %d",
			vector.Num(bottom), u.Height, u.Border)
	}
	if g.Symbol.X < border || g.Symbol.Y < border {
		return Geometry{}, constraint("border %d overlaps the symbol", u.Border)
	}
	if u.Marker && u.Header == 0 {
		return Geometry{}, constraint("marker requires a header band")
	}
	return g, nil
}

// FitLabel reports whether label fits between the border lines at the
// planned font size.
func (g Geometry) FitLabel(label string) error {
	width, _, err := fonts.Measure(label, g.FontSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayoutConstraint, err, "measure label").For(label)
	}
	if room := g.Width - 2*g.Border; width > room {
		return errors.New(errors.ErrCodeLayoutConstraint, "label %q is %s px wide, canvas leaves %s px",
			label, vector.Num(width), vector.Num(room)).For(label)
	}
	return nil
}

func constraint(format string, args ...any) error {
	return errors.New(errors.ErrCodeLayoutConstraint, format, args...)
}

// Composer renders unit SVGs. It is safe for concurrent use.
type Composer struct {
	geo   Geometry
	level qr.Level
	enc   qr.Encoder
	color string
}

// New validates the unit geometry and returns a Composer encoding at level.
// A nil enc uses [qr.NewEncoder].
func New(u config.Unit, level qr.Level, enc qr.Encoder) (*Composer, error) {
	geo, err := Plan(u)
	if err != nil {
		return nil, err
	}
	col, err := u.Color()
	if err != nil {
		return nil, err
	}
	if enc == nil {
		enc = qr.NewEncoder()
	}
	return &Composer{geo: geo, level: level, enc: enc, color: col.Hex()}, nil
}

// Geometry returns the resolved canvas layout.
func (c *Composer) Geometry() Geometry { return c.geo }

// Size returns the canvas size in pixels.
func (c *Composer) Size() (width, height int) {
	return int(c.geo.Width), int(c.geo.Height)
}

// Document builds the vector tree for code.
func (c *Composer) Document(code string) (*vector.Document, error) {
	if err := c.geo.FitLabel(code); err != nil {
		return nil, err
	}
	sym, err := c.enc.Encode(code, c.level)
	if err != nil {
		return nil, err
	}
	g := c.geo

	nodes := []vector.Node{
		vector.Rect{W: g.Width, H: g.Height, Fill: "white"},
	}
	if g.Marker {
		nodes = append(nodes, vector.Circle{
			CX:   g.Width / 2,
			CY:   g.Header / 2,
			R:    g.Header / 4,
			Fill: c.color,
		})
	}
	nodes = append(nodes,
		vector.Group{
			TX:       g.Symbol.X,
			TY:       g.Symbol.Y,
			Children: sym.Fragment(g.Symbol.Size / float64(sym.Size())),
		},
		vector.Text{
			X:       g.LabelX,
			Y:       g.LabelBaseline,
			Size:    g.FontSize,
			Family:  fonts.FontFamily,
			Anchor:  vector.AnchorMiddle,
			Fill:    "black",
			Content: code,
		},
	)
	if g.Border > 0 {
		nodes = append(nodes, vector.Rect{
			X:           g.Border / 2,
			Y:           g.Border / 2,
			W:           g.Width - g.Border,
			H:           g.Height - g.Border,
			Fill:        vector.None,
			Stroke:      c.color,
			StrokeWidth: g.Border,
		})
	}
	return &vector.Document{Width: g.Width, Height: g.Height, Children: nodes}, nil
}

// Compose returns the SVG for code.
func (c *Composer) Compose(code string) ([]byte, error) {
	doc, err := c.Document(code)
	if err != nil {
		return nil, err
	}
	return doc.Marshal(), nil
}
