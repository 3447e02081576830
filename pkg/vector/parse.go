package vector

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads an SVG document in the supported subset.
//
// When the root carries a viewBox, coordinates of the returned tree are in
// viewBox units and Width/Height are the viewBox size; otherwise they are the
// declared width and height.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := nextStart(dec)
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "svg" {
		return nil, fmt.Errorf("root element is <%s>, want <svg>", root.Name.Local)
	}

	doc := &Document{}
	if doc.Width, doc.Height, err = viewport(root); err != nil {
		return nil, err
	}

	p := parser{dec: dec, doc: doc}
	if doc.Children, err = p.children("svg"); err != nil {
		return nil, err
	}
	return doc, nil
}

type parser struct {
	dec *xml.Decoder
	doc *Document
}

func nextStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, errors.New("no root element")
		}
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func viewport(se xml.StartElement) (float64, float64, error) {
	if vb, ok := attr(se, "viewBox"); ok {
		f := strings.FieldsFunc(vb, func(r rune) bool { return r == ' ' || r == ',' })
		if len(f) != 4 {
			return 0, 0, fmt.Errorf("invalid viewBox %q", vb)
		}
		w, err1 := strconv.ParseFloat(f[2], 64)
		h, err2 := strconv.ParseFloat(f[3], 64)
		if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
			return 0, 0, fmt.Errorf("invalid viewBox %q", vb)
		}
		return w, h, nil
	}

	ws, okW := attr(se, "width")
	hs, okH := attr(se, "height")
	if !okW || !okH {
		return 0, 0, errors.New("svg has neither viewBox nor width/height")
	}
	w, err := length(ws, 0)
	if err != nil {
		return 0, 0, err
	}
	h, err := length(hs, 0)
	if err != nil {
		return 0, 0, err
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid svg size %sx%s", ws, hs)
	}
	return w, h, nil
}

// children collects nodes until the end tag of the element named parent.
func (p *parser) children(parent string) ([]Node, error) {
	var nodes []Node
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("unexpected end of document inside <%s>", parent)
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.EndElement:
			return nodes, nil
		case xml.StartElement:
			n, err := p.element(t)
			if err != nil {
				return nil, err
			}
			if n != nil {
				nodes = append(nodes, n)
			}
		}
	}
}

func (p *parser) element(se xml.StartElement) (Node, error) {
	var (
		n   Node
		err error
	)
	switch se.Name.Local {
	case "g":
		n, err = p.group(se)
		return n, err
	case "text":
		n, err = p.text(se)
		return n, err
	case "rect":
		n, err = p.rect(se)
	case "circle":
		n, err = p.circle(se)
	default:
		return nil, p.dec.Skip()
	}
	if err != nil {
		return nil, err
	}
	return n, p.dec.Skip()
}

func (p *parser) group(se xml.StartElement) (Node, error) {
	g := Group{}
	if tr, ok := attr(se, "transform"); ok {
		var err error
		if g.TX, g.TY, err = translate(tr); err != nil {
			return nil, err
		}
	}
	children, err := p.children("g")
	if err != nil {
		return nil, err
	}
	g.Children = children
	return g, nil
}

func (p *parser) rect(se xml.StartElement) (Node, error) {
	var r Rect
	var err error
	fields := []struct {
		name string
		dst  *float64
		rel  float64
	}{
		{"x", &r.X, p.doc.Width},
		{"y", &r.Y, p.doc.Height},
		{"width", &r.W, p.doc.Width},
		{"height", &r.H, p.doc.Height},
	}
	for _, f := range fields {
		if *f.dst, err = optLength(se, f.name, f.rel); err != nil {
			return nil, err
		}
	}
	r.Fill, r.Stroke, r.StrokeWidth, err = paintAttrs(se)
	return r, err
}

func (p *parser) circle(se xml.StartElement) (Node, error) {
	var c Circle
	var err error
	if c.CX, err = optLength(se, "cx", p.doc.Width); err != nil {
		return nil, err
	}
	if c.CY, err = optLength(se, "cy", p.doc.Height); err != nil {
		return nil, err
	}
	if c.R, err = optLength(se, "r", 0); err != nil {
		return nil, err
	}
	c.Fill, c.Stroke, c.StrokeWidth, err = paintAttrs(se)
	return c, err
}

func (p *parser) text(se xml.StartElement) (Node, error) {
	t := Text{Size: 16, Anchor: AnchorStart, Fill: "black"}
	var err error
	if t.X, err = optLength(se, "x", p.doc.Width); err != nil {
		return nil, err
	}
	if t.Y, err = optLength(se, "y", p.doc.Height); err != nil {
		return nil, err
	}
	if s, ok := attr(se, "font-size"); ok {
		if t.Size, err = length(s, 0); err != nil {
			return nil, err
		}
	}
	if s, ok := attr(se, "font-family"); ok {
		t.Family = s
	}
	if s, ok := attr(se, "text-anchor"); ok {
		t.Anchor = Anchor(s)
	}
	if s, ok := attr(se, "fill"); ok {
		t.Fill = s
	}

	var content strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read <text>: %w", err)
		}
		switch v := tok.(type) {
		case xml.CharData:
			content.Write(v)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	t.Content = strings.TrimSpace(content.String())
	return t, nil
}

func paintAttrs(se xml.StartElement) (fill, stroke string, width float64, err error) {
	fill = "black"
	if s, ok := attr(se, "fill"); ok {
		fill = s
	}
	if s, ok := attr(se, "stroke"); ok {
		stroke = s
		width = 1
	}
	if s, ok := attr(se, "stroke-width"); ok {
		if width, err = length(s, 0); err != nil {
			return "", "", 0, err
		}
	}
	return fill, stroke, width, nil
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value), true
		}
	}
	return "", false
}

func optLength(se xml.StartElement, name string, rel float64) (float64, error) {
	s, ok := attr(se, name)
	if !ok {
		return 0, nil
	}
	return length(s, rel)
}

// length parses a number with an optional "px" unit, or a percentage of rel.
func length(s string, rel float64) (float64, error) {
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid length %q", s)
		}
		return v / 100 * rel, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return v, nil
}

// translate parses "translate(x,y)", "translate(x y)" or "translate(x)".
func translate(s string) (float64, float64, error) {
	args, ok := strings.CutPrefix(s, "translate(")
	if !ok || !strings.HasSuffix(args, ")") {
		return 0, 0, fmt.Errorf("unsupported transform %q", s)
	}
	f := strings.FieldsFunc(strings.TrimSuffix(args, ")"), func(r rune) bool { return r == ' ' || r == ',' })
	if len(f) < 1 || len(f) > 2 {
		return 0, 0, fmt.Errorf("unsupported transform %q", s)
	}
	x, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("unsupported transform %q", s)
	}
	var y float64
	if len(f) == 2 {
		if y, err = strconv.ParseFloat(f[1], 64); err != nil {
			return 0, 0, fmt.Errorf("unsupported transform %q", s)
		}
	}
	return x, y, nil
}
