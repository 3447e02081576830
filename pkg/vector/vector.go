package vector

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// None disables fill or stroke.
const None = "none"

// Node is one element of the document tree.
type Node interface {
	writeSVG(buf *bytes.Buffer, depth int)
}

// Document is the root <svg> element.
type Document struct {
	Width, Height float64
	Children      []Node
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H  float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Circle is a circle given by center and radius.
type Circle struct {
	CX, CY, R   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// Anchor is the horizontal alignment of a Text node.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Text is a single line of text; Y is the baseline.
type Text struct {
	X, Y    float64
	Size    float64
	Family  string
	Anchor  Anchor
	Fill    string
	Content string
}

// Group translates its children by (TX, TY).
type Group struct {
	TX, TY   float64
	Children []Node
}

// Marshal serializes the document, including the XML declaration.
func (d *Document) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		Num(d.Width), Num(d.Height), Num(d.Width), Num(d.Height))
	for _, n := range d.Children {
		n.writeSVG(&buf, 1)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r Rect) writeSVG(buf *bytes.Buffer, depth int) {
	indent(buf, depth)
	fmt.Fprintf(buf, `<rect x="%s" y="%s" width="%s" height="%s"`, Num(r.X), Num(r.Y), Num(r.W), Num(r.H))
	paint(buf, r.Fill, r.Stroke, r.StrokeWidth)
	buf.WriteString("/>\n")
}

func (c Circle) writeSVG(buf *bytes.Buffer, depth int) {
	indent(buf, depth)
	fmt.Fprintf(buf, `<circle cx="%s" cy="%s" r="%s"`, Num(c.CX), Num(c.CY), Num(c.R))
	paint(buf, c.Fill, c.Stroke, c.StrokeWidth)
	buf.WriteString("/>\n")
}

func (t Text) writeSVG(buf *bytes.Buffer, depth int) {
	indent(buf, depth)
	fmt.Fprintf(buf, `<text x="%s" y="%s" font-size="%s"`, Num(t.X), Num(t.Y), Num(t.Size))
	if t.Family != "" {
		fmt.Fprintf(buf, ` font-family="%s"`, escape(t.Family))
	}
	if t.Anchor != "" {
		fmt.Fprintf(buf, ` text-anchor="%s"`, t.Anchor)
	}
	if t.Fill != "" {
		fmt.Fprintf(buf, ` fill="%s"`, escape(t.Fill))
	}
	fmt.Fprintf(buf, ">%s</text>\n", escape(t.Content))
}

func (g Group) writeSVG(buf *bytes.Buffer, depth int) {
	indent(buf, depth)
	fmt.Fprintf(buf, "<g transform=\"translate(%s,%s)\">\n", Num(g.TX), Num(g.TY))
	for _, n := range g.Children {
		n.writeSVG(buf, depth+1)
	}
	indent(buf, depth)
	buf.WriteString("</g>\n")
}

func paint(buf *bytes.Buffer, fill, stroke string, width float64) {
	if fill != "" {
		fmt.Fprintf(buf, ` fill="%s"`, escape(fill))
	}
	if stroke != "" && stroke != None {
		fmt.Fprintf(buf, ` stroke="%s" stroke-width="%s"`, escape(stroke), Num(width))
	}
}

func indent(buf *bytes.Buffer, depth int) {
	buf.WriteString(strings.Repeat("  ", depth))
}

// Num formats a coordinate rounded to four decimals without trailing zeros.
func Num(f float64) string {
	r := math.Round(f*1e4) / 1e4
	if r == 0 {
		r = 0 // normalize -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
