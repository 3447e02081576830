package layout

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/qrsheet/pkg/errors"
)

// Paginate places units on as many pages as needed, in order. Every page
// starts opaque white; cells after the last unit stay white.
func (g Grid) Paginate(units []image.Image) ([]*image.NRGBA, error) {
	p := NewPaginator(g)
	for _, u := range units {
		if err := p.Add(u); err != nil {
			return nil, err
		}
	}
	return p.Flush(), nil
}

// Paginator places units one at a time. Units must be added in the order
// they should appear. It is not safe for concurrent use.
type Paginator struct {
	grid  Grid
	pages []*image.NRGBA
	cur   *image.NRGBA
	n     int

	// OnPage, if set, is called with the page index whenever a page is
	// started.
	OnPage func(page int)
}

// NewPaginator returns an empty paginator for g.
func NewPaginator(g Grid) *Paginator {
	return &Paginator{grid: g}
}

// Add places unit in the next free cell, starting a new page when the
// current one is full. A unit whose size differs from the grid's unit size
// is rejected with LAYOUT_CONSTRAINT.
func (p *Paginator) Add(unit image.Image) error {
	b := unit.Bounds()
	if b.Dx() != p.grid.UnitWidth || b.Dy() != p.grid.UnitHeight {
		return errors.New(errors.ErrCodeLayoutConstraint,
			"unit %d is %dx%d, grid expects %dx%d", p.n, b.Dx(), b.Dy(), p.grid.UnitWidth, p.grid.UnitHeight)
	}

	pl := p.grid.Place(p.n)
	if pl.Slot == 0 {
		p.cur = imaging.New(p.grid.PageWidth, p.grid.PageHeight, color.White)
		p.pages = append(p.pages, p.cur)
		if p.OnPage != nil {
			p.OnPage(pl.Page)
		}
	}
	// In place; imaging.Paste would clone the whole page per unit.
	draw.Draw(p.cur, pl.Cell, unit, b.Min, draw.Over)
	p.n++
	return nil
}

// Len returns the number of units added.
func (p *Paginator) Len() int { return p.n }

// Flush returns the pages built so far, including a short final page.
func (p *Paginator) Flush() []*image.NRGBA {
	return p.pages
}
