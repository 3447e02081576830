package layout

import (
	"image"
	"math"

	"github.com/matzehuels/qrsheet/pkg/config"
	"github.com/matzehuels/qrsheet/pkg/errors"
)

const mmPerInch = 25.4

// PagePixels converts a physical length to pixels at dpi.
func PagePixels(mm, dpi float64) int {
	return int(math.Round(mm / mmPerInch * dpi))
}

// Grid is the placement geometry of one page.
type Grid struct {
	PageWidth, PageHeight int
	UnitWidth, UnitHeight int
	Cols, Rows            int
	HSpace, VSpace        int
	DPI                   float64
}

// NewGrid computes the grid for page holding units of unitW x unitH pixels.
func NewGrid(page config.Page, unitW, unitH int) (Grid, error) {
	if page.Cols < 1 || page.Rows < 1 {
		return Grid{}, errors.New(errors.ErrCodeInvalidConfig, "grid must have at least one column and row, got %dx%d", page.Cols, page.Rows)
	}
	if unitW <= 0 || unitH <= 0 {
		return Grid{}, errors.New(errors.ErrCodeInvalidConfig, "unit size must be positive, got %dx%d", unitW, unitH)
	}

	g := Grid{
		PageWidth:  PagePixels(page.WidthMM, page.DPI),
		PageHeight: PagePixels(page.HeightMM, page.DPI),
		UnitWidth:  unitW,
		UnitHeight: unitH,
		Cols:       page.Cols,
		Rows:       page.Rows,
		DPI:        page.DPI,
	}
	if g.Cols*unitW > g.PageWidth {
		return Grid{}, errors.New(errors.ErrCodeGridOverflow,
			"%d columns of %dpx need %dpx, page is %dpx wide", g.Cols, unitW, g.Cols*unitW, g.PageWidth)
	}
	if g.Rows*unitH > g.PageHeight {
		return Grid{}, errors.New(errors.ErrCodeGridOverflow,
			"%d rows of %dpx need %dpx, page is %dpx high", g.Rows, unitH, g.Rows*unitH, g.PageHeight)
	}

	g.HSpace = (g.PageWidth - g.Cols*unitW) / (g.Cols + 1)
	g.VSpace = (g.PageHeight - g.Rows*unitH) / (g.Rows + 1)
	return g, nil
}

// PerPage returns the number of cells on one page.
func (g Grid) PerPage() int { return g.Cols * g.Rows }

// Pages returns how many pages n units occupy.
func (g Grid) Pages(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + g.PerPage() - 1) / g.PerPage()
}

// Cell returns the pixel rectangle of slot i on a page, 0 <= i < PerPage().
func (g Grid) Cell(i int) image.Rectangle {
	row, col := i/g.Cols, i%g.Cols
	x := g.HSpace + col*(g.UnitWidth+g.HSpace)
	y := g.VSpace + row*(g.UnitHeight+g.VSpace)
	return image.Rect(x, y, x+g.UnitWidth, y+g.UnitHeight)
}

// Placement is where unit Index of a run lands.
type Placement struct {
	Index int
	Page  int
	Slot  int
	Cell  image.Rectangle
}

// Place returns the placement of unit i.
func (g Grid) Place(i int) Placement {
	slot := i % g.PerPage()
	return Placement{Index: i, Page: i / g.PerPage(), Slot: slot, Cell: g.Cell(slot)}
}

// Placements partitions n units into pages in order.
func (g Grid) Placements(n int) []Placement {
	out := make([]Placement, 0, max(n, 0))
	for i := range max(n, 0) {
		out = append(out, g.Place(i))
	}
	return out
}

// Bounds returns the page rectangle.
func (g Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.PageWidth, g.PageHeight)
}
