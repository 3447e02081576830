// Package layout tiles unit images onto fixed-size print pages.
//
// A [Grid] is computed once from the physical page (millimetres and dpi)
// and the unit size in pixels. Units are placed row-major, left to right
// then top to bottom, with equal gaps between units and at the page edges:
//
//	h_space = floor((page_w - cols*unit_w) / (cols+1))
//	x(col)  = h_space + col*(unit_w + h_space)
//
// and the same for rows. Because the gaps are floored, the right and bottom
// margins can be a few pixels wider than the others, but units never
// overlap and never cross the page edge.
//
// A grid that cannot hold Cols x Rows units is rejected by [NewGrid] with
// GRID_OVERFLOW, before any unit is rendered.
//
// [Grid.Paginate] lays out a complete slice; [Paginator] does the same one
// unit at a time, for callers that produce units as a stream.
package layout
