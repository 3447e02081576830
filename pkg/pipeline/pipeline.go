// Package pipeline turns a range of integers into a printable sheet of QR
// codes.
//
// One run is a strictly ordered fold over the codes of the range:
//
//  1. Sequence: derive the codes (prefix + zero-padded number)
//  2. Compose: build the unit SVG (symbol, label, decoration)
//  3. Rasterize: render the SVG at the unit size, through the raster cache
//  4. Persist: write <code>.svg and <code>.png
//  5. Paginate: place the unit in the next grid cell
//  6. Write: emit all pages as one PDF
//
// Steps 2 to 4 are independent per code and may run in parallel
// ([Options.Workers]); results are always paginated in ascending code order.
//
// All geometry is validated by [NewRunner], so a run never fails halfway
// because the layout does not fit.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(cfg,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithCache(c, nil),
//	)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//	result, err := runner.Execute(ctx, 301, 480, pipeline.Options{Workers: 4})
package pipeline

import (
	"image"
	"time"
)

// Options control a single run.
type Options struct {
	// Workers is the number of codes processed concurrently. Values below 2
	// process codes one after another.
	Workers int

	// DocumentPath overrides the configured output document.
	DocumentPath string

	// SkipUnitFiles disables writing the per-code SVG and PNG files.
	SkipUnitFiles bool
}

// Unit is one rendered code.
type Unit struct {
	Code     string
	SVG      []byte
	PNG      []byte
	Image    image.Image
	CacheHit bool
}

// Result describes a completed run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Codes are the generated codes in page order.
	Codes []string

	// Document is the path of the written PDF.
	Document string

	// Stats contains counts and timing.
	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Units     int
	Pages     int
	CacheHits int
	UnitTime  time.Duration // summed across workers
	WriteTime time.Duration
	Duration  time.Duration
}
