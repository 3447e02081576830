// Package pkg provides the libraries behind qrsheet, a generator for
// printable sheets of numbered QR code labels.
//
// # Overview
//
// A run turns an integer range into a PDF. Every number becomes a code, every
// code becomes a label, and the labels are tiled onto pages:
//
//	[start, end]
//	     ↓
//	[sequence] codes P0301, P0302, ...
//	     ↓
//	[qr] module matrix per code
//	     ↓
//	[compose] SVG label (symbol + text + decoration)
//	     ↓
//	[raster] pixel image (native gg backend or rsvg-convert), cached in [cache]
//	     ↓
//	[store] per-code .svg and .png files
//	     ↓
//	[layout] A4 pages with a fixed grid of units
//	     ↓
//	[document] multi-page PDF
//
// [pipeline] wires these stages together and is the entry point for both the
// CLI and the HTTP server.
//
// # Quick Start
//
//	cfg := config.Default()
//	runner, err := pipeline.NewRunner(cfg)
//	if err != nil {
//	    return err
//	}
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, 301, 480, pipeline.Options{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Document, result.Stats.Pages)
//
// # Main Packages
//
// ## Domain
//
// [sequence] - Zero-padded code ranges.
//
// [qr] - Error-correction levels and the module matrix of one symbol.
//
// [vector] - A small SVG node tree with a writer and a parser.
//
// [compose] - Label geometry and SVG composition.
//
// [raster] - SVG to image backends and the caching decorator.
//
// [layout] - Page grid geometry and pagination.
//
// [document] - PDF output.
//
// ## Infrastructure
//
// [config] - Defaults and TOML configuration.
//
// [cache] - File, Redis, and null raster caches.
//
// [store] - Per-code file output.
//
// [errors] - Coded errors shared by every stage.
//
// [observability] - Hooks for runs, caches, and HTTP requests.
//
// [fonts] - The embedded label font.
//
// [buildinfo] - Version information set at build time.
package pkg
