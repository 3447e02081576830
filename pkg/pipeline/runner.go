package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/qrsheet/pkg/cache"
	"github.com/matzehuels/qrsheet/pkg/compose"
	"github.com/matzehuels/qrsheet/pkg/config"
	"github.com/matzehuels/qrsheet/pkg/document"
	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/layout"
	"github.com/matzehuels/qrsheet/pkg/observability"
	"github.com/matzehuels/qrsheet/pkg/qr"
	"github.com/matzehuels/qrsheet/pkg/raster"
	"github.com/matzehuels/qrsheet/pkg/sequence"
	"github.com/matzehuels/qrsheet/pkg/store"
)

// Runner executes runs for one configuration.
//
// A Runner holds no per-run state, so multiple goroutines can call Execute
// and RenderUnit concurrently (the HTTP server does).
type Runner struct {
	cfg      config.Config
	composer *compose.Composer
	grid     layout.Grid
	raster   *raster.Cached
	cache    cache.Cache
	writer   document.Writer
	logger   *log.Logger

	// build options, consumed by NewRunner
	encoder    qr.Encoder
	rasterizer raster.Rasterizer
	keyer      cache.Keyer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithRasterizer sets the rasterizer backend. The default is raster.Native.
func WithRasterizer(rz raster.Rasterizer) Option {
	return func(r *Runner) { r.rasterizer = rz }
}

// WithCache sets the raster cache and its keyer. A nil keyer uses
// cache.DefaultKeyer. The default is no caching.
func WithCache(c cache.Cache, keyer cache.Keyer) Option {
	return func(r *Runner) { r.cache, r.keyer = c, keyer }
}

// WithEncoder replaces the QR encoder.
func WithEncoder(enc qr.Encoder) Option {
	return func(r *Runner) { r.encoder = enc }
}

// WithWriter replaces the document writer.
func WithWriter(w document.Writer) Option {
	return func(r *Runner) { r.writer = w }
}

// NewRunner validates cfg, including the canvas and page geometry, and
// returns a Runner. No file is touched.
func NewRunner(cfg config.Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if r.rasterizer == nil {
		r.rasterizer = raster.NewNative()
	}
	if r.cache == nil {
		r.cache = cache.NewNullCache()
	}
	if r.writer == nil {
		r.writer = document.NewPDFWriter()
	}

	var err error
	if r.composer, err = compose.New(cfg.Unit, cfg.Level, r.encoder); err != nil {
		return nil, err
	}
	if r.grid, err = layout.NewGrid(cfg.Page, cfg.Unit.Width, cfg.Unit.Height); err != nil {
		return nil, err
	}
	r.raster = raster.NewCached(r.rasterizer, r.cache, r.keyer, time.Duration(cfg.Cache.TTL))
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() config.Config { return r.cfg }

// Grid returns the page grid.
func (r *Runner) Grid() layout.Grid { return r.grid }

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}

// Sequence returns the codes for [start, end] under the runner's prefix and
// digit count.
func (r *Runner) Sequence(start, end int) (sequence.Sequence, error) {
	return sequence.New(r.cfg.Prefix, r.cfg.Digits, start, end)
}

// RenderUnit composes and rasterizes one code without persisting it.
func (r *Runner) RenderUnit(ctx context.Context, code string) (*Unit, error) {
	svg, err := r.composer.Compose(code)
	if err != nil {
		return nil, errors.WithSubject(err, code)
	}
	w, h := r.composer.Size()
	ras, err := r.raster.RasterizeContext(ctx, svg, w, h)
	if err != nil {
		return nil, errors.WithSubject(err, code)
	}
	return &Unit{Code: code, SVG: svg, PNG: ras.PNG, Image: ras.Image, CacheHit: ras.CacheHit}, nil
}

// Execute generates the sheet for [start, end]. An invalid range is
// rejected before anything is written.
func (r *Runner) Execute(ctx context.Context, start, end int, opts Options) (*Result, error) {
	seq, err := r.Sequence(start, end)
	if err != nil {
		return nil, err
	}
	// Go Regular digits share one advance, so the last code is the widest.
	if err := r.composer.Geometry().FitLabel(seq.Format(seq.End())); err != nil {
		return nil, err
	}

	var st *store.Store
	if !opts.SkipUnitFiles {
		if st, err = store.New(r.cfg.Output.SVGDir, r.cfg.Output.PNGDir); err != nil {
			return nil, err
		}
	}
	docPath := opts.DocumentPath
	if docPath == "" {
		docPath = r.cfg.Output.Document
	}

	runID := uuid.NewString()
	logger := r.logger.With("run", runID)
	hooks := observability.Pipeline()
	begin := time.Now()
	result := &Result{RunID: runID, Codes: seq.Codes(), Document: docPath}

	hooks.OnRunStart(ctx, runID, seq.Len())
	logger.Info("generating sheet",
		"codes", seq.Len(),
		"first", seq.Format(seq.Start()),
		"last", seq.Format(seq.End()),
		"pages", r.grid.Pages(seq.Len()))

	pages, err := r.units(ctx, logger, result, st, opts.Workers)
	if err != nil {
		hooks.OnRunComplete(ctx, runID, 0, time.Since(begin), err)
		return nil, err
	}

	writeStart := time.Now()
	if err := r.writer.Write(docPath, pages, r.cfg.Page.DPI); err != nil {
		hooks.OnRunComplete(ctx, runID, 0, time.Since(begin), err)
		return nil, err
	}
	result.Stats.WriteTime = time.Since(writeStart)
	result.Stats.Pages = len(pages)
	result.Stats.Duration = time.Since(begin)

	logger.Info("wrote document",
		"path", docPath,
		"pages", len(pages),
		"duration", result.Stats.WriteTime)
	hooks.OnRunComplete(ctx, runID, len(pages), result.Stats.Duration, nil)
	return result, nil
}

// units runs the per-code stage and paginates the results in order.
func (r *Runner) units(ctx context.Context, logger *log.Logger, result *Result, st *store.Store, workers int) ([]image.Image, error) {
	pager := layout.NewPaginator(r.grid)
	pager.OnPage = func(page int) {
		observability.Pipeline().OnPageStart(ctx, page)
		logger.Debug("started page", "page", page+1)
	}

	place := func(u *Unit, elapsed time.Duration) error {
		result.Stats.Units++
		result.Stats.UnitTime += elapsed
		if u.CacheHit {
			result.Stats.CacheHits++
		}
		return pager.Add(u.Image)
	}

	codes := result.Codes
	if workers < 2 {
		for _, code := range codes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			u, elapsed, err := r.unit(ctx, logger, st, code)
			if err != nil {
				return nil, err
			}
			if err := place(u, elapsed); err != nil {
				return nil, err
			}
		}
	} else {
		done := make([]*Unit, len(codes))
		unitTimes := make([]time.Duration, len(codes))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, code := range codes {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				u, elapsed, err := r.unit(gctx, logger, st, code)
				if err != nil {
					return err
				}
				done[i], unitTimes[i] = u, elapsed
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, u := range done {
			if err := place(u, unitTimes[i]); err != nil {
				return nil, err
			}
		}
	}

	pages := pager.Flush()
	out := make([]image.Image, len(pages))
	for i, p := range pages {
		out[i] = p
	}
	return out, nil
}

// unit renders and persists one code.
func (r *Runner) unit(ctx context.Context, logger *log.Logger, st *store.Store, code string) (*Unit, time.Duration, error) {
	start := time.Now()
	u, err := r.RenderUnit(ctx, code)
	if err == nil && st != nil {
		err = st.Save(code, u.SVG, u.PNG)
	}
	elapsed := time.Since(start)
	observability.Pipeline().OnUnitComplete(ctx, code, elapsed, err)
	if err != nil {
		return nil, 0, err
	}
	logger.Debug("rendered unit", "code", code, "cached", u.CacheHit, "duration", elapsed)
	return u, elapsed, nil
}
