package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qrsheet/pkg/config"
	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/pipeline"
	"github.com/matzehuels/qrsheet/pkg/raster"
	"github.com/matzehuels/qrsheet/pkg/sequence"
)

// configOpts holds the flags shared by every command that builds a runner.
type configOpts struct {
	path       string // TOML file layered over the defaults
	rasterizer string // rasterizer backend name
	redis      string // Redis address, overrides [cache] redis_addr
	noCache    bool   // disable the raster cache
}

func (o *configOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.path, "config", "c", "", "TOML configuration file")
	cmd.Flags().StringVar(&o.rasterizer, "rasterizer", raster.BackendNative, "rasterizer backend: native (default), rsvg")
	cmd.Flags().StringVar(&o.redis, "redis", "", "Redis address for the raster cache (e.g. localhost:6379)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the raster cache")
	registerFlagCompletions(cmd)
}

// load builds the configuration: defaults, then the TOML file, then flags.
func (o configOpts) load() (config.Config, error) {
	cfg := config.Default()
	if o.path != "" {
		var err error
		if cfg, err = config.Load(o.path); err != nil {
			return config.Config{}, err
		}
	}
	if o.redis != "" {
		cfg.Cache.RedisAddr = o.redis
	}
	if o.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// generateOpts holds the command-line flags for sheet generation.
type generateOpts struct {
	configOpts
	output  string // PDF path
	svgDir  string // per-code SVG directory
	pngDir  string // per-code PNG directory
	workers int    // concurrent codes; below 2 runs sequentially
}

func (o *generateOpts) bind(cmd *cobra.Command) {
	o.configOpts.bind(cmd)
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output PDF (default: "+config.DefaultDocument+")")
	cmd.Flags().StringVar(&o.svgDir, "svg-dir", "", "directory for per-code SVG files (default: "+config.DefaultSVGDir+")")
	cmd.Flags().StringVar(&o.pngDir, "png-dir", "", "directory for per-code PNG files (default: "+config.DefaultPNGDir+")")
	cmd.Flags().IntVarP(&o.workers, "workers", "w", 1, "number of codes rendered concurrently")
}

func (o generateOpts) config() (config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return config.Config{}, err
	}
	if o.output != "" {
		cfg.Output.Document = o.output
	}
	if o.svgDir != "" {
		cfg.Output.SVGDir = o.svgDir
	}
	if o.pngDir != "" {
		cfg.Output.PNGDir = o.pngDir
	}
	return cfg, nil
}

// rangeArgs validates the positional range. A bad range prints the usage
// line along with the error.
func rangeArgs(cmd *cobra.Command, args []string) error {
	if _, _, err := parseRange(args); err != nil {
		cmd.SilenceUsage = false
		return err
	}
	return nil
}

// parseRange reads "[start end]". No arguments selects the default range.
func parseRange(args []string) (start, end int, err error) {
	switch len(args) {
	case 0:
		return config.DefaultStart, config.DefaultEnd, nil
	case 2:
	default:
		return 0, 0, errors.New(errors.ErrCodeInvalidRange, "expected start and end, got %d argument(s)", len(args))
	}

	if start, err = parseBound("start", args[0]); err != nil {
		return 0, 0, err
	}
	if end, err = parseBound("end", args[1]); err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, errors.New(errors.ErrCodeInvalidRange, "start %d is greater than end %d", start, end)
	}
	if end-start >= sequence.MaxLen {
		return 0, 0, errors.New(errors.ErrCodeInvalidRange, "range %d..%d exceeds %d codes", start, end, sequence.MaxLen)
	}
	return start, end, nil
}

func parseBound(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidRange, "%s %q is not an integer", name, s)
	}
	if n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidRange, "%s %d is negative", name, n)
	}
	return n, nil
}

// runGenerate renders [start, end] and writes the per-code files and the PDF.
func (c *CLI) runGenerate(ctx context.Context, start, end int, opts generateOpts) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.rasterizer)
	if err != nil {
		return err
	}
	defer runner.Close()

	seq, err := runner.Sequence(start, end)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d codes...", seq.Len()))
	spinner.Start()

	result, err := runner.Execute(ctx, start, end, pipeline.Options{Workers: opts.workers})
	if ctx.Err() != nil {
		spinner.Stop()
		return ctx.Err()
	}
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	codes := result.Codes
	printSuccess("Generated %s to %s", StyleHighlight.Render(codes[0]), StyleHighlight.Render(codes[len(codes)-1]))
	printFile(result.Document)
	printFile(cfg.Output.SVGDir)
	printFile(cfg.Output.PNGDir)
	printStats(result.Stats)
	return nil
}
