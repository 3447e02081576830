// Package config holds the run configuration for qrsheet.
//
// A [Config] is a plain value: build it with [Default] or [Load], adjust it,
// call [Config.Validate] once, then pass it explicitly to the pipeline.
// Nothing in this module reads configuration from package-level state, so
// runs with different settings can coexist in one process (the HTTP server
// relies on this).
//
// Geometry that depends on several values at once (does the symbol plus
// label fit the canvas, does the grid fit the page) is checked by the
// packages that own that geometry, compose and layout, when the pipeline is
// constructed, before any code is processed.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/qr"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPrefix is prepended to every code.
	DefaultPrefix = "P"

	// DefaultDigits is the zero-padded width of the numeric part.
	DefaultDigits = 4

	// DefaultStart and DefaultEnd are the range used when none is given.
	DefaultStart = 301
	DefaultEnd   = 480

	// DefaultCanvas is the unit image edge in pixels.
	DefaultCanvas = 400

	// DefaultSymbol is the QR symbol edge (quiet zone included) in pixels.
	DefaultSymbol = 300

	// A4 at 300 dpi.
	DefaultPageWidthMM  = 210.0
	DefaultPageHeightMM = 297.0
	DefaultDPI          = 300.0

	// DefaultCols and DefaultRows define the grid of units per page.
	DefaultCols = 5
	DefaultRows = 6

	DefaultSVGDir   = "qr_svgs"
	DefaultPNGDir   = "qr_pngs"
	DefaultDocument = "qr_codes.pdf"

	DefaultDecorationColor = "#000000"

	// DefaultCacheTTL is how long rasterized units stay cached.
	DefaultCacheTTL = 30 * 24 * time.Hour
)

// DefaultLevel is the default error-correction tier.
const DefaultLevel = qr.Medium

// =============================================================================
// Config
// =============================================================================

// Config is the complete, immutable configuration of one run.
type Config struct {
	Prefix string   `toml:"prefix"`
	Digits int      `toml:"digits"`
	Level  qr.Level `toml:"level"`

	Unit   Unit   `toml:"unit"`
	Page   Page   `toml:"page"`
	Output Output `toml:"output"`
	Cache  Cache  `toml:"cache"`
}

// Unit describes the canvas of one unit image, in pixels.
type Unit struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Symbol int `toml:"symbol"` // QR edge length

	// Header is the height of a band at the top of the canvas reserved for
	// decoration. Zero gives the square layout with the symbol centered.
	Header int `toml:"header"`

	// Border is the stroke width of a full-canvas outline; zero disables it.
	Border int `toml:"border"`

	// Marker draws a filled circle centered in the header band.
	Marker bool `toml:"marker"`

	// DecorationColor is the hex color of border and marker.
	DecorationColor string `toml:"decoration_color"`
}

// Page describes the physical page and the grid laid onto it.
type Page struct {
	WidthMM  float64 `toml:"width_mm"`
	HeightMM float64 `toml:"height_mm"`
	DPI      float64 `toml:"dpi"`
	Cols     int     `toml:"cols"`
	Rows     int     `toml:"rows"`
}

// Output names the directories and file written by a run.
type Output struct {
	SVGDir   string `toml:"svg_dir"`
	PNGDir   string `toml:"png_dir"`
	Document string `toml:"document"`
}

// Cache configures the rasterized-unit cache.
type Cache struct {
	Enabled   bool     `toml:"enabled"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// Duration is a time.Duration that reads "720h"-style strings from TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Prefix: DefaultPrefix,
		Digits: DefaultDigits,
		Level:  DefaultLevel,
		Unit: Unit{
			Width:           DefaultCanvas,
			Height:          DefaultCanvas,
			Symbol:          DefaultSymbol,
			DecorationColor: DefaultDecorationColor,
		},
		Page: Page{
			WidthMM:  DefaultPageWidthMM,
			HeightMM: DefaultPageHeightMM,
			DPI:      DefaultDPI,
			Cols:     DefaultCols,
			Rows:     DefaultRows,
		},
		Output: Output{
			SVGDir:   DefaultSVGDir,
			PNGDir:   DefaultPNGDir,
			Document: DefaultDocument,
		},
		Cache: Cache{
			Enabled: true,
			TTL:     Duration(DefaultCacheTTL),
		},
	}
}

// Load reads a TOML file on top of [Default]. Keys the file sets override the
// defaults; unknown keys are an INVALID_CONFIG error so typos do not pass
// silently.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

// Validate checks every value on its own. Cross-value geometry is checked
// by compose.New and layout.NewGrid.
func (c Config) Validate() error {
	if err := errors.ValidatePrefix(c.Prefix); err != nil {
		return err
	}
	if c.Digits < 1 || c.Digits > 18 {
		return invalid("digits must be between 1 and 18, got %d", c.Digits)
	}
	if c.Level < qr.MinPrintLevel || c.Level > qr.High {
		return invalid("error-correction level %v is too weak for print (minimum %v)", c.Level, qr.MinPrintLevel)
	}
	if err := c.Unit.validate(); err != nil {
		return err
	}
	if err := c.Page.validate(); err != nil {
		return err
	}
	if err := c.Output.validate(); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return invalid("cache ttl must not be negative")
	}
	return nil
}

func (u Unit) validate() error {
	if u.Width <= 0 || u.Height <= 0 {
		return invalid("unit canvas must be positive, got %dx%d", u.Width, u.Height)
	}
	if u.Symbol <= 0 {
		return invalid("symbol size must be positive, got %d", u.Symbol)
	}
	if u.Header < 0 || u.Border < 0 {
		return invalid("header and border must not be negative")
	}
	if _, err := u.Color(); err != nil {
		return err
	}
	return nil
}

// Color parses DecorationColor.
func (u Unit) Color() (colorful.Color, error) {
	c, err := colorful.Hex(u.DecorationColor)
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid decoration color %q", u.DecorationColor)
	}
	return c, nil
}

func (p Page) validate() error {
	if p.WidthMM <= 0 || p.HeightMM <= 0 {
		return invalid("page size must be positive, got %gx%g mm", p.WidthMM, p.HeightMM)
	}
	if p.DPI <= 0 {
		return invalid("dpi must be positive, got %g", p.DPI)
	}
	if p.Cols < 1 || p.Rows < 1 {
		return invalid("grid must have at least one column and row, got %dx%d", p.Cols, p.Rows)
	}
	return nil
}

// PerPage returns the number of units on a full page.
func (p Page) PerPage() int { return p.Cols * p.Rows }

func (o Output) validate() error {
	if o.SVGDir == "" || o.PNGDir == "" || o.Document == "" {
		return invalid("output svg_dir, png_dir and document must be set")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// String renders the configuration as TOML, for `--verbose` dumps.
func (c Config) String() string {
	var buf strings.Builder
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
