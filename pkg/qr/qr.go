// Package qr encodes code strings as QR symbols.
//
// The [Encoder] interface is the only thing the composer depends on; the
// default implementation wraps github.com/skip2/go-qrcode. A [Symbol] knows
// its module grid (quiet zone included) and can emit itself as a body-only
// vector fragment at any scale, so callers never have to unwrap a complete
// SVG document produced by somebody else.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/vector"
)

// Level is the error-correction tier of a symbol.
type Level int

// Error-correction tiers in ascending strength.
const (
	Low      Level = iota // ~7% recovery
	Medium                // ~15% recovery
	Quartile              // ~25% recovery
	High                  // ~30% recovery
)

// MinPrintLevel is the weakest tier that survives print degradation reliably.
const MinPrintLevel = Medium

var levelNames = [...]string{"L", "M", "Q", "H"}

// String returns the one-letter name of the level.
func (l Level) String() string {
	if l < Low || l > High {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses "L", "M", "Q" or "H" (case-insensitive).
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "invalid error-correction level %q (must be one of: L, M, Q, H)", s)
}

// Encoder turns text into a QR symbol.
type Encoder interface {
	Encode(text string, level Level) (*Symbol, error)
}

// Symbol is an encoded QR code as a square grid of modules.
type Symbol struct {
	modules [][]bool
	version int
}

// NewSymbol wraps a square module grid. It is exported so alternative
// encoders and tests can build symbols directly.
func NewSymbol(modules [][]bool, version int) (*Symbol, error) {
	n := len(modules)
	if n == 0 {
		return nil, fmt.Errorf("empty module grid")
	}
	for _, row := range modules {
		if len(row) != n {
			return nil, fmt.Errorf("module grid is not square")
		}
	}
	return &Symbol{modules: modules, version: version}, nil
}

// Size returns the native module-grid size, quiet zone included.
func (s *Symbol) Size() int { return len(s.modules) }

// Version returns the QR version (1-40), or 0 if unknown.
func (s *Symbol) Version() int { return s.version }

// Dark reports whether the module at column x, row y is dark.
func (s *Symbol) Dark(x, y int) bool {
	if y < 0 || y >= len(s.modules) || x < 0 || x >= len(s.modules) {
		return false
	}
	return s.modules[y][x]
}

// Fragment returns the symbol as vector nodes scaled by scale: an opaque
// white background square followed by one black rectangle per horizontal
// run of dark modules. The fragment is anchored at (0, 0).
func (s *Symbol) Fragment(scale float64) []vector.Node {
	edge := float64(s.Size()) * scale
	nodes := []vector.Node{
		vector.Rect{W: edge, H: edge, Fill: "white"},
	}
	for y, row := range s.modules {
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			run := x
			for run < len(row) && row[run] {
				run++
			}
			nodes = append(nodes, vector.Rect{
				X:    float64(x) * scale,
				Y:    float64(y) * scale,
				W:    float64(run-x) * scale,
				H:    scale,
				Fill: "black",
			})
			x = run
		}
	}
	return nodes
}

// libEncoder is the go-qrcode backed Encoder.
type libEncoder struct{}

// NewEncoder returns the default Encoder.
func NewEncoder() Encoder { return libEncoder{} }

var libLevels = map[Level]qrcode.RecoveryLevel{
	Low:      qrcode.Low,
	Medium:   qrcode.Medium,
	Quartile: qrcode.High,
	High:     qrcode.Highest,
}

// Encode builds a symbol with the standard four-module quiet zone. Text the
// library cannot encode at the requested level is an ENCODING_CAPACITY
// error; it is never truncated.
func (libEncoder) Encode(text string, level Level) (*Symbol, error) {
	rl, ok := libLevels[level]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported error-correction level %v", level)
	}
	if text == "" {
		return nil, errors.New(errors.ErrCodeEncodingCapacity, "cannot encode empty text")
	}

	q, err := qrcode.New(text, rl)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncodingCapacity, err, "encode at level %s", level).For(text)
	}
	return NewSymbol(q.Bitmap(), q.VersionNumber)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if l < Low || l > High {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so levels can be read
// from configuration files.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
