package cache

// Keyer derives cache keys.
type Keyer interface {
	// UnitKey is the key of the raster of svg at width x height.
	UnitKey(svg []byte, width, height int) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// UnitKey hashes the SVG content together with the pixel size.
func (DefaultKeyer) UnitKey(svg []byte, width, height int) string {
	return hashKey("unit", Hash(svg), width, height)
}

// ScopedKeyer wraps a Keyer with a prefix, so entries produced by different
// rasterizer backends never collide.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "rsvg:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// UnitKey generates a prefixed unit key.
func (k *ScopedKeyer) UnitKey(svg []byte, width, height int) string {
	return k.prefix + k.inner.UnitKey(svg, width, height)
}
