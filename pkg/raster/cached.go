package raster

import (
	"bytes"
	"context"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/qrsheet/pkg/cache"
	"github.com/matzehuels/qrsheet/pkg/errors"
	"github.com/matzehuels/qrsheet/pkg/observability"
)

const unitKeyType = "unit"

// Cached wraps a Rasterizer with a PNG cache. Cache failures never fail a
// rasterization: a broken entry is treated as a miss, and a failed write is
// dropped.
type Cached struct {
	next  Rasterizer
	store cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCached returns next backed by store. A nil keyer uses
// [cache.DefaultKeyer].
func NewCached(next Rasterizer, store cache.Cache, keyer cache.Keyer, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{next: next, store: store, keyer: keyer, ttl: ttl}
}

// Raster is a rasterized unit together with its PNG encoding.
type Raster struct {
	Image    image.Image
	PNG      []byte
	CacheHit bool
}

// Rasterize implements [Rasterizer].
func (c *Cached) Rasterize(svg []byte, width, height int) (image.Image, error) {
	r, err := c.RasterizeContext(context.Background(), svg, width, height)
	if err != nil {
		return nil, err
	}
	return r.Image, nil
}

// RasterizeContext is Rasterize with a context for the cache round trips.
// It also returns the encoded PNG, so callers persisting the unit do not
// encode it a second time.
func (c *Cached) RasterizeContext(ctx context.Context, svg []byte, width, height int) (Raster, error) {
	key := c.keyer.UnitKey(svg, width, height)
	hooks := observability.Cache()

	if data, hit, err := c.store.Get(ctx, key); err == nil && hit {
		if img, err := imaging.Decode(bytes.NewReader(data)); err == nil && checkSize(img, width, height) == nil {
			hooks.OnCacheHit(ctx, unitKeyType)
			return Raster{Image: img, PNG: data, CacheHit: true}, nil
		}
		_ = c.store.Delete(ctx, key)
	}
	hooks.OnCacheMiss(ctx, unitKeyType)

	img, err := c.next.Rasterize(svg, width, height)
	if err != nil {
		return Raster{}, err
	}
	data, err := EncodePNG(img)
	if err != nil {
		return Raster{}, errors.Wrap(errors.ErrCodeRasterization, err, "encode png")
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err == nil {
		hooks.OnCacheSet(ctx, unitKeyType, len(data))
	}
	return Raster{Image: img, PNG: data}, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
