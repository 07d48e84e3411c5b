package hoard

import (
	"context"
	"time"
)

// Key prefixes for the platform's artifact kinds.
const (
	prefixCaption    = "caption"
	prefixImage      = "image"
	prefixMask       = "mask"
	prefixVariations = "variations"
)

// GetCaption returns the cached caption for id.
func (c *Cache) GetCaption(ctx context.Context, id string) (string, bool) {
	return NewView[string](c, prefixCaption).Get(ctx, id)
}

// SetCaption caches a generated caption. A non-positive ttl selects the
// configured default.
func (c *Cache) SetCaption(ctx context.Context, id, caption string, ttl time.Duration) {
	NewView[string](c, prefixCaption).Set(ctx, id, caption, ttl)
}

// GetImage returns the cached rendered image for id, decoded back to its
// original bytes.
func (c *Cache) GetImage(ctx context.Context, id string) ([]byte, bool) {
	return NewBinaryView(c, prefixImage).Get(ctx, id)
}

// SetImage caches a rendered image. The bytes are stored base64-encoded so
// the serialized tier stays text.
func (c *Cache) SetImage(ctx context.Context, id string, image []byte, ttl time.Duration) {
	NewBinaryView(c, prefixImage).Set(ctx, id, image, ttl)
}

// GetMask returns the cached image mask for id.
func (c *Cache) GetMask(ctx context.Context, id string) ([]byte, bool) {
	return NewBinaryView(c, prefixMask).Get(ctx, id)
}

// SetMask caches an image mask.
func (c *Cache) SetMask(ctx context.Context, id string, mask []byte, ttl time.Duration) {
	NewBinaryView(c, prefixMask).Set(ctx, id, mask, ttl)
}

// GetCaptionVariations returns the cached caption-variation bundle for id.
func (c *Cache) GetCaptionVariations(ctx context.Context, id string) ([]string, bool) {
	return NewView[[]string](c, prefixVariations).Get(ctx, id)
}

// SetCaptionVariations caches a bundle of caption variations.
func (c *Cache) SetCaptionVariations(ctx context.Context, id string, variations []string, ttl time.Duration) {
	NewView[[]string](c, prefixVariations).Set(ctx, id, variations, ttl)
}
