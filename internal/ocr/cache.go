package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"slices"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedEngine memoizes recognition results by content hash so resubmitted
// documents skip OCR.
type CachedEngine struct {
	next   Engine
	cache  *gocache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedEngine(next Engine, ttl time.Duration, logger *slog.Logger) *CachedEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedEngine{
		next:   next,
		cache:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedEngine) Name() string { return c.next.Name() }

func (c *CachedEngine) Recognize(ctx context.Context, req Request) ([]TextBlock, error) {
	key := cacheKey(req)
	if v, found := c.cache.Get(key); found {
		c.logger.Debug("ocr.cache.hit", "engine", c.next.Name(), "key", key[:12])
		return slices.Clone(v.([]TextBlock)), nil
	}

	blocks, err := c.next.Recognize(ctx, req)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, slices.Clone(blocks), c.ttl)
	return blocks, nil
}

// Len reports the number of cached entries.
func (c *CachedEngine) Len() int { return c.cache.ItemCount() }

func cacheKey(req Request) string {
	sum := sha256.Sum256(req.Content)
	return hex.EncodeToString(sum[:]) + ":" + string(req.MediaType)
}
