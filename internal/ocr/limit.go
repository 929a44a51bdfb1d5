package ocr

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedEngine paces calls to an engine backed by a metered provider.
type RateLimitedEngine struct {
	next    Engine
	limiter *rate.Limiter
}

func NewRateLimitedEngine(next Engine, perSecond float64, burst int) *RateLimitedEngine {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimitedEngine{next: next, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimitedEngine) Name() string { return r.next.Name() }

func (r *RateLimitedEngine) Recognize(ctx context.Context, req Request) ([]TextBlock, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("ocr rate limit: %w", err)
	}
	return r.next.Recognize(ctx, req)
}
