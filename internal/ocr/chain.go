package ocr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ChainEngine tries engines in order and returns the first non-empty result.
// Engines that reject the media type or fail are skipped.
type ChainEngine struct {
	engines []Engine
	logger  *slog.Logger
}

func NewChainEngine(logger *slog.Logger, engines ...Engine) *ChainEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainEngine{engines: engines, logger: logger}
}

func (c *ChainEngine) Name() string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainEngine) Recognize(ctx context.Context, req Request) ([]TextBlock, error) {
	var errs []error
	skipped := 0
	for _, e := range c.engines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blocks, err := e.Recognize(ctx, req)
		switch {
		case errors.Is(err, ErrUnsupportedInput):
			c.logger.Debug("ocr.chain.skip", "engine", e.Name(), "media_type", req.MediaType)
			skipped++
			continue
		case err != nil:
			c.logger.Warn("ocr.chain.engine_failed", "engine", e.Name(), "error", err)
			errs = append(errs, err)
			continue
		case len(blocks) == 0:
			c.logger.Debug("ocr.chain.empty", "engine", e.Name())
			continue
		}
		return blocks, nil
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if skipped == len(c.engines) {
		return nil, ErrUnsupportedInput
	}
	return nil, nil
}
