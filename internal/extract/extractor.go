package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ocr"
)

// DefaultOCRTimeout bounds a single OCR call.
const DefaultOCRTimeout = 15 * time.Second

type Config struct {
	OCRTimeout time.Duration
}

// Extractor turns a document into raw field candidates using an OCR engine.
type Extractor struct {
	engine ocr.Engine
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(engine ocr.Engine, cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = DefaultOCRTimeout
	}
	return &Extractor{engine: engine, cfg: cfg, logger: logger}
}

// Extract returns the fields it could locate; missing fields are absent from
// the map. It fails with ErrUnsupportedMediaType when the content does not
// decode as its declared type and with ErrExtractionUnavailable when OCR
// errors, times out or yields no text.
func (e *Extractor) Extract(ctx context.Context, doc entity.Document) (map[constants.FieldName]entity.ExtractedField, error) {
	start := time.Now()
	content := doc.Content()
	if err := checkDecodable(content, doc.MediaType()); err != nil {
		return nil, err
	}

	ocrCtx, cancel := context.WithTimeout(ctx, e.cfg.OCRTimeout)
	defer cancel()

	blocks, err := e.engine.Recognize(ocrCtx, ocr.Request{Content: content, MediaType: doc.MediaType()})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(ocrCtx.Err(), context.DeadlineExceeded) {
			e.logger.Warn("extract.ocr.timeout", "engine", e.engine.Name(), "timeout", e.cfg.OCRTimeout)
			return nil, common.ExtractionUnavailable("ocr timed out after "+e.cfg.OCRTimeout.String(), err)
		}
		e.logger.Warn("extract.ocr.failed", "engine", e.engine.Name(), "error", err)
		return nil, common.ExtractionUnavailable("ocr failed", err)
	}

	blocks = usable(blocks)
	if !hasText(blocks) {
		e.logger.Warn("extract.ocr.empty", "engine", e.engine.Name(), "media_type", doc.MediaType())
		return nil, common.ExtractionUnavailable("no text recognized", nil)
	}

	fields := locate(blocks)
	e.logger.Debug("extract.ok",
		"engine", e.engine.Name(),
		"blocks", len(blocks),
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

func usable(blocks []ocr.TextBlock) []ocr.TextBlock {
	out := make([]ocr.TextBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Kind == ocr.KindSignature || strings.TrimSpace(b.Text) != "" {
			if b.Page < 1 {
				b.Page = 1
			}
			out = append(out, b)
		}
	}
	return out
}

func hasText(blocks []ocr.TextBlock) bool {
	for _, b := range blocks {
		if b.Kind != ocr.KindSignature {
			return true
		}
	}
	return false
}
