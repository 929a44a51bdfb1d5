package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/decision"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/normalize"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/rules"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/score"
)

// FieldExtractor locates raw field candidates on a document.
type FieldExtractor interface {
	Extract(ctx context.Context, doc entity.Document) (map[constants.FieldName]entity.ExtractedField, error)
}

// Stages are the pipeline components in execution order. Extractor is
// required; the others fall back to their defaults when nil.
type Stages struct {
	Extractor  FieldExtractor
	Normalizer *normalize.Normalizer
	Rules      *rules.Engine
	Scorer     *score.Scorer
	Policy     *decision.Policy
}

// Processor coordinates extract, normalize, rules, score and decision for
// one document at a time. It keeps no per-run state and may be shared.
type Processor struct {
	logger   *slog.Logger
	stages   Stages
	maxBytes int64
	now      func() time.Time
}

type Option func(*Processor)

// WithClock overrides the analysis timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithMaxBytes rejects documents larger than n bytes.
func WithMaxBytes(n int64) Option {
	return func(p *Processor) { p.maxBytes = n }
}

func NewProcessor(logger *slog.Logger, stages Stages, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if stages.Normalizer == nil {
		stages.Normalizer = normalize.NewNormalizer(normalize.Config{})
	}
	if stages.Rules == nil {
		stages.Rules = rules.Default(rules.DefaultConfig())
	}
	if stages.Scorer == nil {
		stages.Scorer = score.NewScorer(score.DefaultConfig())
	}
	if stages.Policy == nil {
		stages.Policy = decision.NewPolicy(decision.Config{})
	}
	p := &Processor{
		logger:   logger,
		stages:   stages,
		maxBytes: entity.DefaultMaxBytes,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the full pipeline. Caller errors (unsupported media type,
// oversize document) and parent context cancellation are returned as errors.
// OCR failures and timeouts are not: they produce a degraded result with all
// fields absent, an EXTRACTION_UNAVAILABLE flag and action review.
func (p *Processor) Analyze(ctx context.Context, doc entity.Document) (entity.ClaimAnalysisResult, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	log := p.logger.With("request_id", rid)
	start := time.Now()

	if p.stages.Extractor == nil {
		log.Error("pipeline.misconfigured", "error", "no extractor")
		return entity.ClaimAnalysisResult{}, common.NewAppError(common.CodeInvalidConfiguration, "pipeline has no extractor", common.ErrInvalidConfiguration)
	}
	if err := p.admit(doc); err != nil {
		log.Warn("pipeline.rejected", "media_type", doc.MediaType(), "bytes", doc.Size(), "error", err)
		return entity.ClaimAnalysisResult{}, err
	}
	log.Debug("pipeline.start", "media_type", doc.MediaType(), "bytes", doc.Size(), "filename", doc.Filename())

	extracted, err := p.stages.Extractor.Extract(ctx, doc)
	degraded := false
	reason := ""
	if err != nil {
		if !errors.Is(err, common.ErrExtractionUnavailable) {
			log.Warn("pipeline.extract.failed", "error", err)
			return entity.ClaimAnalysisResult{}, err
		}
		degraded = true
		reason = extractionReason(err)
		extracted = nil
		log.Warn("pipeline.extract.degraded", "reason", reason)
	} else {
		log.Debug("pipeline.extract.ok", "fields", len(extracted))
	}

	now := p.now()
	fields := p.stages.Normalizer.Normalize(extracted)

	flags := p.stages.Rules.Evaluate(rules.Input{Fields: fields, Now: now})
	if degraded {
		flags = append([]entity.Flag{rules.ExtractionUnavailableFlag(reason)}, flags...)
	}

	hs := p.stages.Scorer.Score(fields, flags)
	action := p.stages.Policy.Decide(hs.Value, flags)
	if degraded {
		action = constants.ActionReview
	}

	log.Info("pipeline.analyze.ok",
		"action", action,
		"score", hs.Value,
		"flags", len(flags),
		"degraded", degraded,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return entity.ClaimAnalysisResult{
		Fields:     fields,
		Flags:      flags,
		Score:      hs,
		Action:     action,
		AnalyzedAt: now.UTC(),
	}, nil
}

func (p *Processor) admit(doc entity.Document) error {
	if doc.MediaType() == "" {
		return common.UnsupportedMediaTypef("document has no media type")
	}
	if p.maxBytes > 0 && doc.Size() > p.maxBytes {
		return common.DocumentTooLargef("document is %d bytes, limit is %d", doc.Size(), p.maxBytes)
	}
	return nil
}

func extractionReason(err error) string {
	var ae *common.AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
