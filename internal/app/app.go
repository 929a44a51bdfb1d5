package app

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/decision"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/extract"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/llm/openai"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/normalize"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ocr"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/pipeline"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/rules"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/score"
)

// App holds the long-lived components shared by every binary.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Engine    ocr.Engine
	Processor *pipeline.Processor
}

// New builds the OCR engine selected by cfg and a processor on top of it.
func New(cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := NewEngine(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:    cfg,
		Logger:    logger,
		Engine:    engine,
		Processor: NewProcessor(cfg, engine, logger),
	}, nil
}

// NewEngine returns the configured engine wrapped in the rate limiter and,
// when a TTL is set, the result cache. Cache hits never consume rate budget.
func NewEngine(cfg *common.Config, logger *slog.Logger) (ocr.Engine, error) {
	var engine ocr.Engine
	switch cfg.OCR.Engine {
	case common.EngineTesseract, "":
		engine = tesseractEngine(cfg, logger)
	case common.EngineOpenAI:
		engine = visionEngine(cfg, logger)
	case common.EngineChain:
		engine = ocr.NewChainEngine(logger, tesseractEngine(cfg, logger), visionEngine(cfg, logger))
	default:
		return nil, common.NewAppError(common.CodeInvalidConfiguration,
			fmt.Sprintf("unknown ocr engine %q", cfg.OCR.Engine), common.ErrInvalidConfiguration)
	}

	engine = ocr.NewRateLimitedEngine(engine, cfg.OCR.RatePerSecond, cfg.OCR.Burst)
	if cfg.OCR.CacheTTL > 0 {
		engine = ocr.NewCachedEngine(engine, cfg.OCR.CacheTTL, logger)
	}
	logger.Debug("app.engine.ready", "engine", engine.Name(), "cache_ttl", cfg.OCR.CacheTTL, "rate_per_second", cfg.OCR.RatePerSecond)
	return engine, nil
}

func tesseractEngine(cfg *common.Config, logger *slog.Logger) ocr.Engine {
	return ocr.NewTesseractEngine(ocr.Config{
		Pdftotext:     cfg.OCR.Pdftotext,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TessdataDir:   cfg.OCR.TessdataDir,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
	}, logger)
}

func visionEngine(cfg *common.Config, logger *slog.Logger) ocr.Engine {
	return openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
}

// NewProcessor assembles the analysis stages from cfg around engine.
func NewProcessor(cfg *common.Config, engine ocr.Engine, logger *slog.Logger) *pipeline.Processor {
	weights := make(map[constants.FieldName]float64, len(cfg.Score.FieldWeights))
	for name, w := range cfg.Score.FieldWeights {
		weights[constants.FieldName(name)] = w
	}

	stages := pipeline.Stages{
		Extractor: extract.NewExtractor(engine, extract.Config{OCRTimeout: cfg.Extract.OCRTimeout}, logger),
		Normalizer: normalize.NewNormalizer(normalize.Config{
			SignatureMinConfidence: cfg.Normalize.SignatureMinConfidence,
			DateFormats:            cfg.Normalize.DateFormats,
		}),
		Rules: rules.Default(rules.Config{
			StalenessWindow: cfg.Rules.StalenessWindow,
			AmountCeiling:   decimal.NewFromFloat(cfg.Rules.AmountCeiling),
			ConfidenceFloor: cfg.Rules.ConfidenceFloor,
		}),
		Scorer: score.NewScorer(score.Config{
			FieldWeight:  cfg.Score.FieldWeight,
			FieldWeights: weights,
			Penalties: map[constants.Severity]float64{
				constants.SeverityMinor:    cfg.Score.Penalties.Minor,
				constants.SeverityMajor:    cfg.Score.Penalties.Major,
				constants.SeverityCritical: cfg.Score.Penalties.Critical,
			},
		}),
		Policy: decision.NewPolicy(decision.Config{ApprovalThreshold: cfg.Decision.ApprovalThreshold}),
	}
	return pipeline.NewProcessor(logger, stages, pipeline.WithMaxBytes(cfg.Document.MaxBytes))
}
