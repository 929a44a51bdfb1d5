package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

// EnvPrefix namespaces environment overrides, e.g. CLAIMASSIST_RULES_AMOUNT_CEILING.
const EnvPrefix = "CLAIMASSIST"

// Config holds all application configuration
type Config struct {
	Document  DocumentConfig  `mapstructure:"document" yaml:"document"`
	Extract   ExtractConfig   `mapstructure:"extract" yaml:"extract"`
	Normalize NormalizeConfig `mapstructure:"normalize" yaml:"normalize"`
	Rules     RulesConfig     `mapstructure:"rules" yaml:"rules"`
	Score     ScoreConfig     `mapstructure:"score" yaml:"score"`
	Decision  DecisionConfig  `mapstructure:"decision" yaml:"decision"`
	OCR       OCRConfig       `mapstructure:"ocr" yaml:"ocr"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// DocumentConfig bounds what the submission boundary accepts
type DocumentConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// ExtractConfig holds extractor configuration
type ExtractConfig struct {
	OCRTimeout time.Duration `mapstructure:"ocr_timeout" yaml:"ocr_timeout"`
}

// NormalizeConfig holds normalizer configuration
type NormalizeConfig struct {
	SignatureMinConfidence float64  `mapstructure:"signature_min_confidence" yaml:"signature_min_confidence"`
	DateFormats            []string `mapstructure:"date_formats" yaml:"date_formats"`
}

// RulesConfig holds rule thresholds
type RulesConfig struct {
	StalenessWindow time.Duration `mapstructure:"staleness_window" yaml:"staleness_window"`
	AmountCeiling   float64       `mapstructure:"amount_ceiling" yaml:"amount_ceiling"`
	ConfidenceFloor float64       `mapstructure:"confidence_floor" yaml:"confidence_floor"`
}

// ScoreConfig holds scorer weights and penalties
type ScoreConfig struct {
	FieldWeight  float64            `mapstructure:"field_weight" yaml:"field_weight"`
	FieldWeights map[string]float64 `mapstructure:"field_weights" yaml:"field_weights,omitempty"`
	Penalties    PenaltyConfig      `mapstructure:"penalties" yaml:"penalties"`
}

// PenaltyConfig maps flag severities to score deductions
type PenaltyConfig struct {
	Minor    float64 `mapstructure:"minor" yaml:"minor"`
	Major    float64 `mapstructure:"major" yaml:"major"`
	Critical float64 `mapstructure:"critical" yaml:"critical"`
}

// DecisionConfig holds decision policy thresholds
type DecisionConfig struct {
	ApprovalThreshold float64 `mapstructure:"approval_threshold" yaml:"approval_threshold"`
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string        `mapstructure:"engine" yaml:"engine"`
	Pdftotext     string        `mapstructure:"pdftotext" yaml:"pdftotext"`
	Pdftoppm      string        `mapstructure:"pdftoppm" yaml:"pdftoppm"`
	Tesseract     string        `mapstructure:"tesseract" yaml:"tesseract"`
	TesseractLang string        `mapstructure:"tesseract_lang" yaml:"tesseract_lang"`
	TessdataDir   string        `mapstructure:"tessdata_dir" yaml:"tessdata_dir"`
	DPI           int           `mapstructure:"dpi" yaml:"dpi"`
	MaxPages      int           `mapstructure:"max_pages" yaml:"max_pages"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	RatePerSecond float64       `mapstructure:"rate_per_second" yaml:"rate_per_second"`
	Burst         int           `mapstructure:"burst" yaml:"burst"`
}

// LLMConfig holds vision model configuration
type LLMConfig struct {
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	BaseURL     string        `mapstructure:"base_url" yaml:"base_url"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr" yaml:"grpc_addr"`
	// FileRoot is the only directory AnalyzeFile may read from. Empty
	// disables AnalyzeFile.
	FileRoot string `mapstructure:"file_root" yaml:"file_root"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OCR engine names accepted by ocr.engine.
const (
	EngineTesseract = "tesseract"
	EngineOpenAI    = "openai"
	EngineChain     = "chain"
)

// DefaultDateFormats are tried in order; day-first numeric layouts precede
// spelled-out months.
var DefaultDateFormats = []string{
	"2006-01-02",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"20060102",
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	return v
}

// SetDefaults registers every configuration key with its default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("document.max_bytes", int64(10<<20))
	v.SetDefault("extract.ocr_timeout", 15*time.Second)
	v.SetDefault("normalize.signature_min_confidence", 0.5)
	v.SetDefault("normalize.date_formats", DefaultDateFormats)
	v.SetDefault("rules.staleness_window", 365*24*time.Hour)
	v.SetDefault("rules.amount_ceiling", 1_000_000.0)
	v.SetDefault("rules.confidence_floor", 0.4)
	v.SetDefault("score.field_weight", 15.0)
	v.SetDefault("score.field_weights", map[string]float64{})
	v.SetDefault("score.penalties.minor", 5.0)
	v.SetDefault("score.penalties.major", 15.0)
	v.SetDefault("score.penalties.critical", 40.0)
	v.SetDefault("decision.approval_threshold", 80.0)
	v.SetDefault("ocr.engine", EngineTesseract)
	v.SetDefault("ocr.pdftotext", "pdftotext")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.tesseract_lang", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.cache_ttl", 10*time.Minute)
	v.SetDefault("ocr.rate_per_second", 0.0)
	v.SetDefault("ocr.burst", 1)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", 45*time.Second)
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.file_root", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig loads defaults, then the optional YAML file at path, then
// CLAIMASSIST_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError(CodeInvalidConfiguration, fmt.Sprintf("read config file %q", path), errors.Join(ErrInvalidConfiguration, err))
		}
	}
	return DecodeConfig(v)
}

// DecodeConfig unmarshals and validates the settings held by v.
func DecodeConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError(CodeInvalidConfiguration, "decode config", errors.Join(ErrInvalidConfiguration, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the built-in defaults without consulting env or files.
func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate reports out-of-range options as ErrInvalidConfiguration.
func (c *Config) Validate() error {
	v := NewValidator()
	unit := InRange(0, 1)
	nonNegative := InRange(0, 1e18)

	v.Field("document.max_bytes", c.Document.MaxBytes, Positive)
	v.Field("extract.ocr_timeout", c.Extract.OCRTimeout, Positive)
	// Policy and normalizer constructors read zero thresholds as unset.
	v.Field("normalize.signature_min_confidence", c.Normalize.SignatureMinConfidence, Positive, unit)
	v.Field("normalize.date_formats", c.Normalize.DateFormats, Required)
	v.Field("rules.staleness_window", c.Rules.StalenessWindow, Positive)
	v.Field("rules.amount_ceiling", c.Rules.AmountCeiling, Positive)
	v.Field("rules.confidence_floor", c.Rules.ConfidenceFloor, unit)
	v.Field("score.field_weight", c.Score.FieldWeight, nonNegative)
	for name, w := range c.Score.FieldWeights {
		key := "score.field_weights." + name
		if !constants.IsField(name) {
			v.Field(key, name, OneOf(fieldNames()...))
			continue
		}
		v.Field(key, w, nonNegative)
	}
	v.Field("score.penalties.minor", c.Score.Penalties.Minor, nonNegative)
	v.Field("score.penalties.major", c.Score.Penalties.Major, nonNegative)
	v.Field("score.penalties.critical", c.Score.Penalties.Critical, nonNegative)
	// Policy and normalizer constructors read zero thresholds as unset.
	v.Field("decision.approval_threshold", c.Decision.ApprovalThreshold, Positive, InRange(0, 100))
	v.Field("ocr.engine", c.OCR.Engine, OneOf(EngineTesseract, EngineOpenAI, EngineChain))
	v.Field("ocr.rate_per_second", c.OCR.RatePerSecond, nonNegative)
	v.Field("llm.temperature", c.LLM.Temperature, InRange(0, 2))
	v.Field("server.grpc_addr", c.Server.GRPCAddr, Required)
	v.Field("log.level", strings.ToLower(c.Log.Level), OneOf("debug", "info", "warn", "error"))
	v.Field("log.format", strings.ToLower(c.Log.Format), OneOf("text", "json"))

	if c.OCR.Engine != EngineTesseract && c.LLM.APIKey == "" {
		v.Field("llm.api_key", c.LLM.APIKey, Required)
	}

	if v.HasErrors() {
		return NewAppError(CodeInvalidConfiguration, v.ErrorMessage(), ErrInvalidConfiguration)
	}
	return nil
}

func fieldNames() []string {
	out := make([]string, len(constants.Fields))
	for i, f := range constants.Fields {
		out[i] = string(f)
	}
	return out
}
