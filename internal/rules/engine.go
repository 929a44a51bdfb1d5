package rules

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// Input is what every rule sees: the normalized fields and the instant the
// analysis runs at. Now keeps the caller's location; date rules compare
// calendar days as seen there.
type Input struct {
	Fields entity.Fields
	Now    time.Time
}

// Today is the calendar date of Now in Now's location, expressed as UTC
// midnight like normalized dates.
func (in Input) Today() time.Time {
	return CalendarDay(in.Now)
}

// CalendarDay drops the clock and zone from t, keeping its local date.
func CalendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Rule is a single independent check. Evaluate must not mutate its input and
// returns nil when nothing fires.
type Rule interface {
	Code() string
	Evaluate(in Input) []entity.Flag
}

// Defaults
const (
	DefaultStalenessWindow = 365 * 24 * time.Hour
	DefaultConfidenceFloor = 0.4
)

var DefaultAmountCeiling = decimal.NewFromInt(1_000_000)

type Config struct {
	StalenessWindow time.Duration
	AmountCeiling   decimal.Decimal
	ConfidenceFloor float64
}

func DefaultConfig() Config {
	return Config{
		StalenessWindow: DefaultStalenessWindow,
		AmountCeiling:   DefaultAmountCeiling,
		ConfidenceFloor: DefaultConfidenceFloor,
	}
}

// Engine runs its rules in registration order and concatenates their flags.
// It is immutable once built and safe to share between goroutines.
type Engine struct {
	rules []Rule
}

// Evaluate runs every rule; earlier hits never short-circuit later rules.
func (e *Engine) Evaluate(in Input) []entity.Flag {
	var flags []entity.Flag
	for _, r := range e.rules {
		flags = append(flags, r.Evaluate(in)...)
	}
	return flags
}

// Codes lists the registered rule codes in evaluation order.
func (e *Engine) Codes() []string {
	codes := make([]string, len(e.rules))
	for i, r := range e.rules {
		codes[i] = r.Code()
	}
	return codes
}

// Builder assembles an Engine. Rules are added independently, so new checks
// never require touching existing ones.
type Builder struct {
	cfg   Config
	rules []Rule
}

func NewBuilder(cfg Config) *Builder {
	def := DefaultConfig()
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = def.StalenessWindow
	}
	if cfg.AmountCeiling.Sign() <= 0 {
		cfg.AmountCeiling = def.AmountCeiling
	}
	if cfg.ConfidenceFloor <= 0 {
		cfg.ConfidenceFloor = def.ConfidenceFloor
	}
	return &Builder{cfg: cfg}
}

// With appends rules after those already registered.
func (b *Builder) With(rules ...Rule) *Builder {
	b.rules = append(b.rules, rules...)
	return b
}

// WithCanonical registers the six baseline checks in their fixed order.
func (b *Builder) WithCanonical() *Builder {
	return b.With(
		FutureDate{},
		StaleClaim{Window: b.cfg.StalenessWindow},
		AmountOutOfRange{Ceiling: b.cfg.AmountCeiling},
		MissingSignature{},
		LowConfidenceField{Floor: b.cfg.ConfidenceFloor},
		UnparseableField{},
	)
}

// WithDocumentChecks registers the policy and claim type checks.
func (b *Builder) WithDocumentChecks() *Builder {
	return b.With(PolicyNotFound{}, UnknownClaimType{})
}

// Build freezes the registered rules into an Engine. The builder may keep
// being used without affecting engines already built.
func (b *Builder) Build() *Engine {
	return &Engine{rules: slices.Clone(b.rules)}
}

// Default returns the canonical checks followed by the document checks.
func Default(cfg Config) *Engine {
	return NewBuilder(cfg).WithCanonical().WithDocumentChecks().Build()
}
