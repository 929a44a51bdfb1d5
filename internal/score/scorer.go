package score

import (
	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

const (
	MaxScore = 100.0

	DefaultFieldWeight = 15.0
)

// DefaultPenalties are the per-flag deductions by severity.
var DefaultPenalties = map[constants.Severity]float64{
	constants.SeverityMinor:    5,
	constants.SeverityMajor:    15,
	constants.SeverityCritical: 40,
}

type Config struct {
	// FieldWeight applies to every field without an entry in FieldWeights.
	FieldWeight  float64
	FieldWeights map[constants.FieldName]float64
	Penalties    map[constants.Severity]float64
}

func DefaultConfig() Config {
	return Config{FieldWeight: DefaultFieldWeight, Penalties: DefaultPenalties}
}

// Breakdown keys.
const (
	fieldKeyPrefix = "field:"
	flagKeyPrefix  = "flag:"
	clampKey       = "clamp"
)

// Scorer combines extraction confidence and rule outcomes into a 0..100
// health score. It holds no mutable state.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	if cfg.Penalties == nil {
		cfg.Penalties = DefaultPenalties
	}
	return &Scorer{cfg: cfg}
}

// Score starts at MaxScore, deducts (1-confidence)*weight per field and a
// severity penalty per flag, then clamps. Every non-zero deduction is
// recorded in the breakdown; flags on the same key accumulate.
func (s *Scorer) Score(fields entity.Fields, flags []entity.Flag) entity.HealthScore {
	breakdown := make(map[string]float64)
	total := MaxScore

	for _, name := range constants.Fields {
		conf := clamp(fields.Get(name).Confidence, 0, 1)
		delta := -(1 - conf) * s.weight(name)
		if delta == 0 {
			continue
		}
		breakdown[fieldKeyPrefix+string(name)] = delta
		total += delta
	}

	for _, f := range flags {
		penalty := s.cfg.Penalties[f.Severity]
		if penalty == 0 {
			continue
		}
		breakdown[FlagKey(f)] -= penalty
		total -= penalty
	}

	value := clamp(total, 0, MaxScore)
	if value != total {
		breakdown[clampKey] = value - total
	}
	return entity.HealthScore{Value: value, Breakdown: breakdown}
}

func (s *Scorer) weight(name constants.FieldName) float64 {
	if w, ok := s.cfg.FieldWeights[name]; ok {
		return w
	}
	return s.cfg.FieldWeight
}

// FlagKey is the breakdown key for a flag: flag:<CODE> or, for flags about
// a single field, flag:<CODE>:<field>.
func FlagKey(f entity.Flag) string {
	if f.Field == "" {
		return flagKeyPrefix + f.Code
	}
	return flagKeyPrefix + f.Code + ":" + string(f.Field)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
