package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

// ClaimAnalysisResult is the outcome of one analysis run.
type ClaimAnalysisResult struct {
	Fields     Fields
	Flags      []Flag
	Score      HealthScore
	Action     constants.Action
	AnalyzedAt time.Time
}

// FieldView is the serialized form of a normalized field.
type FieldView struct {
	Value      any     `json:"value"`
	Confidence float64 `json:"confidence"`
}

// FlagView is the serialized form of a flag.
type FlagView struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ResultView is the stable JSON contract for an analysis result.
type ResultView struct {
	Fields         map[string]FieldView `json:"fields"`
	Flags          []FlagView           `json:"flags"`
	Score          float64              `json:"score"`
	ScoreBreakdown map[string]float64   `json:"score_breakdown"`
	Action         string               `json:"action"`
}

// View renders the result into its stable contract shape.
func (r ClaimAnalysisResult) View() ResultView {
	v := ResultView{
		Fields:         make(map[string]FieldView, len(constants.Fields)),
		Flags:          make([]FlagView, 0, len(r.Flags)),
		Score:          round2(r.Score.Value),
		ScoreBreakdown: make(map[string]float64, len(r.Score.Breakdown)),
		Action:         string(r.Action),
	}
	for _, name := range constants.Fields {
		f := r.Fields.Get(name)
		v.Fields[string(name)] = FieldView{Value: f.Value.Interface(), Confidence: round2(f.Confidence)}
	}
	for _, f := range r.Flags {
		v.Flags = append(v.Flags, FlagView{Code: f.Code, Severity: string(f.Severity), Message: f.Message})
	}
	for k, c := range r.Score.Breakdown {
		v.ScoreBreakdown[k] = round2(c)
	}
	return v
}

func (r ClaimAnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
