package entity

import (
	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

// Flag is a rule finding. Field names the subject of per-field flags and is
// not part of the serialized contract.
type Flag struct {
	Code     string              `json:"code"`
	Severity constants.Severity  `json:"severity"`
	Message  string              `json:"message"`
	Field    constants.FieldName `json:"-"`
}

// HasSeverity reports whether any flag carries severity s.
func HasSeverity(flags []Flag, s constants.Severity) bool {
	for _, f := range flags {
		if f.Severity == s {
			return true
		}
	}
	return false
}

// HealthScore is a 0..100 quality indicator with its signed contributions.
type HealthScore struct {
	Value     float64
	Breakdown map[string]float64
}
