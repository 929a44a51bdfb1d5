package decision

import (
	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

const DefaultApprovalThreshold = 80.0

type Config struct {
	ApprovalThreshold float64
}

// Policy maps a score and its flags to an action. Overrides are checked
// before the threshold: a critical flag rejects at any score and a major
// flag always sends the claim to review.
type Policy struct {
	threshold float64
}

func NewPolicy(cfg Config) *Policy {
	if cfg.ApprovalThreshold <= 0 {
		cfg.ApprovalThreshold = DefaultApprovalThreshold
	}
	return &Policy{threshold: cfg.ApprovalThreshold}
}

func (p *Policy) Decide(score float64, flags []entity.Flag) constants.Action {
	switch {
	case entity.HasSeverity(flags, constants.SeverityCritical):
		return constants.ActionReject
	case score >= p.threshold && !entity.HasSeverity(flags, constants.SeverityMajor):
		return constants.ActionApprove
	default:
		return constants.ActionReview
	}
}

// Threshold is the minimum score for approval.
func (p *Policy) Threshold() float64 { return p.threshold }
