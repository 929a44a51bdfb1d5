package rules

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// FutureDate flags an incident dated after the analysis day.
type FutureDate struct{}

func (FutureDate) Code() string { return constants.FlagFutureDate }

func (FutureDate) Evaluate(in Input) []entity.Flag {
	d, ok := in.Fields.Get(constants.FieldDateOfIncident).Value.Date()
	if !ok || !d.After(in.Today()) {
		return nil
	}
	return []entity.Flag{{
		Code:     constants.FlagFutureDate,
		Severity: constants.SeverityMajor,
		Message:  fmt.Sprintf("incident date %s is in the future", d.Format(entity.DateLayout)),
		Field:    constants.FieldDateOfIncident,
	}}
}

// StaleClaim flags an incident older than Window.
type StaleClaim struct {
	Window time.Duration
}

func (StaleClaim) Code() string { return constants.FlagStaleClaim }

func (r StaleClaim) Evaluate(in Input) []entity.Flag {
	d, ok := in.Fields.Get(constants.FieldDateOfIncident).Value.Date()
	if !ok || in.Today().Sub(d) <= r.Window {
		return nil
	}
	return []entity.Flag{{
		Code:     constants.FlagStaleClaim,
		Severity: constants.SeverityMinor,
		Message:  fmt.Sprintf("incident date %s is older than %d days", d.Format(entity.DateLayout), int(r.Window.Hours()/24)),
		Field:    constants.FieldDateOfIncident,
	}}
}

// AmountOutOfRange flags non-positive amounts and amounts above Ceiling.
type AmountOutOfRange struct {
	Ceiling decimal.Decimal
}

func (AmountOutOfRange) Code() string { return constants.FlagAmountOutOfRange }

func (r AmountOutOfRange) Evaluate(in Input) []entity.Flag {
	amt, ok := in.Fields.Get(constants.FieldAmount).Value.Amount()
	if !ok {
		return nil
	}
	var msg string
	switch {
	case amt.Sign() <= 0:
		msg = fmt.Sprintf("claimed amount %s is not positive", amt.StringFixed(2))
	case amt.GreaterThan(r.Ceiling):
		msg = fmt.Sprintf("claimed amount %s exceeds ceiling %s", amt.StringFixed(2), r.Ceiling.StringFixed(2))
	default:
		return nil
	}
	return []entity.Flag{{
		Code:     constants.FlagAmountOutOfRange,
		Severity: constants.SeverityMajor,
		Message:  msg,
		Field:    constants.FieldAmount,
	}}
}

// MissingSignature flags a form with no trusted signature.
type MissingSignature struct{}

func (MissingSignature) Code() string { return constants.FlagMissingSignature }

func (MissingSignature) Evaluate(in Input) []entity.Flag {
	if signed, ok := in.Fields.Get(constants.FieldSignaturePresent).Value.Bool(); ok && signed {
		return nil
	}
	return []entity.Flag{{
		Code:     constants.FlagMissingSignature,
		Severity: constants.SeverityCritical,
		Message:  "claimant signature not found",
		Field:    constants.FieldSignaturePresent,
	}}
}

// LowConfidenceField fires once for each field whose confidence is below
// Floor. Absent fields carry zero confidence and always fire.
type LowConfidenceField struct {
	Floor float64
}

func (LowConfidenceField) Code() string { return constants.FlagLowConfidenceField }

func (r LowConfidenceField) Evaluate(in Input) []entity.Flag {
	var flags []entity.Flag
	for _, name := range constants.Fields {
		f := in.Fields.Get(name)
		if f.Confidence >= r.Floor {
			continue
		}
		msg := fmt.Sprintf("%s extracted with low confidence (%.2f)", name, f.Confidence)
		if !f.Present {
			msg = fmt.Sprintf("%s not found on document", name)
		}
		flags = append(flags, entity.Flag{
			Code:     constants.FlagLowConfidenceField,
			Severity: constants.SeverityMinor,
			Message:  msg,
			Field:    name,
		})
	}
	return flags
}

// UnparseableField fires once for each field that has text but no value.
type UnparseableField struct{}

func (UnparseableField) Code() string { return constants.FlagUnparseableField }

func (UnparseableField) Evaluate(in Input) []entity.Flag {
	var flags []entity.Flag
	for _, name := range constants.Fields {
		f := in.Fields.Get(name)
		if !f.Unparseable() {
			continue
		}
		flags = append(flags, entity.Flag{
			Code:     constants.FlagUnparseableField,
			Severity: constants.SeverityMajor,
			Message:  fmt.Sprintf("%s value %q could not be parsed", name, f.Raw),
			Field:    name,
		})
	}
	return flags
}

// PolicyNotFound flags a document with no policy number on it.
type PolicyNotFound struct{}

func (PolicyNotFound) Code() string { return constants.FlagPolicyNotFound }

func (PolicyNotFound) Evaluate(in Input) []entity.Flag {
	if in.Fields.Get(constants.FieldPolicyNumber).Present {
		return nil
	}
	return []entity.Flag{{
		Code:     constants.FlagPolicyNotFound,
		Severity: constants.SeverityMajor,
		Message:  "policy number not found on document",
		Field:    constants.FieldPolicyNumber,
	}}
}

// UnknownClaimType flags a claim type outside the supported lines of business.
type UnknownClaimType struct{}

func (UnknownClaimType) Code() string { return constants.FlagUnknownClaimType }

func (UnknownClaimType) Evaluate(in Input) []entity.Flag {
	ct, ok := in.Fields.Get(constants.FieldClaimType).Value.Text()
	if !ok || slices.Contains(constants.ClaimTypesAsStrings(), ct) {
		return nil
	}
	return []entity.Flag{{
		Code:     constants.FlagUnknownClaimType,
		Severity: constants.SeverityMinor,
		Message:  fmt.Sprintf("claim type %q is not a supported line of business", ct),
		Field:    constants.FieldClaimType,
	}}
}

// ExtractionUnavailableFlag marks a result produced without usable OCR output.
func ExtractionUnavailableFlag(reason string) entity.Flag {
	msg := "document text could not be extracted"
	if reason != "" {
		msg += ": " + reason
	}
	return entity.Flag{
		Code:     constants.FlagExtractionUnavailable,
		Severity: constants.SeverityMajor,
		Message:  msg,
	}
}
