package normalize

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// DefaultSignatureMinConfidence is the floor below which a located
// signature is not trusted.
const DefaultSignatureMinConfidence = 0.5

type Config struct {
	SignatureMinConfidence float64
	DateFormats            []string
}

// Normalizer converts raw field strings into typed values. It is pure and
// safe for concurrent use.
type Normalizer struct {
	cfg Config
}

func NewNormalizer(cfg Config) *Normalizer {
	if cfg.SignatureMinConfidence <= 0 {
		cfg.SignatureMinConfidence = DefaultSignatureMinConfidence
	}
	if len(cfg.DateFormats) == 0 {
		cfg.DateFormats = common.DefaultDateFormats
	}
	return &Normalizer{cfg: cfg}
}

// Normalize returns every vocabulary field. Absent inputs yield
// Present=false with zero confidence; parse failures keep the raw string
// with no typed value. Keys outside the vocabulary are ignored.
func (n *Normalizer) Normalize(fields map[constants.FieldName]entity.ExtractedField) entity.Fields {
	out := make(entity.Fields, len(constants.Fields))
	for _, name := range constants.Fields {
		ef, ok := fields[name]
		if !ok {
			nf := entity.NormalizedField{Name: name, Value: entity.NoValue()}
			if name == constants.FieldSignaturePresent {
				nf.Value = entity.BoolValue(false)
			}
			out[name] = nf
			continue
		}
		out[name] = entity.NormalizedField{
			Name:       name,
			Raw:        ef.RawValue,
			Value:      n.parse(name, ef.RawValue, ef.Confidence),
			Confidence: ef.Confidence,
			Present:    true,
		}
	}
	return out
}

func (n *Normalizer) parse(name constants.FieldName, raw string, conf float64) entity.TypedValue {
	switch name {
	case constants.FieldDateOfIncident:
		if t, ok := ParseDate(raw, n.cfg.DateFormats); ok {
			return entity.DateValue(t)
		}
	case constants.FieldAmount:
		if d, ok := ParseAmount(raw); ok {
			return entity.AmountValue(d)
		}
	case constants.FieldPolicyNumber:
		if s, ok := PolicyNumber(raw); ok {
			return entity.StringValue(s)
		}
	case constants.FieldClaimantName:
		if s, ok := PersonName(raw); ok {
			return entity.StringValue(s)
		}
	case constants.FieldClaimType:
		if s, ok := ClaimType(raw); ok {
			return entity.StringValue(s)
		}
	case constants.FieldSignaturePresent:
		return entity.BoolValue(strings.TrimSpace(raw) != "" && conf >= n.cfg.SignatureMinConfidence)
	}
	return entity.NoValue()
}

var (
	reOrdinal   = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	reDateTrail = regexp.MustCompile(`[\s.,;]+$`)
)

// ParseDate tries each layout in order against the cleaned input.
func ParseDate(raw string, layouts []string) (time.Time, bool) {
	s := collapse(raw)
	s = reOrdinal.ReplaceAllString(s, "$1")
	s = reDateTrail.ReplaceAllString(s, "")
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	reCurrencyWords = regexp.MustCompile(`(?i)\b(usd|eur|gbp|inr|rs|rupees?|dollars?|euros?|pounds?)\b\.?`)
	reCurrencySyms  = regexp.MustCompile(`[$€£₹¥]`)
	reDecimal       = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// ParseAmount strips currency marks and thousands separators and parses the
// remainder as a decimal. "(120.00)" is read as negative. Commas group
// digits only; a comma after the decimal point ("1.200,50") is rejected.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	s = reCurrencyWords.ReplaceAllString(s, "")
	s = reCurrencySyms.ReplaceAllString(s, "")
	s = strings.TrimSuffix(strings.TrimSpace(s), "/-")
	if dot := strings.IndexByte(s, '.'); dot >= 0 && strings.ContainsRune(s[dot:], ',') {
		return decimal.Decimal{}, false
	}
	s = strings.NewReplacer(",", "", " ", "", " ", "", "'", "").Replace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if !reDecimal.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

var rePolicyNumber = regexp.MustCompile(`^[A-Z0-9][A-Z0-9/\-]{3,}$`)

// PolicyNumber upper-cases and removes inner spaces; the result must look
// like an identifier.
func PolicyNumber(raw string) (string, bool) {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	s = strings.TrimLeft(s, "#:")
	s = strings.TrimRight(s, ".,;")
	if !rePolicyNumber.MatchString(s) {
		return "", false
	}
	return s, true
}

// PersonName collapses whitespace and title-cases. Values without letters
// are rejected.
func PersonName(raw string) (string, bool) {
	s := collapse(raw)
	if !strings.ContainsFunc(s, unicode.IsLetter) {
		return "", false
	}
	// Casers are not safe for concurrent use, so build one per call.
	return cases.Title(language.Und).String(s), true
}

// ClaimType canonicalizes known lines of business and keeps anything else
// lower-cased so rules can flag it.
func ClaimType(raw string) (string, bool) {
	if ct, ok := constants.CanonicalizeClaimType(raw); ok {
		return string(ct), true
	}
	s := strings.ToLower(collapse(raw))
	if !strings.ContainsFunc(s, unicode.IsLetter) {
		return "", false
	}
	return s, true
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
