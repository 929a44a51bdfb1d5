package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

type label struct {
	field constants.FieldName
	text  string // lower-case, single-spaced
}

var fieldLabels = map[constants.FieldName][]string{
	constants.FieldClaimType: {
		"claim type", "type of claim", "claim category", "nature of claim",
		"insurance type", "type of insurance", "policy type", "line of business",
	},
	constants.FieldAmount: {
		"amount claimed", "claimed amount", "claim amount", "total amount claimed",
		"total amount", "total claim amount", "sum claimed", "bill amount",
		"amount", "total",
	},
	constants.FieldDateOfIncident: {
		"date of incident", "incident date", "date of loss", "loss date",
		"date of accident", "accident date", "date of event", "date of admission",
		"date of occurrence",
	},
	constants.FieldPolicyNumber: {
		"policy number", "policy no", "policy #", "policy id", "policy num",
		"policy",
	},
	constants.FieldClaimantName: {
		"claimant name", "name of claimant", "claimant", "insured name",
		"name of insured", "name of the insured", "policyholder name",
		"policy holder name", "policyholder", "patient name", "name",
	},
	constants.FieldSignaturePresent: {
		"signature of claimant", "claimant signature", "claimant's signature",
		"signature of insured", "signature", "signed by", "signed",
	},
}

// orderedLabels holds every label, longest first, so specific labels win.
var orderedLabels = func() []label {
	var out []label
	for f, texts := range fieldLabels {
		for _, t := range texts {
			out = append(out, label{field: f, text: t})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].text) != len(out[j].text) {
			return len(out[i].text) > len(out[j].text)
		}
		return out[i].text < out[j].text
	})
	return out
}()

var (
	reLeadingParen = regexp.MustCompile(`^\s*\([^)]*\)`)
	reBlankMarks   = regexp.MustCompile(`^[\s_.\-–—x×]*$`)
)

// matchLabel reports whether text starts with a known label and returns the
// inline value that follows it, if any.
func matchLabel(text string) (constants.FieldName, string, bool) {
	norm := strings.Join(strings.Fields(text), " ")
	lower := asciiLower(norm)
	for _, l := range orderedLabels {
		if !strings.HasPrefix(lower, l.text) {
			continue
		}
		if len(lower) > len(l.text) && isWordByte(lower[len(l.text)]) {
			continue
		}
		rest := norm[len(l.text):]
		if lead := strings.TrimLeft(rest, " "); lead != "" && strings.IndexAny(lead, ":#.-–|(") != 0 && strings.Contains(lead, ":") {
			// a longer, unknown label such as "Name of Hospital:"
			continue
		}
		rest = reLeadingParen.ReplaceAllString(rest, "")
		rest = strings.TrimLeft(rest, " :#.-–|")
		return l.field, cleanValue(rest), true
	}
	return "", "", false
}

// cleanValue trims separators and treats fill-in marks as blank.
func cleanValue(s string) string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), ":|"))
	if reBlankMarks.MatchString(s) {
		return ""
	}
	return s
}

var negativeMarks = map[string]struct{}{
	"no": {}, "none": {}, "n/a": {}, "na": {}, "nil": {}, "not signed": {},
	"unsigned": {}, "absent": {}, "false": {}, "missing": {},
}

// isNegative reports values like "No" written against a signature label.
func isNegative(s string) bool {
	_, ok := negativeMarks[asciiLower(strings.TrimSpace(s))]
	return ok
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}

// asciiLower lowercases A-Z only so byte offsets stay aligned with the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
