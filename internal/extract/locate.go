package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ocr"
)

// Locator confidence factors applied to the source block's OCR confidence.
const (
	factorInline    = 1.0
	factorNeighbour = 0.9
	factorPattern   = 0.6
	factorDateGuess = 0.5
)

var (
	reCurrencyAmount = regexp.MustCompile(`(?i)(?:[$€£₹]|\b(?:usd|eur|gbp|inr|rs\.?))\s*\d[\d,]*(?:\.\d{1,2})?`)
	reDateGuess      = regexp.MustCompile(`\b(?:\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}|\d{4}-\d{2}-\d{2})\b`)
	rePolicyGuess    = regexp.MustCompile(`(?i)\b(?:pol|pn|plc|pl)[-/ ]?\d{3,}[a-z0-9/\-]*\b`)
	reClaimTypeGuess = regexp.MustCompile(`(?i)\b(health|medical|life|motor|vehicle|auto|travel|property|home|fire)(?:\s+insurance)?\s+claim\b`)
	reTotalHint      = regexp.MustCompile(`(?i)\b(total|amount|claimed)\b`)
)

type candidate struct {
	value string
	conf  float64
}

// picker keeps the highest-confidence candidate per field; the first seen
// wins ties.
type picker map[constants.FieldName]candidate

func (p picker) offer(f constants.FieldName, value string, conf float64) {
	if value == "" {
		return
	}
	if cur, ok := p[f]; ok && cur.conf >= conf {
		return
	}
	p[f] = candidate{value: value, conf: conf}
}

// locate maps text blocks to vocabulary fields. Blocks are read in page,
// line, x order.
func locate(blocks []ocr.TextBlock) map[constants.FieldName]entity.ExtractedField {
	sorted := make([]ocr.TextBlock, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Box.X < b.Box.X
	})

	p := picker{}
	for i, b := range sorted {
		if b.Kind == ocr.KindSignature {
			p.offer(constants.FieldSignaturePresent, "signed", b.Confidence*factorInline)
			continue
		}
		field, inline, ok := matchLabel(b.Text)
		if !ok {
			continue
		}
		if field == constants.FieldSignaturePresent && isNegative(inline) {
			continue
		}
		if inline != "" {
			p.offer(field, inline, b.Confidence*factorInline)
			continue
		}
		if v, ok := rightOf(sorted, i); ok {
			if !(field == constants.FieldSignaturePresent && isNegative(v.Text)) {
				p.offer(field, cleanValue(v.Text), v.Confidence*factorNeighbour)
			}
			continue
		}
		if field == constants.FieldSignaturePresent {
			continue
		}
		if v, ok := below(sorted, i); ok {
			p.offer(field, cleanValue(v.Text), v.Confidence*factorNeighbour)
		}
	}

	guess(sorted, p)

	out := make(map[constants.FieldName]entity.ExtractedField, len(p))
	for f, c := range p {
		out[f] = entity.ExtractedField{Name: f, RawValue: c.value, Confidence: clamp01(c.conf)}
	}
	return out
}

// rightOf returns the next block on the same line if it is not itself a label.
func rightOf(blocks []ocr.TextBlock, i int) (ocr.TextBlock, bool) {
	b := blocks[i]
	if i+1 >= len(blocks) {
		return ocr.TextBlock{}, false
	}
	n := blocks[i+1]
	if n.Page != b.Page || n.Line != b.Line || n.Kind != ocr.KindText {
		return ocr.TextBlock{}, false
	}
	if _, _, isLabel := matchLabel(n.Text); isLabel {
		return ocr.TextBlock{}, false
	}
	return n, true
}

// below returns the block on the next line that overlaps the label
// horizontally, or the first block on that line when none overlaps.
func below(blocks []ocr.TextBlock, i int) (ocr.TextBlock, bool) {
	b := blocks[i]
	var first *ocr.TextBlock
	for j := i + 1; j < len(blocks); j++ {
		n := blocks[j]
		if n.Page != b.Page || n.Line <= b.Line {
			continue
		}
		if n.Line > b.Line+1 {
			break
		}
		if n.Kind != ocr.KindText {
			continue
		}
		if first == nil {
			first = &blocks[j]
		}
		if n.Box.OverlapsX(b.Box) {
			first = &blocks[j]
			break
		}
	}
	if first == nil {
		return ocr.TextBlock{}, false
	}
	if _, _, isLabel := matchLabel(first.Text); isLabel {
		return ocr.TextBlock{}, false
	}
	return *first, true
}

// guess fills fields no label produced from value patterns at reduced
// confidence.
func guess(blocks []ocr.TextBlock, p picker) {
	if _, ok := p[constants.FieldAmount]; !ok {
		guessAmount(blocks, p)
	}
	for _, g := range []struct {
		field  constants.FieldName
		re     *regexp.Regexp
		factor float64
	}{
		{constants.FieldDateOfIncident, reDateGuess, factorDateGuess},
		{constants.FieldPolicyNumber, rePolicyGuess, factorPattern},
	} {
		if _, ok := p[g.field]; ok {
			continue
		}
		for _, b := range blocks {
			if m := g.re.FindString(b.Text); m != "" {
				p.offer(g.field, m, b.Confidence*g.factor)
				break
			}
		}
	}
	if _, ok := p[constants.FieldClaimType]; !ok {
		for _, b := range blocks {
			if m := reClaimTypeGuess.FindStringSubmatch(b.Text); m != nil {
				p.offer(constants.FieldClaimType, m[1], b.Confidence*factorPattern)
				break
			}
		}
	}
}

// guessAmount prefers a currency-marked number on a line mentioning a total.
func guessAmount(blocks []ocr.TextBlock, p picker) {
	var fallback *ocr.TextBlock
	var fallbackMatch string
	for i, b := range blocks {
		m := reCurrencyAmount.FindString(b.Text)
		if m == "" {
			continue
		}
		if lineMentionsTotal(blocks, b) {
			p.offer(constants.FieldAmount, strings.TrimSpace(m), b.Confidence*factorPattern)
			return
		}
		if fallback == nil {
			fallback = &blocks[i]
			fallbackMatch = m
		}
	}
	if fallback != nil {
		p.offer(constants.FieldAmount, strings.TrimSpace(fallbackMatch), fallback.Confidence*factorPattern)
	}
}

func lineMentionsTotal(blocks []ocr.TextBlock, b ocr.TextBlock) bool {
	for _, o := range blocks {
		if o.Page == b.Page && o.Line == b.Line && reTotalHint.MatchString(o.Text) {
			return true
		}
	}
	return false
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
