package entity

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
)

func TestNewDocument(t *testing.T) {
	doc, err := NewDocument([]byte("%PDF-1.7"), "application/pdf", 0)
	require.NoError(t, err)
	assert.Equal(t, constants.MediaPDF, doc.MediaType())
	assert.Equal(t, int64(8), doc.Size())

	_, err = NewDocument([]byte("GIF89a"), "gif", 0)
	assert.True(t, errors.Is(err, common.ErrUnsupportedMediaType))

	_, err = NewDocument(make([]byte, 11), "png", 10)
	assert.True(t, errors.Is(err, common.ErrDocumentTooLarge))

	doc, err = NewDocument(make([]byte, 10), "png", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), doc.Size())
}

func TestDocumentIsImmutable(t *testing.T) {
	src := []byte("%PDF-1.4")
	doc, err := NewDocument(src, "pdf", 0)
	require.NoError(t, err)

	src[0] = 'X'
	got := doc.Content()
	assert.Equal(t, byte('%'), got[0])

	got[1] = 'Y'
	assert.Equal(t, byte('P'), doc.Content()[1])
}

func TestTypedValue(t *testing.T) {
	d := DateValue(time.Date(2024, 3, 5, 17, 30, 0, 0, time.FixedZone("X", 3600)))
	got, ok := d.Date()
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", got.Format(DateLayout))
	_, ok = d.Amount()
	assert.False(t, ok)

	a := AmountValue(decimal.RequireFromString("1250.5"))
	assert.Equal(t, "1250.50", a.Interface())
	assert.True(t, a.Equal(AmountValue(decimal.RequireFromString("1250.50"))))
	assert.False(t, a.Equal(StringValue("1250.50")))

	assert.Nil(t, NoValue().Interface())
	assert.True(t, NoValue().IsNone())
	assert.Equal(t, "none", NoValue().Kind().String())
}

func TestResultJSONShape(t *testing.T) {
	res := ClaimAnalysisResult{
		Fields: Fields{
			constants.FieldAmount: {
				Name: constants.FieldAmount, Raw: "$1,250.00", Confidence: 0.9, Present: true,
				Value: AmountValue(decimal.RequireFromString("1250")),
			},
			constants.FieldSignaturePresent: {
				Name: constants.FieldSignaturePresent, Raw: "J. Doe", Confidence: 0.8, Present: true,
				Value: BoolValue(true),
			},
		},
		Flags:  []Flag{{Code: constants.FlagStaleClaim, Severity: constants.SeverityMinor, Message: "old", Field: constants.FieldDateOfIncident}},
		Score:  HealthScore{Value: 81.456, Breakdown: map[string]float64{"flag:STALE_CLAIM": -5}},
		Action: constants.ActionApprove,
	}

	b, err := json.Marshal(res)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))

	fields := m["fields"].(map[string]any)
	assert.Len(t, fields, len(constants.Fields))
	assert.Equal(t, "1250.00", fields["amount"].(map[string]any)["value"])
	assert.Equal(t, true, fields["signature_present"].(map[string]any)["value"])
	assert.Nil(t, fields["policy_number"].(map[string]any)["value"])
	assert.Equal(t, 0.0, fields["policy_number"].(map[string]any)["confidence"])

	flags := m["flags"].([]any)
	require.Len(t, flags, 1)
	flag := flags[0].(map[string]any)
	assert.Equal(t, "STALE_CLAIM", flag["code"])
	assert.Equal(t, "minor", flag["severity"])
	assert.NotContains(t, flag, "Field")

	assert.Equal(t, 81.46, m["score"])
	assert.Equal(t, "approve", m["action"])
	assert.Equal(t, -5.0, m["score_breakdown"].(map[string]any)["flag:STALE_CLAIM"])
}
