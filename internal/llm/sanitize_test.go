package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	raw := []byte(`{
		"text_lines": ["Policy No: PN-1", {"text": "Amount: 10.00", "confidence": 87, "page": 2}, {"text": ""}, 42],
		"signature": {"present": true, "confidence": "0.7", "where": "bottom"},
		"model": "x"
	}`)
	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	require.NoError(t, err)
	require.NoError(t, MustCompileTranscriptionSchema().Validate(out))

	var tr Transcription
	require.NoError(t, json.Unmarshal(out, &tr))
	require.Len(t, tr.Lines, 2)
	assert.Equal(t, "Policy No: PN-1", tr.Lines[0].Text)
	assert.InDelta(t, 0.87, tr.Lines[1].Confidence, 1e-9)
	assert.Equal(t, 2, tr.Lines[1].Page)
	require.NotNil(t, tr.Signature)
	assert.True(t, tr.Signature.Present)
	assert.InDelta(t, 0.7, tr.Signature.Confidence, 1e-9)

	assert.Contains(t, dropped, "text_lines->lines")
	assert.Contains(t, dropped, "model(unknown)")
	assert.Contains(t, dropped, "lines[2]")
}

func TestSchema_Validate(t *testing.T) {
	schema := MustCompileTranscriptionSchema()
	assert.NoError(t, schema.Validate([]byte(`{"lines":[{"text":"a","confidence":0.5}]}`)))
	assert.Error(t, schema.Validate([]byte(`{"lines":[{"text":"a","confidence":5}]}`)))
	assert.Error(t, schema.Validate([]byte(`{"signature":{"present":true}}`)))
	assert.Error(t, schema.Validate([]byte(`{"lines":[],"extra":1}`)))
	assert.Error(t, schema.Validate([]byte(`not json`)))
}

func TestCompileSchema_Invalid(t *testing.T) {
	_, err := CompileSchema(map[string]any{"type": 12})
	assert.Error(t, err)

	_, err = CompileSchema(map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFence(`  {"a":1} `))
}
