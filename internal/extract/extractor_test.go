package extract

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ocr"
)

type fakeEngine struct {
	blocks []ocr.TextBlock
	err    error
	block  bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(ctx context.Context, _ ocr.Request) ([]ocr.TextBlock, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.blocks, f.err
}

func testImage(t *testing.T, format string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func pngDoc(t *testing.T) entity.Document {
	t.Helper()
	doc, err := entity.NewDocument(testImage(t, "png"), "png", 0)
	require.NoError(t, err)
	return doc
}

func line(n int, conf float64, texts ...string) []ocr.TextBlock {
	var out []ocr.TextBlock
	x := 0
	for _, s := range texts {
		out = append(out, ocr.TextBlock{Text: s, Confidence: conf, Page: 1, Line: n, Box: ocr.BoundingBox{X: x, Y: n, W: len(s), H: 1}, Kind: ocr.KindText})
		x += len(s) + 5
	}
	return out
}

func join(parts ...[]ocr.TextBlock) []ocr.TextBlock {
	var out []ocr.TextBlock
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func extract(t *testing.T, blocks []ocr.TextBlock) map[constants.FieldName]entity.ExtractedField {
	t.Helper()
	e := NewExtractor(&fakeEngine{blocks: blocks}, Config{}, nil)
	fields, err := e.Extract(context.Background(), pngDoc(t))
	require.NoError(t, err)
	return fields
}

func TestExtract_InlineLabels(t *testing.T) {
	fields := extract(t, join(
		line(1, 0.9, "CLAIM FORM"),
		line(2, 0.9, "Claim Type: Health"),
		line(3, 0.8, "Amount Claimed (INR): 12,500.00"),
		line(4, 0.95, "Date of Incident: 05/03/2024"),
		line(5, 0.9, "Policy No.: PN-77881"),
		line(6, 0.7, "Claimant Name: jane   doe"),
		line(7, 0.6, "Signature: J. Doe"),
	))

	require.Len(t, fields, 6)
	assert.Equal(t, entity.ExtractedField{Name: constants.FieldClaimType, RawValue: "Health", Confidence: 0.9}, fields[constants.FieldClaimType])
	assert.Equal(t, "12,500.00", fields[constants.FieldAmount].RawValue)
	assert.Equal(t, 0.8, fields[constants.FieldAmount].Confidence)
	assert.Equal(t, "05/03/2024", fields[constants.FieldDateOfIncident].RawValue)
	assert.Equal(t, "PN-77881", fields[constants.FieldPolicyNumber].RawValue)
	assert.Equal(t, "jane doe", fields[constants.FieldClaimantName].RawValue)
	assert.Equal(t, "J. Doe", fields[constants.FieldSignaturePresent].RawValue)
	assert.Equal(t, 0.6, fields[constants.FieldSignaturePresent].Confidence)
}

func TestExtract_Neighbours(t *testing.T) {
	fields := extract(t, join(
		line(1, 0.9, "Policy Number:", "PN-10021", "Claim Type:", "Vehicle"),
		line(2, 1.0, "Claimant Name"),
		line(3, 0.8, "Ravi Kumar"),
		line(4, 0.9, "Signature of Claimant"),
		line(5, 0.9, "Reviewed by the branch office"),
	))

	assert.Equal(t, "PN-10021", fields[constants.FieldPolicyNumber].RawValue)
	assert.InDelta(t, 0.81, fields[constants.FieldPolicyNumber].Confidence, 1e-9)
	assert.Equal(t, "Vehicle", fields[constants.FieldClaimType].RawValue)
	assert.Equal(t, "Ravi Kumar", fields[constants.FieldClaimantName].RawValue)
	assert.InDelta(t, 0.72, fields[constants.FieldClaimantName].Confidence, 1e-9)

	_, ok := fields[constants.FieldSignaturePresent]
	assert.False(t, ok, "a signature label with nothing beside it is not a signature")
}

func TestExtract_LongestLabelWins(t *testing.T) {
	fields := extract(t, join(
		line(1, 0.9, "Policy Type: Travel"),
		line(2, 0.9, "Name of Hospital: City Care"),
		line(3, 0.9, "Policyholder Name: A. Shah"),
	))
	assert.Equal(t, "Travel", fields[constants.FieldClaimType].RawValue)
	assert.Equal(t, "A. Shah", fields[constants.FieldClaimantName].RawValue)
	_, ok := fields[constants.FieldPolicyNumber]
	assert.False(t, ok)
}

func TestExtract_HighestConfidenceWins(t *testing.T) {
	fields := extract(t, join(
		line(1, 0.5, "Amount: 100.00"),
		line(2, 0.9, "Total Amount: 250.00"),
		line(3, 0.9, "Amount: 999.00"),
	))
	assert.Equal(t, "250.00", fields[constants.FieldAmount].RawValue, "ties keep the earliest block")
	assert.Equal(t, 0.9, fields[constants.FieldAmount].Confidence)
}

func TestExtract_PatternFallbacks(t *testing.T) {
	fields := extract(t, join(
		line(1, 1.0, "MOTOR INSURANCE CLAIM FORM"),
		line(2, 1.0, "Ref POL-5531/A issued on 14-02-2024"),
		line(3, 1.0, "Paid $40.00 deposit"),
		line(4, 1.0, "Balance payable (total)", "$1,200.50"),
	))

	assert.Equal(t, "MOTOR", fields[constants.FieldClaimType].RawValue)
	assert.Equal(t, factorPattern, fields[constants.FieldClaimType].Confidence)
	assert.Equal(t, "POL-5531/A", fields[constants.FieldPolicyNumber].RawValue)
	assert.Equal(t, "14-02-2024", fields[constants.FieldDateOfIncident].RawValue)
	assert.Equal(t, factorDateGuess, fields[constants.FieldDateOfIncident].Confidence)
	assert.Equal(t, "$1,200.50", fields[constants.FieldAmount].RawValue)
	_, ok := fields[constants.FieldClaimantName]
	assert.False(t, ok)
}

func TestExtract_Signature(t *testing.T) {
	t.Run("negative value", func(t *testing.T) {
		fields := extract(t, join(line(1, 0.9, "Claim Type: Life"), line(2, 0.9, "Signature: No")))
		_, ok := fields[constants.FieldSignaturePresent]
		assert.False(t, ok)
	})
	t.Run("blank fill-in line", func(t *testing.T) {
		fields := extract(t, join(line(1, 0.9, "Signature: ________")))
		_, ok := fields[constants.FieldSignaturePresent]
		assert.False(t, ok)
	})
	t.Run("visual mark", func(t *testing.T) {
		blocks := join(line(1, 0.9, "Claim Type: Life"))
		blocks = append(blocks, ocr.TextBlock{Text: "signature", Confidence: 0.85, Page: 1, Line: 2, Kind: ocr.KindSignature})
		fields := extract(t, blocks)
		assert.Equal(t, entity.ExtractedField{Name: constants.FieldSignaturePresent, RawValue: "signed", Confidence: 0.85}, fields[constants.FieldSignaturePresent])
	})
}

func TestExtract_Errors(t *testing.T) {
	jpegDoc, err := entity.NewDocument(testImage(t, "jpeg"), "png", 0)
	require.NoError(t, err)
	garbagePDF, err := entity.NewDocument([]byte("hello world"), "pdf", 0)
	require.NoError(t, err)
	realPDF, err := entity.NewDocument([]byte("%PDF-1.7\n1 0 obj"), "pdf", 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		doc     entity.Document
		engine  *fakeEngine
		timeout time.Duration
		want    error
	}{
		{"declared png holds jpeg", jpegDoc, &fakeEngine{}, 0, common.ErrUnsupportedMediaType},
		{"pdf without header", garbagePDF, &fakeEngine{}, 0, common.ErrUnsupportedMediaType},
		{"engine error", realPDF, &fakeEngine{err: errors.New("tesseract missing")}, 0, common.ErrExtractionUnavailable},
		{"engine timeout", realPDF, &fakeEngine{block: true}, 20 * time.Millisecond, common.ErrExtractionUnavailable},
		{"no text", realPDF, &fakeEngine{blocks: line(1, 0.9, "   ")}, 0, common.ErrExtractionUnavailable},
		{"only a signature mark", realPDF, &fakeEngine{blocks: []ocr.TextBlock{{Kind: ocr.KindSignature, Confidence: 0.9}}}, 0, common.ErrExtractionUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.engine, Config{OCRTimeout: tt.timeout}, nil)
			_, err := e.Extract(context.Background(), tt.doc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestExtract_PartialIsNotAnError(t *testing.T) {
	fields := extract(t, line(1, 0.9, "Policy Number: PN-1"))
	assert.Len(t, fields, 1)
}
