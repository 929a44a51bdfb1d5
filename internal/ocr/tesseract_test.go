package ocr

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	fn    func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()
	return f.fn(name, args)
}

func (f *fakeRunner) names() []string {
	var out []string
	for _, c := range f.calls {
		out = append(out, c.name)
	}
	return out
}

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t800\t600\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t60\t20\t96.5\tPolicy\n" +
	"5\t1\t1\t1\t1\t2\t75\t10\t40\t20\t93.5\tNo:\n" +
	"5\t1\t1\t1\t1\t3\t300\t12\t90\t20\t90\tPN-12345\n" +
	"5\t1\t2\t1\t1\t1\t10\t50\t70\t20\t88\tAmount\n" +
	"5\t1\t2\t1\t1\t2\t85\t50\t80\t20\t-1\t$1,250.00\n"

func TestParseTSV(t *testing.T) {
	blocks := parseTSV(sampleTSV, 1)
	require.Len(t, blocks, 3)

	assert.Equal(t, "Policy No:", blocks[0].Text)
	assert.InDelta(t, 0.95, blocks[0].Confidence, 1e-9)
	assert.Equal(t, 1, blocks[0].Line)
	assert.Equal(t, BoundingBox{X: 10, Y: 10, W: 105, H: 20}, blocks[0].Box)

	assert.Equal(t, "PN-12345", blocks[1].Text)
	assert.Equal(t, 1, blocks[1].Line, "wide gap splits the block but keeps the visual line")
	assert.InDelta(t, 0.90, blocks[1].Confidence, 1e-9)

	assert.Equal(t, "Amount $1,250.00", blocks[2].Text)
	assert.Equal(t, 2, blocks[2].Line)
	assert.InDelta(t, 0.88, blocks[2].Confidence, 1e-9, "unscored words do not drag the mean")
}

func TestTesseractEngine_Image(t *testing.T) {
	r := &fakeRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "tesseract", name)
		require.Equal(t, "tsv", args[len(args)-1])
		return []byte(sampleTSV), nil, nil
	}}
	e := NewTesseractEngine(Config{}, nil, WithRunner(r))

	blocks, err := e.Recognize(context.Background(), Request{Content: []byte("png"), MediaType: constants.MediaPNG})
	require.NoError(t, err)
	assert.Len(t, blocks, 3)
	assert.Equal(t, []string{"tesseract"}, r.names())
	assert.Contains(t, r.calls[0].args, "eng")
}

func TestTesseractEngine_ImagePlainFallback(t *testing.T) {
	r := &fakeRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		if args[len(args)-1] == "tsv" {
			return nil, []byte("bad tsv"), errors.New("exit status 1")
		}
		return []byte("Claimant Name:    Jane Doe\n-----\nDate of Incident: 12/03/2024\n"), nil, nil
	}}
	e := NewTesseractEngine(Config{}, nil, WithRunner(r))

	blocks, err := e.Recognize(context.Background(), Request{Content: []byte("jpg"), MediaType: constants.MediaJPG})
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Claimant Name:", blocks[0].Text)
	assert.Equal(t, "Jane Doe", blocks[1].Text)
	assert.Equal(t, blocks[0].Line, blocks[1].Line)
	assert.Equal(t, 2, blocks[2].Line, "ruled lines are dropped")
	assert.Greater(t, blocks[0].Confidence, 0.2)
}

func TestTesseractEngine_PDFTextLayer(t *testing.T) {
	layout := "INSURANCE CLAIM FORM\n\nPolicy Number:      PN-77881        Claim Type:   Health\n\fAmount Claimed:   INR 12,500.00\n"
	r := &fakeRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "pdftotext", name)
		return []byte(layout), nil, nil
	}}
	e := NewTesseractEngine(Config{}, nil, WithRunner(r))

	blocks, err := e.Recognize(context.Background(), Request{Content: []byte("%PDF-1.7"), MediaType: constants.MediaPDF})
	require.NoError(t, err)

	var texts []string
	for _, b := range blocks {
		texts = append(texts, b.Text)
		assert.Equal(t, pdfTextConfidence, b.Confidence)
	}
	assert.Equal(t, []string{
		"INSURANCE CLAIM FORM",
		"Policy Number:", "PN-77881", "Claim Type:", "Health",
		"Amount Claimed:", "INR 12,500.00",
	}, texts)
	assert.Equal(t, 2, blocks[len(blocks)-1].Page)
	assert.Equal(t, []string{"pdftotext"}, r.names())
}

func TestTesseractEngine_ScannedPDF(t *testing.T) {
	r := &fakeRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftotext":
			return []byte("\f"), nil, nil
		case "pdftoppm":
			prefix := args[len(args)-1]
			for _, p := range []string{"-1.png", "-2.png"} {
				if err := os.WriteFile(prefix+p, []byte("png"), 0o600); err != nil {
					return nil, nil, err
				}
			}
			assert.Contains(t, args, "300")
			return nil, nil, nil
		case "tesseract":
			if strings.HasSuffix(args[0], "-2.png") {
				return []byte("level\n5\t2\t1\t1\t1\t1\t10\t10\t50\t20\t80\tSigned\n"), nil, nil
			}
			return []byte(sampleTSV), nil, nil
		}
		return nil, nil, errors.New("unexpected " + name)
	}}
	e := NewTesseractEngine(Config{}, nil, WithRunner(r))

	blocks, err := e.Recognize(context.Background(), Request{Content: []byte("%PDF-1.4"), MediaType: constants.MediaPDF})
	require.NoError(t, err)
	require.Len(t, blocks, 4)
	assert.Equal(t, 1, blocks[0].Page)
	assert.Equal(t, 2, blocks[3].Page)
	assert.Equal(t, "Signed", blocks[3].Text)
	assert.Equal(t, []string{"pdftotext", "pdftoppm", "tesseract", "tesseract"}, r.names())
}

func TestTesseractEngine_RunnerFailure(t *testing.T) {
	r := &fakeRunner{fn: func(name string, args []string) ([]byte, []byte, error) {
		return nil, []byte("not found"), errors.New("exec: not found")
	}}
	e := NewTesseractEngine(Config{}, nil, WithRunner(r))

	_, err := e.Recognize(context.Background(), Request{Content: []byte("png"), MediaType: constants.MediaPNG})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract")
}
