package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/app"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/async"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/export"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ocr"
)

type cannedEngine struct {
	blocks []ocr.TextBlock
}

func (c cannedEngine) Name() string { return "canned" }

func (c cannedEngine) Recognize(context.Context, ocr.Request) ([]ocr.TextBlock, error) {
	return c.blocks, nil
}

func cleanClaim() []ocr.TextBlock {
	lines := []string{
		"Claim Type: Health",
		"Amount Claimed: $1,200",
		"Date of Incident: " + time.Now().AddDate(0, 0, -7).Format("2006-01-02"),
		"Policy Number: POL-778812",
		"Claimant Name: Jane Doe",
		"Signature: J. Doe",
	}
	out := make([]ocr.TextBlock, len(lines))
	for i, l := range lines {
		out[i] = ocr.TextBlock{
			Text:       l,
			Confidence: 0.95,
			Page:       1,
			Line:       i + 1,
			Box:        ocr.BoundingBox{X: 10, Y: 20 * (i + 1), W: 8 * len(l), H: 12},
			Kind:       ocr.KindText,
		}
	}
	return out
}

// useCannedApp replaces the OCR engine for the duration of the test.
func useCannedApp(t *testing.T, blocks []ocr.TextBlock) {
	t.Helper()
	original := newApp
	newApp = func(cfg *common.Config, logger *slog.Logger) (*app.App, error) {
		engine := cannedEngine{blocks: blocks}
		return &app.App{
			Config:    cfg,
			Logger:    logger,
			Engine:    engine,
			Processor: app.NewProcessor(cfg, engine, logger),
		}, nil
	}
	t.Cleanup(func() { newApp = original })
}

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, logLevel, logFormat = "", "", ""
	analyzePretty, configDefaults = false, false
	batchOut, batchJSONL = "", false

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.ExecuteContext(t.Context())
	return stdout.String(), err
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestVersionCmd_Executes(t *testing.T) {
	original := version
	SetVersion("1.2.3")
	defer func() { version = original }()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "claimassist version 1.2.3")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"analyze", "batch", "watch", "mcp", "config", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestAnalyzeCmd(t *testing.T) {
	useCannedApp(t, cleanClaim())
	path := filepath.Join(t.TempDir(), "claim.png")
	writePNG(t, path)

	out, err := execute(t, "analyze", path)
	require.NoError(t, err)

	var view entity.ResultView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "approve", view.Action)
	assert.Len(t, view.Fields, 6)
	assert.Equal(t, "1200.00", view.Fields["amount"].Value)
	assert.GreaterOrEqual(t, view.Score, 80.0)
}

func TestAnalyzeCmd_Errors(t *testing.T) {
	useCannedApp(t, cleanClaim())
	dir := t.TempDir()
	txt := filepath.Join(dir, "claim.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o644))

	_, err := execute(t, "analyze", txt)
	assert.ErrorIs(t, err, common.ErrUnsupportedMediaType)

	_, err = execute(t, "analyze", filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = execute(t, "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestBatchCmd(t *testing.T) {
	useCannedApp(t, cleanClaim())
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))
	writePNG(t, filepath.Join(dir, "b.png"))
	writePNG(t, filepath.Join(dir, ".hidden.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	report := filepath.Join(t.TempDir(), "report.xlsx")

	out, err := execute(t, "batch", dir, "--out", report, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "- Approve: 2")
	assert.Contains(t, out, "- Failures: 0")

	f, err := excelize.OpenFile(report)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(export.ClaimsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, filepath.Join(dir, "a.png"), rows[1][0])
	assert.Equal(t, "approve", rows[1][1])
}

func TestBatchCmd_JSONL(t *testing.T) {
	useCannedApp(t, cleanClaim())
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("not an image"), 0o644))

	out, err := execute(t, "batch", dir, "--out", filepath.Join(t.TempDir(), "r.xlsx"), "--jsonl")
	require.NoError(t, err)

	got := map[string]record{}
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var r record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got[filepath.Base(r.Path)] = r
	}
	require.Len(t, got, 2)
	require.NotNil(t, got["a.png"].Result)
	assert.Equal(t, "approve", got["a.png"].Result.Action)
	assert.Len(t, got["a.png"].SHA256, 64)
	assert.Nil(t, got["broken.png"].Result)
	assert.NotEmpty(t, got["broken.png"].Error)
}

func TestConfigShow(t *testing.T) {
	out, err := execute(t, "config", "show", "--defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "approval_threshold: 80")
	assert.NotContains(t, out, "api_key")

	path := filepath.Join(t.TempDir(), "claimassist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decision:\n  approval_threshold: 90\n"), 0o644))
	out, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "approval_threshold: 90")
}

func TestConfigShow_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claimassist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("decision:\n  approval_threshold: 150\n"), 0o644))

	_, err := execute(t, "--config", path, "config", "show")
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)

	_, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "config", "show")
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

type recordingQueue struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.paths = append(q.paths, job.Path)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func TestPump(t *testing.T) {
	paths := make(chan string, 2)
	errs := make(chan error, 1)
	paths <- "/in/a.pdf"
	paths <- "/in/b.png"
	errs <- errors.New("overflow")
	close(paths)
	close(errs)

	var warned []string
	q := &recordingQueue{}
	err := pump(t.Context(), q, paths, errs, func(msg string, _ ...any) { warned = append(warned, msg) })
	require.NoError(t, err)
	assert.Equal(t, []string{"/in/a.pdf", "/in/b.png"}, q.paths)
	assert.Equal(t, []string{"watch.error"}, warned)
}

func TestPump_QueueClosed(t *testing.T) {
	paths := make(chan string, 1)
	paths <- "/in/a.pdf"
	errs := make(chan error)

	err := pump(t.Context(), &recordingQueue{err: async.ErrQueueClosed}, paths, errs, func(string, ...any) {})
	assert.NoError(t, err)
}
