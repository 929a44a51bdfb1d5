package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

// pdfTextConfidence is assigned to text read from a PDF's embedded text
// layer, which is not subject to recognition error.
const pdfTextConfidence = 0.95

// minTextLayerRunes below this the PDF is treated as scanned and rasterized.
const minTextLayerRunes = 16

// TesseractEngine runs poppler and tesseract binaries on a temp copy of the
// document.
type TesseractEngine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type TesseractOption func(*TesseractEngine)

// WithRunner swaps the command runner, mainly for tests.
func WithRunner(r Runner) TesseractOption {
	return func(e *TesseractEngine) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewTesseractEngine(cfg Config, logger *slog.Logger, opts ...TesseractOption) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &TesseractEngine{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize picks a strategy based on media type.
func (e *TesseractEngine) Recognize(ctx context.Context, req Request) ([]TextBlock, error) {
	tmpDir, err := os.MkdirTemp("", "claimassist-ocr-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}()

	path := filepath.Join(tmpDir, "document."+string(req.MediaType))
	if err := os.WriteFile(path, req.Content, 0o600); err != nil {
		return nil, err
	}

	e.logger.Debug("starting ocr", "engine", e.Name(), "media_type", req.MediaType, "bytes", len(req.Content))
	switch {
	case req.MediaType == constants.MediaPDF:
		return e.recognizePDF(ctx, path, tmpDir)
	case req.MediaType.IsImage():
		return e.recognizeImage(ctx, path, 1)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, req.MediaType)
	}
}

func (e *TesseractEngine) recognizePDF(ctx context.Context, path, tmpDir string) ([]TextBlock, error) {
	blocks, err := e.pdfToText(ctx, path)
	if err != nil {
		e.logger.Warn("pdftotext failed, rasterizing", "error", err)
	}
	if textRunes(blocks) >= minTextLayerRunes {
		return blocks, nil
	}
	return e.pdfToOCR(ctx, path, tmpDir)
}

func (e *TesseractEngine) pdfToText(ctx context.Context, path string) ([]TextBlock, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	// A form-feed \f is used as page separator by default
	var blocks []TextBlock
	for i, page := range strings.Split(string(out), "\f") {
		blocks = append(blocks, layoutBlocks(page, i+1, pdfTextConfidence)...)
	}
	return blocks, nil
}

func (e *TesseractEngine) pdfToOCR(ctx context.Context, path, tmpDir string) ([]TextBlock, error) {
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	var blocks []TextBlock
	var firstErr error
	for i, img := range matches {
		pageBlocks, err := e.recognizeImage(ctx, img, i+1)
		if err != nil {
			e.logger.Warn("page ocr failed", "page", i+1, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		blocks = append(blocks, pageBlocks...)
	}
	if len(blocks) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return blocks, nil
}

func (e *TesseractEngine) recognizeImage(ctx context.Context, path string, page int) ([]TextBlock, error) {
	blocks, err := e.tesseractTSV(ctx, path, page)
	if err == nil && len(blocks) > 0 {
		return blocks, nil
	}
	if err != nil {
		e.logger.Warn("tesseract tsv failed, falling back to plain text", "error", err)
	}

	txt, err := e.tesseractText(ctx, path)
	if err != nil {
		return nil, err
	}
	return layoutBlocks(txt, page, heuristicConfidence(txt)), nil
}

func (e *TesseractEngine) baseArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

func (e *TesseractEngine) tesseractText(ctx context.Context, path string) (string, error) {
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.baseArgs(path)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseractTSV runs tesseract in TSV mode and groups words into line blocks.
func (e *TesseractEngine) tesseractTSV(ctx context.Context, path string, page int) ([]TextBlock, error) {
	args := append(e.baseArgs(path), "tsv")
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract TSV: %w: %s", err, truncate(string(errb), 512))
	}
	return parseTSV(string(out), page), nil
}

// layoutBlocks turns layout text into one block per column run.
func layoutBlocks(text string, page int, conf float64) []TextBlock {
	var blocks []TextBlock
	line := 0
	for _, ln := range normalizeText(text) {
		cols := splitColumns(ln)
		if len(cols) == 0 {
			continue
		}
		line++
		for _, c := range cols {
			blocks = append(blocks, TextBlock{
				Text:       c.text,
				Confidence: conf,
				Page:       page,
				Line:       line,
				Box:        BoundingBox{X: c.start, Y: line, W: runeCount(c.text), H: 1},
				Kind:       KindText,
			})
		}
	}
	return blocks
}

func textRunes(blocks []TextBlock) int {
	n := 0
	for _, b := range blocks {
		n += runeCount(strings.TrimSpace(b.Text))
	}
	return n
}
