package ocr

import (
	"context"
	"errors"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

// ErrUnsupportedInput is returned by an engine that cannot read the
// request's media type. Chains skip to the next engine on it.
var ErrUnsupportedInput = errors.New("ocr: engine does not support input")

// BlockKind distinguishes plain text from visual marks some engines detect.
type BlockKind string

const (
	KindText      BlockKind = "text"
	KindSignature BlockKind = "signature"
	KindStamp     BlockKind = "stamp"
)

// BoundingBox is a block's position in page pixels (or character columns
// for text-layer PDFs).
type BoundingBox struct {
	X, Y, W, H int
}

// Right returns the x coordinate of the box's right edge.
func (b BoundingBox) Right() int { return b.X + b.W }

// OverlapsX reports horizontal overlap with o.
func (b BoundingBox) OverlapsX(o BoundingBox) bool {
	return b.X < o.Right() && o.X < b.Right()
}

// TextBlock is one recognized run of text on a line.
type TextBlock struct {
	Text       string
	Confidence float64 // 0..1
	Page       int     // 1-based
	Line       int     // 1-based within page
	Box        BoundingBox
	Kind       BlockKind
}

type Request struct {
	Content   []byte
	MediaType constants.MediaType
}

// Engine recognizes text blocks in a document. Implementations must honor
// ctx cancellation.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, req Request) ([]TextBlock, error)
}

// Config configures the local tesseract/poppler engine.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TessdataDir   string
	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}
