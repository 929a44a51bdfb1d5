package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/async"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// MetadataAnalyzeClaim describes the analyze_claim tool.
var MetadataAnalyzeClaim = &mcp.Tool{
	Name: "analyze_claim",
	Description: "Analyze an insurance claim document (PDF, JPG or PNG). " +
		"Extracts claim type, amount, date of incident, policy number, claimant name and signature, " +
		"runs fraud and consistency checks and returns flags, a 0-100 health score with its breakdown " +
		"and an action: approve, review or reject. " +
		"Provide either a local file path or base64 content with a media type.",
}

// InputAnalyzeClaim is the input for the analyze_claim tool.
type InputAnalyzeClaim struct {
	Path      string `json:"path,omitempty" jsonschema:"local path of the claim document"`
	Content   string `json:"content,omitempty" jsonschema:"base64 encoded document bytes, used when path is empty"`
	MediaType string `json:"media_type,omitempty" jsonschema:"pdf, jpg, png or a MIME type; inferred from filename when empty"`
	Filename  string `json:"filename,omitempty" jsonschema:"optional display name for content"`
}

// OutputAnalyzeClaim is the output for the analyze_claim tool.
type OutputAnalyzeClaim struct {
	Result    entity.ResultView `json:"result"`
	RequestID string            `json:"request_id"`
}

// Tools holds the dependencies of the claim tools.
type Tools struct {
	analyzer async.Analyzer
	loader   async.Loader
	maxBytes int64
	logger   *slog.Logger
}

func NewTools(analyzer async.Analyzer, loader async.Loader, maxBytes int64, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{analyzer: analyzer, loader: loader, maxBytes: maxBytes, logger: logger}
}

// AnalyzeClaim runs the analysis pipeline over one document.
func (t *Tools) AnalyzeClaim(ctx context.Context, _ *mcp.CallToolRequest, input InputAnalyzeClaim) (*mcp.CallToolResult, OutputAnalyzeClaim, error) {
	doc, err := t.document(input)
	if err != nil {
		return nil, OutputAnalyzeClaim{}, err
	}

	ctx, rid := common.EnsureRequestID(ctx)
	res, err := t.analyzer.Analyze(ctx, doc)
	if err != nil {
		t.logger.Warn("tool.analyze_claim.failed", "request_id", rid, "error", err)
		return nil, OutputAnalyzeClaim{}, err
	}
	return nil, OutputAnalyzeClaim{Result: res.View(), RequestID: rid}, nil
}

func (t *Tools) document(input InputAnalyzeClaim) (entity.Document, error) {
	if path := strings.TrimSpace(input.Path); path != "" {
		loaded, err := t.loader.Load(path)
		if err != nil {
			return entity.Document{}, err
		}
		return loaded.Document, nil
	}

	if input.Content == "" {
		return entity.Document{}, fmt.Errorf("%w: path or content is required", common.ErrInvalidInput)
	}
	content, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return entity.Document{}, fmt.Errorf("%w: content must be base64", common.ErrInvalidInput)
	}
	mediaType := input.MediaType
	if mediaType == "" {
		if mt, ok := constants.MediaTypeFromPath(input.Filename); ok {
			mediaType = string(mt)
		}
	}
	doc, err := entity.NewDocument(content, mediaType, t.maxBytes)
	if err != nil {
		return entity.Document{}, err
	}
	return doc.WithFilename(input.Filename), nil
}
