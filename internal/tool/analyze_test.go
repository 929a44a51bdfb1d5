package tool

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/ingest"
)

type recordingAnalyzer struct {
	got entity.Document
}

func (r *recordingAnalyzer) Analyze(_ context.Context, doc entity.Document) (entity.ClaimAnalysisResult, error) {
	r.got = doc
	return entity.ClaimAnalysisResult{
		Flags:  []entity.Flag{{Code: constants.FlagPolicyNotFound, Severity: constants.SeverityMajor, Message: "policy number not found on document"}},
		Score:  entity.HealthScore{Value: 70},
		Action: constants.ActionReview,
	}, nil
}

type mapLoader map[string]string

func (m mapLoader) Load(path string) (ingest.Loaded, error) {
	mt, ok := m[path]
	if !ok {
		return ingest.Loaded{}, common.ErrNotFound
	}
	doc, err := entity.NewDocument([]byte("%PDF-1.4"), mt, 0)
	return ingest.Loaded{Path: path, Document: doc.WithFilename(path)}, err
}

func TestAnalyzeClaim(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name      string
		input     InputAnalyzeClaim
		wantErr   bool
		errIs     error
		wantMedia constants.MediaType
		wantName  string
	}{
		{
			name:      "path is loaded from disk",
			input:     InputAnalyzeClaim{Path: "/claims/a.pdf"},
			wantMedia: constants.MediaPDF,
			wantName:  "/claims/a.pdf",
		},
		{
			name:      "content with media type inferred from filename",
			input:     InputAnalyzeClaim{Content: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")), Filename: "scan.pdf"},
			wantMedia: constants.MediaPDF,
			wantName:  "scan.pdf",
		},
		{
			name:    "missing input",
			input:   InputAnalyzeClaim{},
			wantErr: true,
			errIs:   common.ErrInvalidInput,
		},
		{
			name:    "bad base64",
			input:   InputAnalyzeClaim{Content: "***", MediaType: "pdf"},
			wantErr: true,
			errIs:   common.ErrInvalidInput,
		},
		{
			name:    "unknown media type",
			input:   InputAnalyzeClaim{Content: "R0lG", MediaType: "gif"},
			wantErr: true,
			errIs:   common.ErrUnsupportedMediaType,
		},
		{
			name:    "missing file",
			input:   InputAnalyzeClaim{Path: "/claims/none.pdf"},
			wantErr: true,
			errIs:   common.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			an := &recordingAnalyzer{}
			tools := NewTools(an, mapLoader{"/claims/a.pdf": "pdf"}, 0, nil)

			result, out, err := tools.AnalyzeClaim(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantMedia, an.got.MediaType())
			assert.Equal(t, tt.wantName, an.got.Filename())
			assert.Equal(t, "review", out.Result.Action)
			assert.Equal(t, 70.0, out.Result.Score)
			require.Len(t, out.Result.Flags, 1)
			assert.Equal(t, constants.FlagPolicyNotFound, out.Result.Flags[0].Code)
			assert.Len(t, out.Result.Fields, len(constants.Fields))
			assert.NotEmpty(t, out.RequestID)
		})
	}
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(NewTools(&recordingAnalyzer{}, mapLoader{}, 0, nil), "test"))
}
