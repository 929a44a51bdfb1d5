package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/async"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// ClaimsService implements ClaimAnalysisServer.
//
// Analyze request fields: content (base64), media_type (pdf, jpg, png or a
// MIME type; inferred from filename when empty), filename (optional).
// AnalyzeFile request fields: path, absolute or relative to the file root.
// Both respond with the result contract: fields, flags, score,
// score_breakdown, action, plus request_id.
type ClaimsService struct {
	analyzer async.Analyzer
	loader   async.Loader
	maxBytes int64
	root     string
	logger   *slog.Logger
}

type ServiceOption func(*ClaimsService)

// WithFileRoot confines AnalyzeFile to dir. Without it AnalyzeFile is
// disabled.
func WithFileRoot(dir string) ServiceOption {
	return func(s *ClaimsService) { s.root = strings.TrimSpace(dir) }
}

func NewClaimsService(analyzer async.Analyzer, loader async.Loader, maxBytes int64, logger *slog.Logger, opts ...ServiceOption) *ClaimsService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ClaimsService{analyzer: analyzer, loader: loader, maxBytes: maxBytes, logger: logger}
	for _, o := range opts {
		o(s)
	}
	if s.root != "" {
		root, err := filepath.Abs(s.root)
		if err == nil {
			if resolved, rErr := filepath.EvalSymlinks(root); rErr == nil {
				root = resolved
			} else {
				logger.Warn("server.file_root.unresolved", "root", root, "error", rErr)
			}
			s.root = root
		}
	}
	return s
}

func (s *ClaimsService) Analyze(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	filename := strings.TrimSpace(fields["filename"].GetStringValue())
	mediaType := strings.TrimSpace(fields["media_type"].GetStringValue())
	if mediaType == "" && filename != "" {
		if mt, ok := constants.MediaTypeFromPath(filename); ok {
			mediaType = string(mt)
		}
	}
	if mediaType == "" {
		return nil, status.Error(codes.InvalidArgument, "media_type is required")
	}

	encoded := fields["content"].GetStringValue()
	if encoded == "" {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "content must be base64")
	}

	doc, err := entity.NewDocument(content, mediaType, s.maxBytes)
	if err != nil {
		s.logger.Warn("server.analyze.rejected", "request_id", common.RequestIDFromContext(ctx), "error", err)
		return nil, common.GRPCStatus(err)
	}
	return s.analyze(ctx, doc.WithFilename(filename))
}

func (s *ClaimsService) AnalyzeFile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := strings.TrimSpace(req.GetFields()["path"].GetStringValue())
	if path == "" {
		return nil, status.Error(codes.InvalidArgument, "path is required")
	}
	if s.loader == nil || s.root == "" {
		return nil, status.Error(codes.Unimplemented, "file analysis is disabled")
	}
	resolved, err := s.confine(path)
	if err != nil {
		s.logger.Warn("server.analyze_file.rejected", "request_id", common.RequestIDFromContext(ctx), "path", path, "error", err)
		return nil, err
	}
	loaded, err := s.loader.Load(resolved)
	if err != nil {
		s.logger.Warn("server.analyze_file.load_failed", "request_id", common.RequestIDFromContext(ctx), "path", path, "error", err)
		return nil, common.GRPCStatus(err)
	}
	return s.analyze(ctx, loaded.Document)
}

// confine resolves path against the file root, following symlinks, and
// fails unless the result stays inside the root. The lexical check runs
// first so outside paths are never touched on disk.
func (s *ClaimsService) confine(path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	path = filepath.Clean(path)
	if !within(s.root, path) {
		return "", status.Error(codes.PermissionDenied, "path is outside the file root")
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", status.Error(codes.NotFound, "file not found")
		}
		return "", status.Error(codes.InvalidArgument, "path cannot be resolved")
	}
	if !within(s.root, resolved) {
		return "", status.Error(codes.PermissionDenied, "path is outside the file root")
	}
	return resolved, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *ClaimsService) analyze(ctx context.Context, doc entity.Document) (*structpb.Struct, error) {
	res, err := s.analyzer.Analyze(ctx, doc)
	if err != nil {
		return nil, common.GRPCStatus(err)
	}
	out, err := resultStruct(res)
	if err != nil {
		s.logger.Error("server.encode.failed", "error", err)
		return nil, status.Error(codes.Internal, "encode result")
	}
	out.Fields["request_id"] = structpb.NewStringValue(common.RequestIDFromContext(ctx))
	return out, nil
}

func resultStruct(res entity.ClaimAnalysisResult) (*structpb.Struct, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
