package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/anucodes-hub/ClaimAssist-AI/constants"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/common"
	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// FSIngestor reads claim files from the local filesystem.
type FSIngestor struct {
	MaxBytes   int64
	SkipHidden bool
	logger     *slog.Logger
}

func NewFSIngestor(maxBytes int64, skipHidden bool, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = entity.DefaultMaxBytes
	}
	return &FSIngestor{MaxBytes: maxBytes, SkipHidden: skipHidden, logger: logger}
}

// Load validates extension and size before reading the whole file.
func (i *FSIngestor) Load(path string) (Loaded, error) {
	var out Loaded

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	mt, ok := constants.MediaTypeFromPath(abs)
	if !ok {
		return out, common.UnsupportedMediaTypef("unsupported or missing extension: %q", filepath.Ext(abs))
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, fmt.Errorf("%w: %s", common.ErrNotFound, abs)
		}
		return out, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return out, fmt.Errorf("%w: %s is a directory", common.ErrInvalidInput, abs)
	}
	if info.Size() > i.MaxBytes {
		return out, common.DocumentTooLargef("%s is %d bytes, limit is %d", filepath.Base(abs), info.Size(), i.MaxBytes)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return out, fmt.Errorf("read: %w", err)
	}
	doc, err := entity.NewDocument(content, string(mt), i.MaxBytes)
	if err != nil {
		return out, err
	}
	sum := sha256.Sum256(content)

	i.logger.Debug("ingest.load.ok", "path", abs, "bytes", len(content), "media_type", mt)
	return Loaded{
		Path:     abs,
		HashHex:  hex.EncodeToString(sum[:]),
		Document: doc.WithFilename(filepath.Base(abs)),
	}, nil
}

// Discover walks root and returns claim files, skipping hidden entries if
// requested. Unreadable entries are counted and logged, not fatal.
func (i *FSIngestor) Discover(ctx context.Context, root string) ([]string, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}

	var paths []string
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			i.logger.Warn("ingest.walk.failed", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if i.SkipHidden && path != root && IsHidden(path) {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return paths, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, stats, nil
}
