package ingest

import (
	"context"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// Loaded is a claim document read from disk.
type Loaded struct {
	Path     string
	HashHex  string
	Document entity.Document
}

// DirStats summarizes a directory discovery.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Ingestor is the behavior the CLI and workers depend on.
type Ingestor interface {
	// Load reads a single claim file.
	Load(path string) (Loaded, error)
	// Discover lists every claim file under root in lexical order.
	Discover(ctx context.Context, root string) ([]string, DirStats, error)
}
