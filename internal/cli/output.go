package cli

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/anucodes-hub/ClaimAssist-AI/internal/entity"
)

// record is one JSON line emitted by batch --jsonl and watch.
type record struct {
	Path    string             `json:"path"`
	JobID   string             `json:"job_id,omitempty"`
	SHA256  string             `json:"sha256,omitempty"`
	Result  *entity.ResultView `json:"result,omitempty"`
	Error   string             `json:"error,omitempty"`
	Elapsed string             `json:"elapsed,omitempty"`
}

func newRecord(path, hash string, res entity.ClaimAnalysisResult, err error) record {
	r := record{Path: path, SHA256: hash}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	view := res.View()
	r.Result = &view
	return r
}

// lineWriter serializes records from concurrent workers, one per line.
type lineWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{enc: json.NewEncoder(w)}
}

func (w *lineWriter) write(r record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enc.Encode(r)
}
