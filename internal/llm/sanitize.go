package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strconv"
	"strings"
)

// StripCodeFence removes a ```json fence some models wrap around output.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (transcription -> lines)
// - Accepts bare strings as lines
// - Coerces confidences given as strings or percentages into 0..1
// - Drops empty lines and unknown keys
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}
	renamed("transcription", "lines")
	renamed("text_lines", "lines")
	renamed("signature_detected", "signature")

	if items, ok := m["lines"].([]any); ok {
		kept := make([]any, 0, len(items))
		for i, item := range items {
			line, ok := sanitizeLine(item)
			if !ok {
				dropped = append(dropped, fmt.Sprintf("lines[%d]", i))
				continue
			}
			kept = append(kept, line)
		}
		m["lines"] = kept
	}

	switch sig := m["signature"].(type) {
	case bool:
		m["signature"] = map[string]any{"present": sig}
	case map[string]any:
		if _, ok := sig["present"].(bool); !ok {
			delete(m, "signature")
			dropped = append(dropped, "signature(present)")
			break
		}
		if c, ok := coerceUnit(sig["confidence"]); ok {
			sig["confidence"] = c
		} else {
			delete(sig, "confidence")
		}
		for k := range maps.Clone(sig) {
			if k != "present" && k != "confidence" {
				delete(sig, k)
			}
		}
	case nil:
		delete(m, "signature")
	default:
		delete(m, "signature")
		dropped = append(dropped, "signature(type)")
	}

	for k := range maps.Clone(m) {
		if k != "lines" && k != "signature" {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.transcribe.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeLine(item any) (map[string]any, bool) {
	switch t := item.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return map[string]any{"text": s}, true
		}
		return nil, false
	case map[string]any:
		text, _ := t["text"].(string)
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, false
		}
		out := map[string]any{"text": text}
		if c, ok := coerceUnit(t["confidence"]); ok {
			out["confidence"] = c
		}
		if p, ok := t["page"].(float64); ok && p >= 1 {
			out["page"] = int(p)
		}
		return out, true
	}
	return nil, false
}

// coerceUnit maps 0..1, 0..100 or numeric strings onto 0..1.
func coerceUnit(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(t), "%")
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if f > 1 && f <= 100 {
		f /= 100
	}
	if f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}
