package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON schema for checking model replies. It is safe
// for concurrent use.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles a schema built as a generic map.
func CompileSchema(schemaMap map[string]any) (*Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("transcription.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("transcription.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompileTranscriptionSchema compiles BuildTranscriptionSchema and
// panics if it is malformed.
func MustCompileTranscriptionSchema() *Schema {
	s, err := CompileSchema(BuildTranscriptionSchema())
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a raw JSON reply against the schema.
func (s *Schema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal reply: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("reply does not match schema: %w", err)
	}
	return nil
}
