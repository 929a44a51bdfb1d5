package llm

// BuildTranscriptionSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We send it to the model as an output constraint and also use it locally to validate.
func BuildTranscriptionSchema() map[string]any {
	line := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"text":       map[string]any{"type": "string", "minLength": 1},
			"confidence": unitProp(),
			"page":       map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"text"},
	}
	signature := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"present":    map[string]any{"type": "boolean"},
			"confidence": unitProp(),
		},
		"required": []string{"present"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"lines":     map[string]any{"type": "array", "items": line},
			"signature": signature,
		},
		"required": []string{"lines"},
	}
}

func unitProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0}
}
