package llm

import (
	"encoding/json"
	"strings"
)

// BuildSystemPrompt instructs the model to act as an OCR engine for claim forms.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an OCR engine for insurance claim documents. Return ONLY JSON that matches the provided JSON Schema.",
		"Transcribe every visible line of text top to bottom as it appears. Do not summarize or translate.",
		"Keep a printed label and the value written next to it on the same line, separated by a colon (e.g. 'Policy Number: PN-1234').",
		"If a value is written below its label, emit the label line and then the value line.",
		"Give each line a confidence between 0 and 1 reflecting legibility.",
		"Set signature.present to true only when a handwritten signature or initials are visible; do not infer it from a printed 'Signature' label.",
		"Never output null. If something is not present, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt carries the schema alongside the image request.
func BuildUserPrompt(filenameHint string) string {
	var b strings.Builder
	b.WriteString("Transcribe the attached claim document.")
	if s := strings.TrimSpace(filenameHint); s != "" {
		b.WriteString(" File name: " + s + ".")
	}
	b.WriteString("\n\nJSON Schema:\n")
	b.WriteString(mustJSON(BuildTranscriptionSchema()))
	return b.String()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
