package llm

// TranscribedLine is one visual line the vision model read off the page.
type TranscribedLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"` // 0..1
	Page       int     `json:"page,omitempty"`
}

// SignatureMark reports a handwritten signature seen anywhere on the page.
type SignatureMark struct {
	Present    bool    `json:"present"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcription is the JSON shape we ask the vision model to return.
type Transcription struct {
	Lines     []TranscribedLine `json:"lines"`
	Signature *SignatureMark    `json:"signature,omitempty"`
}
