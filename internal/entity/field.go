package entity

import (
	"github.com/anucodes-hub/ClaimAssist-AI/constants"
)

// ExtractedField is a raw candidate located on the document. A field that
// was not found is absent from the map rather than present with an empty value.
type ExtractedField struct {
	Name       constants.FieldName
	RawValue   string
	Confidence float64
}

// NormalizedField is the typed form of a field. Present is false when the
// extractor did not find it; Value is NoValue when it could not be parsed.
type NormalizedField struct {
	Name       constants.FieldName
	Raw        string
	Value      TypedValue
	Confidence float64
	Present    bool
}

// Equal reports field equality with numeric comparison for amounts.
func (f NormalizedField) Equal(o NormalizedField) bool {
	return f.Name == o.Name &&
		f.Raw == o.Raw &&
		f.Confidence == o.Confidence &&
		f.Present == o.Present &&
		f.Value.Equal(o.Value)
}

// Unparseable reports a non-empty raw value that produced no typed value.
func (f NormalizedField) Unparseable() bool {
	return f.Raw != "" && f.Value.IsNone()
}

// Fields is the normalized field set keyed by vocabulary name.
type Fields map[constants.FieldName]NormalizedField

// Get returns the field or an absent placeholder.
func (fs Fields) Get(name constants.FieldName) NormalizedField {
	if f, ok := fs[name]; ok {
		return f
	}
	return NormalizedField{Name: name}
}
