package models

import "fmt"

// Confidence levels carried by every extracted fact.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Fact is a single extracted value with source provenance and confidence.
// Value holds a string or a number depending on what the document stated;
// nil means the attribute was looked for but not found.
type Fact struct {
	Value           any     `json:"value"`
	Unit            *string `json:"unit,omitempty"`
	SourceSection   string  `json:"source_section"`
	RawString       string  `json:"raw_string"`
	Confidence      string  `json:"confidence"`
	IsSpecification bool    `json:"is_specification"`
	TestMethod      *string `json:"test_method,omitempty"`
}

// ValueString returns the fact value as a display string, or "" when nil.
func (f *Fact) ValueString() string {
	if f == nil || f.Value == nil {
		return ""
	}
	return fmt.Sprintf("%v", f.Value)
}

// IsFactMap reports whether a decoded JSON value has the shape of a Fact.
// Used by the generic merge and diff logic which operate on raw maps.
func IsFactMap(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, hasValue := m["value"]
	_, hasSection := m["source_section"]
	return hasValue && hasSection
}
