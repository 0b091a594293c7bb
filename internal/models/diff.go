package models

// Diff change types.
const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
	ChangeChanged = "changed"
)

// DiffEntry is one field-level difference between two record versions.
// For list fields OldValue/NewValue hold the removed/added items.
type DiffEntry struct {
	Field         string  `json:"field"`
	ChangeType    string  `json:"change_type"`
	OldValue      any     `json:"old_value"`
	NewValue      any     `json:"new_value"`
	OldUnit       *string `json:"old_unit"`
	NewUnit       *string `json:"new_unit"`
	OldConfidence *string `json:"old_confidence"`
	NewConfidence *string `json:"new_confidence"`
}

// SectionDiff groups the changes within one record section.
type SectionDiff struct {
	Section string      `json:"section"`
	Changes []DiffEntry `json:"changes"`
}

// VersionDiff is the full comparison of two versions of a product record.
type VersionDiff struct {
	ProductName  string        `json:"product_name"`
	Region       string        `json:"region"`
	VersionA     int           `json:"version_a"`
	VersionB     int           `json:"version_b"`
	Sections     []SectionDiff `json:"sections"`
	TotalChanges int           `json:"total_changes"`
}
