package models

import "time"

// GoldenRecord is one persisted, versioned product record. The merged
// 33-attribute payload lives in Data as JSONB; the surrounding columns
// exist for querying and version history.
//
// Versioning is per (product_name, region): inserting a new record for
// an existing pair assigns the next version number and clears is_latest
// on the previous ones.
type GoldenRecord struct {
	ID           int64          `json:"id"`
	RunID        int64          `json:"run_id"`
	ProductName  string         `json:"product_name"`
	Brand        *string        `json:"brand"`
	Region       string         `json:"region"`
	DocLanguage  *string        `json:"doc_language"`
	RevisionDate *string        `json:"revision_date"`
	DocumentType *string        `json:"document_type"`
	Version      int            `json:"version"`
	IsLatest     bool           `json:"is_latest"`
	Data         map[string]any `json:"golden_record"`
	SourceFiles  []string       `json:"source_files"`
	SourceCount  int            `json:"source_count"`
	MissingCount int            `json:"missing_count"`
	Completeness float64        `json:"completeness"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
