package models

import "time"

// Extraction run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunDetail pairs a run row with the Golden Records it produced.
type RunDetail struct {
	Run           ExtractionRun  `json:"run"`
	GoldenRecords []GoldenRecord `json:"golden_records"`
}

// ExtractionRun tracks one batch invocation of the pipeline.
type ExtractionRun struct {
	ID                 int64          `json:"id"`
	StartedAt          time.Time      `json:"started_at"`
	FinishedAt         *time.Time     `json:"finished_at"`
	PDFCount           int            `json:"pdf_count"`
	GoldenRecordsCount int            `json:"golden_records_count"`
	TotalCost          float64        `json:"total_cost"`
	Status             string         `json:"status"`
	ErrorMessage       *string        `json:"error_message"`
	Metadata           map[string]any `json:"metadata"`
}
