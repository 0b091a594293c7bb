package models

// AuditCorrection is a single correction proposed by the auditor agent.
type AuditCorrection struct {
	FieldName      string  `json:"field_name"`
	OriginalValue  *string `json:"original_value"`
	CorrectedValue *string `json:"corrected_value"`
	Reason         string  `json:"reason"`
	SourceQuote    *string `json:"source_quote"`
}

// AuditResult is the auditor's verdict on one extraction: proposed
// corrections, an overall quality score in [0,1], and issues that need
// human review.
type AuditResult struct {
	Corrections       []AuditCorrection `json:"corrections"`
	OverallConfidence float64           `json:"overall_confidence"`
	FlaggedIssues     []string          `json:"flagged_issues"`
	PassAudit         bool              `json:"pass_audit"`
}
