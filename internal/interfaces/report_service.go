package interfaces

import "github.com/ternarybob/mendel/internal/models"

// ReportService renders batch results for human consumption.
type ReportService interface {
	// RenderRunMarkdown assembles the per-run Golden Records report.
	RenderRunMarkdown(result *models.PipelineResult) string

	// ConvertMarkdownToPDF converts markdown content to a PDF byte slice.
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)

	// WriteRunReport writes golden_records_<ts>.md and .pdf into
	// outputDir and returns the written paths. A PDF rendering failure
	// degrades to markdown-only.
	WriteRunReport(result *models.PipelineResult, outputDir, timestamp string) ([]string, error)
}
