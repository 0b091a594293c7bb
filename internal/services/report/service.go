// -----------------------------------------------------------------------
// Report Service - Golden Records report rendering (markdown + PDF)
// -----------------------------------------------------------------------

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Service renders per-run Golden Records reports as markdown and PDF.
type Service struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ReportService = (*Service)(nil)

// NewService creates a report service.
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		logger: logger,
	}
}

// ConvertMarkdownToPDF converts markdown content to a PDF byte slice.
// The title goes into the PDF document properties; the report's own H1
// heading is expected to be part of the markdown.
func (s *Service) ConvertMarkdownToPDF(markdown, title string) ([]byte, error) {
	s.logger.Debug().
		Int("markdown_len", len(markdown)).
		Str("title", title).
		Msg("Converting markdown to PDF")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 9)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table, extension.Strikethrough),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)

	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	renderer := &pdfRenderer{
		pdf:    pdf,
		source: source,
		font:   "Arial",
		size:   9,
	}

	if err := renderer.render(doc); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("PDF generated")
	return buf.Bytes(), nil
}

// WriteRunReport writes golden_records_<ts>.md and .pdf into outputDir
// and returns the written paths. When PDF rendering fails the markdown
// file is still written and the failure is logged as a warning.
func (s *Service) WriteRunReport(result *models.PipelineResult, outputDir, timestamp string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	markdown := s.RenderRunMarkdown(result)

	mdPath := filepath.Join(outputDir, fmt.Sprintf("golden_records_%s.md", timestamp))
	if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
		return nil, fmt.Errorf("failed to write markdown report: %w", err)
	}
	written := []string{mdPath}

	pdfBytes, err := s.ConvertMarkdownToPDF(markdown, "Golden Records Report")
	if err != nil {
		s.logger.Warn().Err(err).Msg("Report: PDF rendering failed, markdown only")
		return written, nil
	}

	pdfPath := filepath.Join(outputDir, fmt.Sprintf("golden_records_%s.pdf", timestamp))
	if err := os.WriteFile(pdfPath, pdfBytes, 0644); err != nil {
		s.logger.Warn().Err(err).Msg("Report: failed to write PDF, markdown only")
		return written, nil
	}
	written = append(written, pdfPath)

	s.logger.Info().
		Str("markdown", mdPath).
		Str("pdf", pdfPath).
		Msg("Report written")

	return written, nil
}
