// -----------------------------------------------------------------------
// Report Markdown - Per-run Golden Records report assembly
// -----------------------------------------------------------------------

package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/mendel/internal/models"
)

// RenderRunMarkdown assembles the full Golden Records report for one
// batch run: a summary header followed by one section per product with
// key attributes, completeness, source files and warnings.
func (s *Service) RenderRunMarkdown(result *models.PipelineResult) string {
	var b strings.Builder

	b.WriteString("# Golden Records Report\n\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	summary := result.Summary
	b.WriteString("| Metric | Value |\n")
	b.WriteString("| --- | --- |\n")
	b.WriteString(fmt.Sprintf("| PDFs processed | %d |\n", summary.TotalPDFs))
	b.WriteString(fmt.Sprintf("| Successful extractions | %d |\n", summary.SuccessfulExtractions))
	b.WriteString(fmt.Sprintf("| Failed extractions | %d |\n", summary.FailedExtractions))
	b.WriteString(fmt.Sprintf("| Product groups | %d |\n", summary.ProductGroups))
	b.WriteString(fmt.Sprintf("| Golden Records | %d |\n", summary.GoldenRecords))
	b.WriteString(fmt.Sprintf("| Elapsed | %.1fs |\n", summary.ElapsedSeconds))

	sourcesByFolder := make(map[string][]string, len(result.ProductGroups))
	for _, group := range result.ProductGroups {
		for _, partial := range group.PartialExtractions {
			sourcesByFolder[group.ProductFolder] = append(
				sourcesByFolder[group.ProductFolder], filepath.Base(partial.SourceFile))
		}
	}

	for i, product := range result.GoldenRecords {
		b.WriteString("\n---\n\n")
		s.renderProduct(&b, i+1, &product, sourcesByFolder[product.ProductFolder])
	}

	return b.String()
}

func (s *Service) renderProduct(b *strings.Builder, index int, product *models.MergedProduct, sources []string) {
	title := product.ProductName
	if product.Brand != "" {
		title = fmt.Sprintf("%s (%s)", product.ProductName, product.Brand)
	}
	b.WriteString(fmt.Sprintf("## %d. %s\n\n", index, title))

	if product.Error != "" {
		b.WriteString(fmt.Sprintf("**Merge failed:** %s\n", product.Error))
		return
	}

	decoded, err := models.DecodeExtractionResult(product.GoldenRecord)
	if err != nil {
		s.logger.Warn().Err(err).Str("product", product.ProductName).Msg("Report: failed to decode golden record")
		b.WriteString(fmt.Sprintf("**Render failed:** %v\n", err))
		return
	}

	missing := len(decoded.MissingAttributes)
	total := len(models.AllAttributeNames)
	completeness := float64(total-missing) / float64(total) * 100

	b.WriteString(fmt.Sprintf("- Sources: %d\n", product.SourceCount))
	b.WriteString(fmt.Sprintf("- Completeness: %.1f%% (%d of %d attributes missing)\n\n", completeness, missing, total))

	b.WriteString("| Attribute | Value | Confidence |\n")
	b.WriteString("| --- | --- | --- |\n")
	writeFactRow(b, "CAS Numbers", decoded.Chemical.CASNumbers)
	writeFactRow(b, "Grade", decoded.Identity.Grade)
	writeFactRow(b, "Purity", decoded.Chemical.Purity)
	writeFactRow(b, "Physical Form", decoded.Physical.PhysicalForm)
	writeFactRow(b, "Density", decoded.Physical.Density)
	writeFactRow(b, "Flash Point", decoded.Physical.FlashPoint)
	writeFactRow(b, "Shelf Life", decoded.Physical.ShelfLife)
	writeFactRow(b, "UN Number", decoded.Safety.UNNumber)
	writeListRow(b, "GHS Statements", decoded.Safety.GHSStatements)
	writeListRow(b, "Certifications", decoded.Safety.Certifications)
	writeListRow(b, "Global Inventories", decoded.Safety.GlobalInventories)
	writeStringRow(b, "Main Application", decoded.Application.MainApplication)
	writeStringRow(b, "WIAW Status", decoded.Compliance.WIAWStatus)

	if len(sources) > 0 {
		b.WriteString("\nSource files:\n\n")
		for _, source := range sources {
			b.WriteString(fmt.Sprintf("- %s\n", source))
		}
	}

	if len(decoded.ExtractionWarnings) > 0 {
		b.WriteString("\nWarnings:\n\n")
		for _, warning := range decoded.ExtractionWarnings {
			b.WriteString(fmt.Sprintf("- %s\n", warning))
		}
	}
}

func writeFactRow(b *strings.Builder, label string, fact *models.Fact) {
	if fact == nil || fact.Value == nil {
		return
	}
	value := fact.ValueString()
	if fact.Unit != nil && *fact.Unit != "" {
		value = value + " " + *fact.Unit
	}
	b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", label, escapeCell(value), fact.Confidence))
}

func writeListRow(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	b.WriteString(fmt.Sprintf("| %s | %s | |\n", label, escapeCell(strings.Join(values, ", "))))
}

func writeStringRow(b *strings.Builder, label string, value *string) {
	if value == nil || *value == "" {
		return
	}
	b.WriteString(fmt.Sprintf("| %s | %s | |\n", label, escapeCell(*value)))
}

func escapeCell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", "\\|")
}
