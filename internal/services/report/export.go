// -----------------------------------------------------------------------
// Report Exports - CSV and JSON batch result files
// -----------------------------------------------------------------------

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ternarybob/mendel/internal/models"
)

var batchCSVHeader = []string{
	"file_name", "brand", "product_folder", "doc_type", "success",
	"product_name", "cas_numbers", "missing_count", "provider", "model",
	"input_tokens", "output_tokens", "cache_read_tokens", "duration_ms",
	"error", "warnings",
}

var costsCSVHeader = []string{
	"timestamp", "provider", "model", "file_name", "doc_type",
	"input_tokens", "output_tokens", "cache_creation_tokens",
	"cache_read_tokens", "total_tokens", "cost_usd", "duration_ms",
	"cascade_triggered",
}

var agentSummaryCSVHeader = []string{
	"product_name", "brand", "source_count", "missing_count", "error",
	"product_folder",
}

// WriteBatchResultsCSV writes one summary row per processed PDF. Token
// columns come from the last cost record for that file, which is the
// winning extraction when the cascade ran.
func (s *Service) WriteBatchResultsCSV(path string, partials []models.PartialExtraction, records []models.TokenRecord) error {
	byFile := make(map[string]models.TokenRecord, len(records))
	for _, rec := range records {
		byFile[rec.FileName] = rec
	}

	rows := make([][]string, 0, len(partials)+1)
	rows = append(rows, batchCSVHeader)
	for i := range partials {
		rows = append(rows, batchCSVRow(&partials[i], byFile))
	}

	return s.writeCSV(path, rows)
}

func batchCSVRow(partial *models.PartialExtraction, byFile map[string]models.TokenRecord) []string {
	fileName := filepath.Base(partial.SourceFile)
	productFolder := filepath.Base(filepath.Dir(partial.SourceFile))
	brand := strings.TrimSuffix(filepath.Base(filepath.Dir(filepath.Dir(partial.SourceFile))), "®")

	success := len(partial.ExtractionResult) > 0
	productName := ""
	casNumbers := ""
	if identity, ok := partial.ExtractionResult["identity"].(map[string]any); ok {
		if name, ok := identity["product_name"].(string); ok {
			productName = name
		}
	}
	if docInfo, ok := partial.ExtractionResult["document_info"].(map[string]any); ok {
		if b, ok := docInfo["brand"].(string); ok && b != "" {
			brand = b
		}
	}
	if chemical, ok := partial.ExtractionResult["chemical"].(map[string]any); ok {
		if fact, ok := chemical["cas_numbers"].(map[string]any); ok {
			if value, ok := fact["value"].(string); ok {
				casNumbers = value
			}
		}
	}

	errMsg := ""
	if !success && len(partial.Warnings) > 0 {
		errMsg = partial.Warnings[0]
	}

	rec := byFile[fileName]
	return []string{
		fileName,
		brand,
		productFolder,
		partial.DocType,
		strconv.FormatBool(success),
		productName,
		casNumbers,
		strconv.Itoa(len(partial.MissingFields)),
		rec.Provider,
		rec.Model,
		strconv.Itoa(rec.InputTokens),
		strconv.Itoa(rec.OutputTokens),
		strconv.Itoa(rec.CacheReadTokens),
		strconv.FormatInt(rec.DurationMs, 10),
		errMsg,
		strings.Join(partial.Warnings, "; "),
	}
}

// WriteBatchResultsJSON writes the full pipeline result tree plus the
// cost summary.
func (s *Service) WriteBatchResultsJSON(path string, result *models.PipelineResult, costSummary models.CostSummary) error {
	payload := map[string]any{
		"pipeline_summary": result.Summary,
		"cost_summary":     costSummary,
		"partials":         result.Partials,
		"golden_records":   result.GoldenRecords,
	}
	return s.writeJSON(path, payload)
}

// WriteCostsCSV writes one row per LLM call, cost at 6 dp.
func (s *Service) WriteCostsCSV(path string, records []models.TokenRecord) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, costsCSVHeader)
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Provider,
			rec.Model,
			rec.FileName,
			rec.DocType,
			strconv.Itoa(rec.InputTokens),
			strconv.Itoa(rec.OutputTokens),
			strconv.Itoa(rec.CacheCreationTokens),
			strconv.Itoa(rec.CacheReadTokens),
			strconv.Itoa(rec.TotalTokens),
			fmt.Sprintf("%.6f", rec.CostUSD),
			strconv.FormatInt(rec.DurationMs, 10),
			strconv.FormatBool(rec.CascadeTriggered),
		})
	}
	return s.writeCSV(path, rows)
}

// WriteAgentSummaryCSV writes one row per merged product.
func (s *Service) WriteAgentSummaryCSV(path string, products []models.MergedProduct) error {
	rows := make([][]string, 0, len(products)+1)
	rows = append(rows, agentSummaryCSVHeader)
	for _, product := range products {
		missingCount := ""
		if product.GoldenRecord != nil {
			if missing, ok := product.GoldenRecord["missing_attributes"].([]any); ok {
				missingCount = strconv.Itoa(len(missing))
			}
		}
		rows = append(rows, []string{
			product.ProductName,
			product.Brand,
			strconv.Itoa(product.SourceCount),
			missingCount,
			product.Error,
			product.ProductFolder,
		})
	}
	return s.writeCSV(path, rows)
}

// WritePartialsJSON writes the per-PDF partial extractions.
func (s *Service) WritePartialsJSON(path string, partials []models.PartialExtraction) error {
	return s.writeJSON(path, partials)
}

// WriteGoldenRecordsJSON writes the merged products.
func (s *Service) WriteGoldenRecordsJSON(path string, products []models.MergedProduct) error {
	return s.writeJSON(path, products)
}

// WriteCostsJSON writes the pipeline and cost summaries together.
func (s *Service) WriteCostsJSON(path string, summary models.PipelineSummary, costSummary models.CostSummary) error {
	return s.writeJSON(path, map[string]any{
		"pipeline_summary": summary,
		"cost_summary":     costSummary,
	})
}

func (s *Service) writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info().Str("path", path).Int("rows", len(rows)-1).Msg("Export written")
	return nil
}

func (s *Service) writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	s.logger.Info().Str("path", path).Msg("Export written")
	return nil
}
