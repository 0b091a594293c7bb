package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/models"
)

func testResult() *models.PipelineResult {
	unit := "g/cm3"
	return &models.PipelineResult{
		Partials: []models.PartialExtraction{
			{
				SourceFile: "input/WACKER/ELASTOSIL E43/tds.pdf",
				DocType:    models.DocTypeTDS,
				ExtractionResult: map[string]any{
					"identity": map[string]any{"product_name": "ELASTOSIL E43"},
					"chemical": map[string]any{
						"cas_numbers": map[string]any{
							"value":          "63148-62-9",
							"source_section": "Section 3",
						},
					},
				},
				MissingFields: []string{"purity", "un_number"},
			},
		},
		ProductGroups: []models.ProductGroup{
			{
				ProductName:   "ELASTOSIL E43",
				ProductFolder: "input/WACKER/ELASTOSIL E43",
				Brand:         "ELASTOSIL",
				PartialExtractions: []models.PartialExtraction{
					{SourceFile: "input/WACKER/ELASTOSIL E43/tds.pdf"},
				},
			},
		},
		GoldenRecords: []models.MergedProduct{
			{
				ProductName:   "ELASTOSIL E43",
				ProductFolder: "input/WACKER/ELASTOSIL E43",
				Brand:         "ELASTOSIL",
				SourceCount:   1,
				GoldenRecord: map[string]any{
					"identity": map[string]any{"product_name": "ELASTOSIL E43"},
					"chemical": map[string]any{
						"cas_numbers": map[string]any{
							"value":          "63148-62-9",
							"source_section": "Section 3",
							"confidence":     "high",
						},
					},
					"physical": map[string]any{
						"density": map[string]any{
							"value":          "1.10",
							"unit":           unit,
							"source_section": "Typical Properties",
							"confidence":     "high",
						},
					},
					"missing_attributes":  []any{"purity", "un_number"},
					"extraction_warnings": []any{"Audit: 1 corrections applied"},
				},
			},
		},
		Summary: models.PipelineSummary{
			TotalPDFs:             1,
			SuccessfulExtractions: 1,
			ProductGroups:         1,
			GoldenRecords:         1,
			ElapsedSeconds:        2.5,
		},
	}
}

func TestRenderRunMarkdown(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	markdown := svc.RenderRunMarkdown(testResult())

	assert.Contains(t, markdown, "# Golden Records Report")
	assert.Contains(t, markdown, "## 1. ELASTOSIL E43 (ELASTOSIL)")
	assert.Contains(t, markdown, "| CAS Numbers | 63148-62-9 | high |")
	assert.Contains(t, markdown, "| Density | 1.10 g/cm3 | high |")
	assert.Contains(t, markdown, "- tds.pdf")
	assert.Contains(t, markdown, "Audit: 1 corrections applied")

	// 2 of 33 attributes missing
	assert.Contains(t, markdown, "Completeness: 93.9%")
}

func TestRenderRunMarkdownMergeError(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	result := testResult()
	result.GoldenRecords[0].Error = "No partial extractions for BROKEN"
	result.GoldenRecords[0].GoldenRecord = nil

	markdown := svc.RenderRunMarkdown(result)
	assert.Contains(t, markdown, "**Merge failed:** No partial extractions for BROKEN")
}

func TestConvertMarkdownToPDF(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	markdown := svc.RenderRunMarkdown(testResult())

	pdfBytes, err := svc.ConvertMarkdownToPDF(markdown, "Golden Records Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF-"))
}

func TestWriteRunReport(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	dir := t.TempDir()

	written, err := svc.WriteRunReport(testResult(), dir, "20260825_120000")
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, filepath.Join(dir, "golden_records_20260825_120000.md"), written[0])
	assert.Equal(t, filepath.Join(dir, "golden_records_20260825_120000.pdf"), written[1])

	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestWriteBatchResultsCSV(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	result := testResult()
	path := filepath.Join(t.TempDir(), "batch_results.csv")

	records := []models.TokenRecord{
		{
			Provider:     "google",
			Model:        "gemini-2.0-flash",
			FileName:     "tds.pdf",
			DocType:      models.DocTypeTDS,
			InputTokens:  1200,
			OutputTokens: 400,
			DurationMs:   1800,
		},
	}

	require.NoError(t, svc.WriteBatchResultsCSV(path, result.Partials, records))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, batchCSVHeader, rows[0])

	row := rows[1]
	assert.Equal(t, "tds.pdf", row[0])
	assert.Equal(t, "WACKER", row[1])
	assert.Equal(t, "ELASTOSIL E43", row[2])
	assert.Equal(t, models.DocTypeTDS, row[3])
	assert.Equal(t, "true", row[4])
	assert.Equal(t, "ELASTOSIL E43", row[5])
	assert.Equal(t, "63148-62-9", row[6])
	assert.Equal(t, "2", row[7])
	assert.Equal(t, "google", row[8])
	assert.Equal(t, "1200", row[10])
}

func TestWriteAgentSummaryCSV(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	result := testResult()
	path := filepath.Join(t.TempDir(), "agent_summary.csv")

	require.NoError(t, svc.WriteAgentSummaryCSV(path, result.GoldenRecords))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ELASTOSIL E43", "ELASTOSIL", "1", "2", "", "input/WACKER/ELASTOSIL E43"}, rows[1])
}
