package agents

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/models"
)

// fakeParser serves canned documents keyed by path.
type fakeParser struct {
	docs map[string]*models.ParsedDocument
}

func (f *fakeParser) Parse(ctx context.Context, pdfBytes []byte) (*models.ParsedDocument, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeParser) ParseFile(ctx context.Context, path string) (*models.ParsedDocument, error) {
	doc, ok := f.docs[path]
	if !ok {
		return nil, fmt.Errorf("cannot open %s", path)
	}
	return doc, nil
}

type fakeClassifier struct {
	docType    string
	confidence float64
}

func (f *fakeClassifier) Classify(ctx context.Context, markdown, fileName string) *models.ClassificationResult {
	return &models.ClassificationResult{DocType: f.docType, Confidence: f.confidence}
}

// fakeExtractor returns a partial whose product name is derived from the
// markdown so grouping can be asserted.
type fakeExtractor struct{}

func (f *fakeExtractor) Extract(ctx context.Context, markdown, docType, fileName string) *models.PartialExtraction {
	return &models.PartialExtraction{
		SourceFile: fileName,
		DocType:    docType,
		ExtractionResult: map[string]any{
			"identity": map[string]any{"product_name": markdown},
		},
		ExtractedFields: []string{"product_name"},
		MissingFields:   []string{"purity"},
	}
}

func testOrchestrator(parser *fakeParser, docType string) *Orchestrator {
	logger := arbor.NewLogger()
	classifier := &fakeClassifier{docType: docType, confidence: 0.9}
	return NewOrchestrator(parser, classifier, &fakeExtractor{}, nil, NewMerger(logger), 2, logger)
}

func elastosilDocs() map[string]*models.ParsedDocument {
	return map[string]*models.ParsedDocument{
		"/pdfs/WACKER/E43/tds.pdf":     {FullMarkdown: "ELASTOSIL E43", PageCount: 3},
		"/pdfs/WACKER/E43/sds.pdf":     {FullMarkdown: "ELASTOSIL E43", PageCount: 12},
		"/pdfs/WACKER/HDK-N20/tds.pdf": {FullMarkdown: "HDK N20", PageCount: 2},
	}
}

func TestProcessSingleParseFailure(t *testing.T) {
	o := testOrchestrator(&fakeParser{docs: map[string]*models.ParsedDocument{}}, models.DocTypeTDS)

	partial := o.ProcessSingle(context.Background(), "/pdfs/WACKER/E43/missing.pdf")

	assert.Equal(t, models.DocTypeUnknown, partial.DocType)
	assert.Empty(t, partial.ExtractionResult)
	require.Len(t, partial.Warnings, 1)
	assert.Contains(t, partial.Warnings[0], "PDF parse error")
}

func TestProcessSingleUndecidedClassifierUsesParserDocType(t *testing.T) {
	logger := arbor.NewLogger()
	parser := &fakeParser{docs: map[string]*models.ParsedDocument{
		"/pdfs/WACKER/E43/sds.pdf": {FullMarkdown: "ELASTOSIL E43", DocType: models.DocTypeSDS, PageCount: 12},
	}}
	classifier := &fakeClassifier{docType: models.DocTypeUnknown, confidence: 0}
	o := NewOrchestrator(parser, classifier, &fakeExtractor{}, nil, NewMerger(logger), 2, logger)

	partial := o.ProcessSingle(context.Background(), "/pdfs/WACKER/E43/sds.pdf")

	assert.Equal(t, models.DocTypeSDS, partial.DocType)
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	o := testOrchestrator(&fakeParser{docs: elastosilDocs()}, models.DocTypeTDS)

	paths := []string{
		"/pdfs/WACKER/E43/tds.pdf",
		"/pdfs/WACKER/E43/missing.pdf",
		"/pdfs/WACKER/HDK-N20/tds.pdf",
	}
	partials := o.ProcessBatch(context.Background(), paths)

	require.Len(t, partials, 3)
	assert.Equal(t, "/pdfs/WACKER/E43/tds.pdf", partials[0].SourceFile)
	assert.Equal(t, "/pdfs/WACKER/E43/missing.pdf", partials[1].SourceFile)
	assert.Equal(t, "/pdfs/WACKER/HDK-N20/tds.pdf", partials[2].SourceFile)
	assert.NotEmpty(t, partials[0].ExtractionResult)
	assert.Empty(t, partials[1].ExtractionResult)
}

func TestGroupByProductUsesFolder(t *testing.T) {
	o := testOrchestrator(&fakeParser{docs: elastosilDocs()}, models.DocTypeTDS)

	partials := o.ProcessBatch(context.Background(), []string{
		"/pdfs/WACKER/E43/tds.pdf",
		"/pdfs/WACKER/E43/sds.pdf",
		"/pdfs/WACKER/HDK-N20/tds.pdf",
	})
	groups := o.GroupByProduct(partials)

	require.Len(t, groups, 2)
	assert.Equal(t, "/pdfs/WACKER/E43", groups[0].ProductFolder)
	assert.Len(t, groups[0].PartialExtractions, 2)
	assert.Equal(t, "ELASTOSIL E43", groups[0].ProductName)
	assert.Equal(t, "/pdfs/WACKER/HDK-N20", groups[1].ProductFolder)
	assert.Equal(t, "HDK N20", groups[1].ProductName)
}

func TestGroupByProductFallsBackToFolderName(t *testing.T) {
	o := testOrchestrator(&fakeParser{docs: map[string]*models.ParsedDocument{}}, models.DocTypeTDS)

	partials := []models.PartialExtraction{
		{SourceFile: "/pdfs/WACKER/E43/tds.pdf", ExtractionResult: map[string]any{}},
	}
	groups := o.GroupByProduct(partials)

	require.Len(t, groups, 1)
	assert.Equal(t, "E43", groups[0].ProductName)
}

func TestRunFullPipelineSummary(t *testing.T) {
	o := testOrchestrator(&fakeParser{docs: elastosilDocs()}, models.DocTypeTDS)

	result := o.RunFullPipeline(context.Background(), []string{
		"/pdfs/WACKER/E43/tds.pdf",
		"/pdfs/WACKER/E43/sds.pdf",
		"/pdfs/WACKER/HDK-N20/tds.pdf",
		"/pdfs/WACKER/HDK-N20/missing.pdf",
	})

	assert.Equal(t, 4, result.Summary.TotalPDFs)
	assert.Equal(t, 3, result.Summary.SuccessfulExtractions)
	assert.Equal(t, 1, result.Summary.FailedExtractions)
	assert.Equal(t, 2, result.Summary.ProductGroups)
	assert.Equal(t, 2, result.Summary.GoldenRecords)
	assert.Len(t, result.GoldenRecords, 2)
	for _, merged := range result.GoldenRecords {
		assert.Empty(t, merged.Error)
		assert.NotNil(t, merged.GoldenRecord)
	}
}
