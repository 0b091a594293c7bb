package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/models"
)

// fixturePDF builds a small PDF with one page per text entry.
func fixturePDF(t *testing.T, pageTexts ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range pageTexts {
		doc.AddPage()
		doc.Cell(40, 10, text)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func testParser(maxFileSizeMB int, cache *fakeCache) *Parser {
	cfg := &common.ExtractionConfig{MaxFileSizeMB: maxFileSizeMB}
	if cache != nil {
		return NewParser(cfg, cache, arbor.NewLogger())
	}
	return NewParser(cfg, nil, arbor.NewLogger())
}

func TestParsePageStructure(t *testing.T) {
	content := fixturePDF(t, "ELASTOSIL E43 Technical Data Sheet", "Typical Properties")
	parser := testParser(20, nil)

	doc, err := parser.Parse(context.Background(), content)
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].PageNumber)
	assert.Equal(t, 2, doc.Pages[1].PageNumber)
	assert.Contains(t, doc.FullMarkdown, "## Page 1")
	assert.Contains(t, doc.FullMarkdown, "## Page 2")
}

func TestParseRejectsOversizedPDF(t *testing.T) {
	parser := testParser(1, nil)

	_, err := parser.Parse(context.Background(), make([]byte, 2*1024*1024))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum file size")
}

func TestParseRejectsEmptyContent(t *testing.T) {
	parser := testParser(20, nil)

	_, err := parser.Parse(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseRejectsInvalidPDF(t *testing.T) {
	parser := testParser(20, nil)

	_, err := parser.Parse(context.Background(), []byte("not a pdf at all"))
	require.Error(t, err)
}

func TestParseUsesCache(t *testing.T) {
	content := fixturePDF(t, "HDK N20 Safety Data Sheet")
	cache := &fakeCache{docs: map[string]*models.ParsedDocument{}}
	parser := testParser(20, cache)

	first, err := parser.Parse(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts)

	second, err := parser.Parse(context.Background(), content)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.FullMarkdown, second.FullMarkdown)
}

func TestContentHashDeterministic(t *testing.T) {
	content := fixturePDF(t, "ELASTOSIL E43")

	assert.Equal(t, contentHash(content), contentHash(content))
	assert.NotEqual(t, contentHash(content), contentHash(append([]byte{0}, content...)))
}

// fakeCache is an in-memory ParseCache recording hits and puts.
type fakeCache struct {
	docs map[string]*models.ParsedDocument
	hits int
	puts int
}

func (f *fakeCache) Get(ctx context.Context, contentHash string) (*models.ParsedDocument, bool) {
	doc, ok := f.docs[contentHash]
	if ok {
		f.hits++
	}
	return doc, ok
}

func (f *fakeCache) Put(ctx context.Context, contentHash string, doc *models.ParsedDocument) error {
	f.puts++
	f.docs[contentHash] = doc
	return nil
}

func (f *fakeCache) Close() error { return nil }
