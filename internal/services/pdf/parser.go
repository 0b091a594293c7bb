// -----------------------------------------------------------------------
// PDF Parser Service - Convert chemical PDF documents to markdown
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/common"
	"github.com/ternarybob/mendel/internal/interfaces"
	"github.com/ternarybob/mendel/internal/models"
)

// Parser implements the DocumentParser interface using pdfcpu. Parsed
// output is markdown with one "## Page N" section per page, optionally
// followed by detected tables. Parses are cached by content hash when a
// cache is provided.
type Parser struct {
	cache       interfaces.ParseCache
	logger      arbor.ILogger
	tempDir     string
	maxFileSize int64
}

// Compile-time interface assertion
var _ interfaces.DocumentParser = (*Parser)(nil)

// NewParser creates a new PDF parser service. The cache is optional;
// pass nil to parse every document from scratch.
func NewParser(extractionConfig *common.ExtractionConfig, cache interfaces.ParseCache, logger arbor.ILogger) *Parser {
	// Create a temp directory for PDF processing
	tempDir := filepath.Join(os.TempDir(), "mendel-pdf")
	os.MkdirAll(tempDir, 0755)

	maxMB := extractionConfig.MaxFileSizeMB
	if maxMB <= 0 {
		maxMB = 20
	}

	return &Parser{
		cache:       cache,
		logger:      logger,
		tempDir:     tempDir,
		maxFileSize: int64(maxMB) * 1024 * 1024,
	}
}

// ParseFile reads a PDF from disk and parses it.
func (p *Parser) ParseFile(ctx context.Context, filePath string) (*models.ParsedDocument, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF file: %w", err)
	}
	return p.Parse(ctx, content)
}

// Parse converts raw PDF bytes into a markdown document with page
// structure, document type detection, and brand metadata.
func (p *Parser) Parse(ctx context.Context, content []byte) (*models.ParsedDocument, error) {
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("PDF exceeds maximum file size of %d MB", p.maxFileSize/(1024*1024))
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("PDF content is empty")
	}

	hash := contentHash(content)
	if p.cache != nil {
		if doc, ok := p.cache.Get(ctx, hash); ok {
			return doc, nil
		}
	}

	doc, err := p.extract(content)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, hash, doc); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to cache parsed document")
		}
	}

	return doc, nil
}

// extract runs pdfcpu over a temp copy of the PDF and assembles the
// markdown document.
func (p *Parser) extract(content []byte) (*models.ParsedDocument, error) {
	// Write to temp file for pdfcpu processing
	id := uuid.NewString()
	tempFile := filepath.Join(p.tempDir, fmt.Sprintf("parse_%s.pdf", id))
	if err := os.WriteFile(tempFile, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write temp PDF file: %w", err)
	}
	defer os.Remove(tempFile)

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if pdfCtx.Encrypt != nil {
		return nil, fmt.Errorf("PDF is encrypted")
	}

	pageCount := pdfCtx.PageCount

	// pdfcpu doesn't have direct text extraction, so we extract content
	// streams per page into an output directory and read them back.
	outDir := filepath.Join(p.tempDir, fmt.Sprintf("pages_%s", id))
	os.MkdirAll(outDir, 0755)
	defer os.RemoveAll(outDir)

	pageTexts := make(map[int]string)
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to extract PDF content, pages will be empty")
	} else {
		files, _ := os.ReadDir(outDir)
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(outDir, file.Name()))
			if err != nil {
				continue
			}
			var pageNum int
			if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err == nil {
				pageTexts[pageNum] = string(data)
			} else if _, err := fmt.Sscanf(file.Name(), "page_%d", &pageNum); err == nil {
				pageTexts[pageNum] = string(data)
			}
		}
	}

	pages := make([]models.PageContent, 0, pageCount)
	pageSections := make([]string, 0, pageCount)
	textParts := make([]string, 0, pageCount)

	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		tables := extractTables(text)

		section := fmt.Sprintf("## Page %d\n\n%s", pageNum, text)
		if tables != "" {
			section += "\n\n### Tables\n\n" + tables
		}

		pages = append(pages, models.PageContent{
			PageNumber:     pageNum,
			Text:           text,
			TablesMarkdown: tables,
		})
		pageSections = append(pageSections, section)
		textParts = append(textParts, text)
	}

	fullText := strings.Join(textParts, "\n")

	metadata := map[string]string{}
	if brand := DetectBrand(fullText); brand != "" {
		metadata["brand"] = brand
	}

	doc := &models.ParsedDocument{
		FullMarkdown: strings.Join(pageSections, "\n\n---\n\n"),
		Pages:        pages,
		DocType:      DetectDocumentType(fullText),
		PageCount:    pageCount,
		Metadata:     metadata,
	}

	p.logger.Debug().
		Int("pages", pageCount).
		Str("doc_type", doc.DocType).
		Int("markdown_chars", len(doc.FullMarkdown)).
		Msg("Parsed PDF document")

	return doc, nil
}

// contentHash returns the hex SHA-256 of the PDF bytes, used as the
// parse cache key.
func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
