package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/mendel/internal/models"
)

// discoverPDFs walks inputDir for PDF files, applying the brand and
// doc-type filters and the size limit. Layout convention:
//
//	<inputDir>/<BRAND>/<PRODUCT_FOLDER>/<FILE>.pdf
//
// Results are sorted by path so batch ordering is deterministic.
func discoverPDFs(inputDir string, limit int, brandFilter, docTypeFilter string, maxFileSizeMB int, logger arbor.ILogger) ([]string, error) {
	maxBytes := int64(maxFileSizeMB) * 1024 * 1024

	var pdfs []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		// Hidden and editor temp files are not documents
		if name := d.Name(); strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if maxBytes > 0 && info.Size() > maxBytes {
			logger.Warn().
				Str("file", filepath.Base(path)).
				Int64("size_bytes", info.Size()).
				Int("max_mb", maxFileSizeMB).
				Msg("Skipping oversized PDF")
			return nil
		}

		if brandFilter != "" && !strings.EqualFold(brandFromPath(inputDir, path), brandFilter) {
			return nil
		}
		if docTypeFilter != "" && !strings.EqualFold(docTypeFromFileName(path), docTypeFilter) {
			return nil
		}

		pdfs = append(pdfs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory %s: %w", inputDir, err)
	}

	if limit > 0 && len(pdfs) > limit {
		pdfs = pdfs[:limit]
	}
	return pdfs, nil
}

// brandFromPath extracts the brand directory component, the first path
// element under the input root. Trademark glyphs are stripped.
func brandFromPath(inputDir, path string) string {
	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSuffix(parts[0], "®")
}

// docTypeFromFileName guesses the document type from filename markers.
// Only used for pre-classification filtering; the pipeline classifies
// from content.
func docTypeFromFileName(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "msds"), strings.Contains(name, "sds"),
		strings.Contains(name, "safety"):
		return models.DocTypeSDS
	case strings.Contains(name, "tds"), strings.Contains(name, "technical"):
		return models.DocTypeTDS
	case strings.Contains(name, "coa"), strings.Contains(name, "certificate"):
		return models.DocTypeCoA
	case strings.Contains(name, "rpi"), strings.Contains(name, "regulatory"):
		return models.DocTypeRPI
	case strings.Contains(name, "brochure"), strings.Contains(name, "flyer"):
		return models.DocTypeBrochure
	default:
		return models.DocTypeUnknown
	}
}

// printDiscovery lists the discovered files for dry runs.
func printDiscovery(pdfs []string) {
	fmt.Printf("Discovered %d PDF file(s):\n", len(pdfs))
	for i, path := range pdfs {
		fmt.Printf("  [%d] %s (%s)\n", i+1, path, docTypeFromFileName(path))
	}
}
