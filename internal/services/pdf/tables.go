package pdf

import (
	"regexp"
	"strings"
)

// columnGap matches the whitespace runs that separate columns in
// fixed-width table layouts (two or more spaces, or a tab).
var columnGap = regexp.MustCompile(`\t| {2,}`)

// extractTables scans page text for runs of column-aligned lines and
// renders each run as a markdown table. Data sheets lay out typical
// properties as whitespace-separated columns, which survive content
// extraction even when table borders do not.
func extractTables(text string) string {
	lines := strings.Split(text, "\n")

	var tables []string
	var run [][]string

	flush := func() {
		if len(run) >= 2 {
			tables = append(tables, renderTable(run))
		}
		run = nil
	}

	for _, line := range lines {
		cells := splitColumns(line)
		if len(cells) >= 2 {
			run = append(run, cells)
			continue
		}
		flush()
	}
	flush()

	return strings.Join(tables, "\n\n")
}

func splitColumns(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	parts := columnGap.Split(trimmed, -1)
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			cells = append(cells, part)
		}
	}
	return cells
}

func renderTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString("|")
		for col := 0; col < width; col++ {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			b.WriteString(" ")
			b.WriteString(strings.ReplaceAll(cell, "|", "\\|"))
			b.WriteString(" |")
		}
		b.WriteString("\n")

		// Header separator after the first row
		if i == 0 {
			b.WriteString("|")
			for col := 0; col < width; col++ {
				b.WriteString("---|")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
