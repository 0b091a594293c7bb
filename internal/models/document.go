package models

// PageContent is the parsed text of one PDF page plus any tables
// detected on it, rendered as markdown.
type PageContent struct {
	PageNumber     int    `json:"page_number"`
	Text           string `json:"text"`
	TablesMarkdown string `json:"tables_markdown,omitempty"`
}

// ParsedDocument is the markdown form of a PDF that the agents consume.
// FullMarkdown concatenates the per-page sections; Metadata carries
// parse-time hints such as the detected brand.
type ParsedDocument struct {
	FullMarkdown string            `json:"full_markdown"`
	Pages        []PageContent     `json:"pages"`
	DocType      string            `json:"doc_type"`
	PageCount    int               `json:"page_count"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}
