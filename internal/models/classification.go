package models

// ClassificationResult is the output of the classifier agent: document
// type and brand detection for one PDF.
type ClassificationResult struct {
	DocType     string  `json:"doc_type"`
	Brand       *string `json:"brand"`
	ProductName *string `json:"product_name"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}
