package exporters

// ExportResult contains the outcome of one push.
type ExportResult struct {
	BooksProcessed      int `json:"books_processed"`
	HighlightsProcessed int `json:"highlights_processed"`
}
