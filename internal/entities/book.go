package entities

// BookCover is one rendition of a book's cover image.
type BookCover struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Path   string `json:"path"`
}

// Area is used to pick the best-fit cover.
func (c BookCover) Area() int {
	return c.Width * c.Height
}

type BookMetadata struct {
	Authors *string     `json:"authors,omitempty"`
	Covers  []BookCover `json:"cover,omitempty"` // nil when the book has no covers
}

// Book is a book as listed by Pocketbook Cloud. It is created once per sync
// run and shared read-only by every Highlight taken from it.
type Book struct {
	ID       string       `json:"id"`
	Path     string       `json:"path"`
	Title    string       `json:"title"`
	FastHash string       `json:"fast_hash"` // scopes annotation queries
	Metadata BookMetadata `json:"metadata"`
}
