package exporters

import (
	"time"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
	"github.com/mrlokans/pocketbook-sync/internal/readwise"
)

// Tags identifying this integration and its content on the Readwise side.
const (
	ReadwiseSourceType   = "pocketbook"
	ReadwiseCategory     = "books"
	ReadwiseLocationType = string(entities.LocationTypePage)
)

// ReadwiseHighlight maps a highlight and its book to the Readwise create schema.
// The derived highlight id is sent as highlight_url, which Readwise uses as an
// opaque dedup key.
func ReadwiseHighlight(h entities.Highlight) readwise.HighlightInput {
	input := readwise.HighlightInput{
		Text:          h.Quote,
		SourceType:    ReadwiseSourceType,
		Category:      ReadwiseCategory,
		LocationType:  ReadwiseLocationType,
		Location:      h.Page,
		Note:          h.Note,
		HighlightedAt: h.CreatedAt.Format(time.RFC3339Nano),
		HighlightURL:  h.ID,
	}

	if h.Book != nil {
		input.Title = h.Book.Title
		input.Author = h.Book.Metadata.Authors
		if cover, ok := LargestCover(h.Book.Metadata.Covers); ok {
			input.ImageURL = cover.Path
		}
	}

	return input
}

// ReadwiseHighlights serializes a batch, preserving order.
func ReadwiseHighlights(highlights []entities.Highlight) []readwise.HighlightInput {
	inputs := make([]readwise.HighlightInput, 0, len(highlights))
	for _, h := range highlights {
		inputs = append(inputs, ReadwiseHighlight(h))
	}
	return inputs
}

// LargestCover returns the cover with the largest area. On ties the earliest
// cover in the list wins.
func LargestCover(covers []entities.BookCover) (entities.BookCover, bool) {
	if len(covers) == 0 {
		return entities.BookCover{}, false
	}
	best := covers[0]
	for _, c := range covers[1:] {
		if c.Area() > best.Area() {
			best = c
		}
	}
	return best, true
}
