package entities

import "time"

type LocationType string

const (
	LocationTypePage LocationType = "page"
)

// Highlight is a normalized Pocketbook annotation.
type Highlight struct {
	ID        *string // orig_id, uuid or "<book id>_<anchor>"; nil when none is available
	CreatedAt time.Time
	Quote     string
	Note      *string
	Page      *int

	// Book is not owned by the highlight; it points into the book list of the
	// same sync run.
	Book *Book
}
