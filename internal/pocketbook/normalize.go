package pocketbook

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

// Pocketbook encodes line breaks inside quotes as NBSP or PARAGRAPH SEPARATOR.
var lineBreakReplacer = strings.NewReplacer("\u00a0", "\n", "\u2029", "\n")

// The leading greedy .* makes the last page token win.
var pageRegex = regexp.MustCompile(`(?i)^.*page=(\d*)`)

// NormalizeText turns Pocketbook line-break markers into newlines and trims
// surrounding whitespace. It is idempotent.
func NormalizeText(s string) string {
	return strings.TrimSpace(lineBreakReplacer.Replace(s))
}

// ExtractPage returns the number from a page=<digits> token in an anchor
// string, or nil when there is none.
func ExtractPage(anchor string) *int {
	m := pageRegex.FindStringSubmatch(anchor)
	if m == nil || m[1] == "" {
		return nil
	}
	page, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &page
}

// ParseTimestamp converts a Unix epoch value (integral or fractional seconds)
// into a UTC time.
func ParseTimestamp(n json.Number) (time.Time, error) {
	if sec, err := n.Int64(); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	f, err := n.Float64()
	if err != nil {
		return time.Time{}, err
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

// DeriveID picks the most stable identifier available for an annotation:
// orig_id, then uuid, then "<book id>_<anchor>". It returns nil when none of
// them is set.
func DeriveID(origID, uuid, anchor *string, bookID string) *string {
	if v := deref(origID); v != "" {
		return &v
	}
	if v := deref(uuid); v != "" {
		return &v
	}
	if v := deref(anchor); v != "" {
		id := bookID + "_" + v
		return &id
	}
	return nil
}

// ParseNote decodes an annotation detail payload and normalizes it into a
// Highlight belonging to book.
func ParseNote(book *entities.Book, data []byte) (entities.Highlight, error) {
	var detail noteDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return entities.Highlight{}, &ParseError{Field: "note", Err: err}
	}
	return normalizeNote(book, detail)
}

func normalizeNote(book *entities.Book, d noteDetail) (entities.Highlight, error) {
	if d.Type == nil {
		return entities.Highlight{}, &ParseError{Field: "type.value", Err: errMissing}
	}
	kind, err := parseKind(d.Type.Value)
	if err != nil {
		return entities.Highlight{}, &ParseError{Field: "type.value", Err: err}
	}

	if d.Quotation == nil || d.Quotation.Text == nil {
		return entities.Highlight{}, &ParseError{Field: "quotation.text", Err: errMissing}
	}
	quote := NormalizeText(*d.Quotation.Text)
	if quote == "" {
		return entities.Highlight{}, &ParseError{Field: "quotation.text", Err: fmt.Errorf("quote is empty")}
	}

	var note *string
	if kind == KindNote {
		if d.Note == nil || d.Note.Text == nil {
			return entities.Highlight{}, &ParseError{Field: "note.text", Err: errMissing}
		}
		text := NormalizeText(*d.Note.Text)
		note = &text
	}

	var page *int
	if begin := deref(d.Quotation.Begin); begin != "" {
		page = ExtractPage(begin)
	}

	if d.Mark == nil || d.Mark.Created == nil {
		return entities.Highlight{}, &ParseError{Field: "mark.created", Err: errMissing}
	}
	createdAt, err := ParseTimestamp(*d.Mark.Created)
	if err != nil {
		return entities.Highlight{}, &ParseError{Field: "mark.created", Err: err}
	}

	return entities.Highlight{
		ID:        DeriveID(d.OrigID, d.UUID, d.Mark.Anchor, book.ID),
		CreatedAt: createdAt,
		Quote:     quote,
		Note:      note,
		Page:      page,
		Book:      book,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
