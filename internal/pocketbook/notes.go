package pocketbook

import (
	"encoding/json"
	"fmt"
)

// AnnotationKind is the declared type of a Pocketbook annotation.
type AnnotationKind string

const (
	KindHighlight AnnotationKind = "highlight"
	KindNote      AnnotationKind = "note"
	KindBookmark  AnnotationKind = "bookmark"
)

// parseKind accepts only the annotation kinds that carry a quotation.
func parseKind(value string) (AnnotationKind, error) {
	switch kind := AnnotationKind(value); kind {
	case KindHighlight, KindNote:
		return kind, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnexpectedAnnotationType, value)
	}
}

// bookListResponse is the body of GET books.
type bookListResponse struct {
	Items *[]json.RawMessage `json:"items"`
}

type bookPayload struct {
	ID       *string          `json:"id" validate:"required"`
	Path     *string          `json:"path" validate:"required"`
	Title    *string          `json:"title" validate:"required"`
	FastHash *string          `json:"fast_hash" validate:"required"`
	Metadata *metadataPayload `json:"metadata" validate:"required"`
}

type metadataPayload struct {
	Authors *string        `json:"authors"`
	Cover   []coverPayload `json:"cover" validate:"omitempty,dive"`
}

type coverPayload struct {
	Width  int    `json:"width" validate:"gt=0"`
	Height int    `json:"height" validate:"gt=0"`
	Path   string `json:"path" validate:"required,http_url"`
}

// noteSummary is one element of GET notes?fast_hash=...
type noteSummary struct {
	Type *string `json:"type"`
	UUID *string `json:"uuid"`
}

// noteDetail is the body of GET notes/{id}?fast_hash=...
// Most fields are optional: manual and device-synced annotations differ.
type noteDetail struct {
	OrigID    *string          `json:"orig_id"`
	UUID      *string          `json:"uuid"`
	Quotation *quotationDetail `json:"quotation"`
	Type      *typeDetail      `json:"type"`
	Note      *noteText        `json:"note"`
	Mark      *markDetail      `json:"mark"`
}

type quotationDetail struct {
	Text  *string `json:"text"`
	Begin *string `json:"begin"`
}

type typeDetail struct {
	Value string `json:"value"`
}

type noteText struct {
	Text *string `json:"text"`
}

type markDetail struct {
	Created *json.Number `json:"created"`
	Anchor  *string      `json:"anchor"`
}

type tokenResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`
}
