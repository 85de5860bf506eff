package readwise

import (
	"errors"
	"fmt"
)

// ErrInvalidToken indicates the READWISE_TOKEN was rejected (HTTP 401).
var ErrInvalidToken = errors.New("invalid or expired Readwise token")

// ErrRateLimited indicates Readwise answered HTTP 429. Nothing is retried; the
// next run pushes the full batch again.
var ErrRateLimited = errors.New("readwise API rate limit exceeded")

// ServerError is a 5xx answer from Readwise.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Readwise server error: HTTP %d", e.StatusCode)
}

// StatusError is any other non-2xx answer. Body usually names the rejected
// field, e.g. a highlight without text.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// statusError maps a non-2xx status to the matching error value.
func statusError(statusCode int, body []byte) error {
	switch {
	case statusCode == 401:
		return ErrInvalidToken
	case statusCode == 429:
		return ErrRateLimited
	case statusCode >= 500:
		return &ServerError{StatusCode: statusCode}
	default:
		return &StatusError{StatusCode: statusCode, Body: string(body)}
	}
}
