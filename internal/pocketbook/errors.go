package pocketbook

import (
	"errors"
	"fmt"
)

// ErrConfiguration indicates that login provider or login data is missing.
var ErrConfiguration = errors.New("pocketbook: missing login configuration")

// ErrAuthentication indicates that Pocketbook rejected the credential exchange.
var ErrAuthentication = errors.New("pocketbook: authentication failed")

// ErrNotAuthenticated is returned when a fetch is attempted before Authenticate.
var ErrNotAuthenticated = errors.New("pocketbook: client is not authenticated")

// ErrUnexpectedAnnotationType is returned for annotation types other than
// highlight, note and bookmark. Such data needs a look before it can be synced.
var ErrUnexpectedAnnotationType = errors.New("unexpected annotation type")

// FetchError represents a non-200 response from a listing or detail call.
type FetchError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pocketbook: %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("pocketbook: %s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// ParseError represents a payload that fails validation or lacks a required field.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pocketbook: invalid %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errMissing = errors.New("field is missing")
