package pocketbook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

const (
	DefaultBaseURL = "https://cloud.pocketbook.digital/api/v1.0/"
	UserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/109.0"

	// Pocketbook is queried for a single page; libraries above this size are truncated.
	booksLimit = 10000

	maxErrorBody = 512
)

// Config holds the connection settings for the Pocketbook Cloud API.
type Config struct {
	BaseURL string

	// Timeout applies to each request. Zero means no timeout.
	Timeout time.Duration

	// NoteConcurrency caps concurrent note detail fetches per book. Zero means unbounded.
	NoteConcurrency int

	// Transport replaces the default HTTP transport, mostly for tests.
	Transport http.RoundTripper
}

// Client is an authenticated session with Pocketbook Cloud. After
// Authenticate returns, the client is safe for concurrent use.
type Client struct {
	http            *resty.Client
	validate        *validator.Validate
	noteConcurrency int
	authenticated   atomic.Bool
}

// NewClient creates a Pocketbook client. Call Authenticate before fetching.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", UserAgent).
		SetLogger(stdLogger{})
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}
	if cfg.Transport != nil {
		httpClient.SetTransport(cfg.Transport)
	}

	return &Client{
		http:            httpClient,
		validate:        newValidator(),
		noteConcurrency: cfg.NoteConcurrency,
	}
}

// IsAuthenticated reports whether Authenticate has completed successfully.
func (c *Client) IsAuthenticated() bool {
	return c.authenticated.Load()
}

// Authenticate exchanges login data for a bearer token and attaches it to
// every subsequent request. loginData is a URL-encoded "key=value&key=value"
// string as shown by the Pocketbook web login.
func (c *Client) Authenticate(ctx context.Context, provider, loginData string) error {
	if provider == "" {
		return fmt.Errorf("%w: POCKETBOOK_LOGIN_PROVIDER is not set", ErrConfiguration)
	}
	if loginData == "" {
		return fmt.Errorf("%w: POCKETBOOK_LOGIN_DATA is not set", ErrConfiguration)
	}
	form, err := ParseLoginData(loginData)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("provider", provider).
		SetFormDataFromValues(form).
		Post("auth/login/{provider}")
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: provider %q returned HTTP %d", ErrAuthentication, provider, resp.StatusCode())
	}

	var token tokenResponse
	if err := json.Unmarshal(resp.Body(), &token); err != nil {
		return &ParseError{Field: "login response", Err: err}
	}
	if token.TokenType == "" || token.AccessToken == "" {
		return &ParseError{Field: "login response", Err: errMissing}
	}

	c.http.SetAuthScheme(token.TokenType).SetAuthToken(token.AccessToken)
	c.authenticated.Store(true)
	return nil
}

// ListBooks returns every book of the account. A single malformed book fails
// the whole call.
func (c *Client) ListBooks(ctx context.Context) ([]entities.Book, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(booksLimit)).
		Get("books")
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, newFetchError("list books", resp)
	}

	var list bookListResponse
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, &ParseError{Field: "books", Err: err}
	}
	if list.Items == nil {
		return nil, &ParseError{Field: "books.items", Err: errMissing}
	}

	books := make([]entities.Book, 0, len(*list.Items))
	for i, raw := range *list.Items {
		book, err := c.parseBook(raw)
		if err != nil {
			return nil, &ParseError{Field: fmt.Sprintf("books.items[%d]", i), Err: err}
		}
		books = append(books, book)
	}
	return books, nil
}

// FetchBookHighlights fetches every highlight and note of a book. Details are
// fetched concurrently; the first failure cancels the rest and fails the call.
func (c *Client) FetchBookHighlights(ctx context.Context, book *entities.Book) ([]entities.Highlight, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("fast_hash", book.FastHash).
		Get("notes")
	if err != nil {
		return nil, fmt.Errorf("list notes of %q: %w", book.Title, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, newFetchError("list notes", resp)
	}

	ids, err := selectNoteIDs(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("book %q: %w", book.Title, err)
	}

	highlights := make([]entities.Highlight, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	if c.noteConcurrency > 0 {
		g.SetLimit(c.noteConcurrency)
	}
	for i, id := range ids {
		g.Go(func() error {
			h, err := c.fetchNote(gctx, book, id)
			if err != nil {
				return fmt.Errorf("book %q, note %s: %w", book.Title, id, err)
			}
			highlights[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return highlights, nil
}

func (c *Client) fetchNote(ctx context.Context, book *entities.Book, id string) (entities.Highlight, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("fast_hash", book.FastHash).
		Get("notes/{id}")
	if err != nil {
		return entities.Highlight{}, fmt.Errorf("fetch note: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return entities.Highlight{}, newFetchError("fetch note", resp)
	}
	return ParseNote(book, resp.Body())
}

func (c *Client) parseBook(raw json.RawMessage) (entities.Book, error) {
	var p bookPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return entities.Book{}, err
	}
	if err := c.validate.Struct(p); err != nil {
		return entities.Book{}, err
	}

	book := entities.Book{
		ID:       *p.ID,
		Path:     *p.Path,
		Title:    *p.Title,
		FastHash: *p.FastHash,
		Metadata: entities.BookMetadata{Authors: p.Metadata.Authors},
	}
	for _, cover := range p.Metadata.Cover {
		book.Metadata.Covers = append(book.Metadata.Covers, entities.BookCover{
			Width:  cover.Width,
			Height: cover.Height,
			Path:   cover.Path,
		})
	}
	return book, nil
}

// selectNoteIDs returns the ids of highlight and note annotations. Bookmarks
// and untyped entries are skipped; any other type is an error.
func selectNoteIDs(body []byte) ([]string, error) {
	var summaries []noteSummary
	if err := json.Unmarshal(body, &summaries); err != nil {
		return nil, &ParseError{Field: "notes", Err: err}
	}

	ids := make([]string, 0, len(summaries))
	for i, s := range summaries {
		kind := deref(s.Type)
		if kind == "" || AnnotationKind(kind) == KindBookmark {
			continue
		}
		if _, err := parseKind(kind); err != nil {
			return nil, &ParseError{Field: fmt.Sprintf("notes[%d].type", i), Err: err}
		}
		if deref(s.UUID) == "" {
			return nil, &ParseError{Field: fmt.Sprintf("notes[%d].uuid", i), Err: errMissing}
		}
		ids = append(ids, *s.UUID)
	}
	return ids, nil
}

// ParseLoginData decodes a "key=value&key=value" credential string.
func ParseLoginData(raw string) (url.Values, error) {
	form := url.Values{}
	for _, record := range strings.Split(raw, "&") {
		key, value, ok := strings.Cut(record, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: malformed login data record %q", ErrConfiguration, record)
		}
		k, err := url.QueryUnescape(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		form.Add(k, v)
	}
	return form, nil
}

func newFetchError(op string, resp *resty.Response) *FetchError {
	body := strings.TrimSpace(resp.String())
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &FetchError{Op: op, StatusCode: resp.StatusCode(), Body: body}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// stdLogger routes resty's diagnostics to the standard logger.
type stdLogger struct{}

func (stdLogger) Errorf(format string, v ...any) {
	log.Printf("[HTTP ERROR] "+format, v...)
}

func (stdLogger) Warnf(format string, v ...any) {
	log.Printf("[HTTP] "+format, v...)
}

func (stdLogger) Debugf(format string, v ...any) {}
