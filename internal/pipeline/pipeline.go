package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
	"github.com/mrlokans/pocketbook-sync/internal/exporters"
	"github.com/mrlokans/pocketbook-sync/internal/readwise"
)

// ErrMissingReadwiseToken is returned before any request when no token is configured.
var ErrMissingReadwiseToken = errors.New("READWISE_TOKEN is not set")

// Source provides books and highlights from Pocketbook Cloud.
type Source interface {
	Authenticate(ctx context.Context, provider, loginData string) error
	ListBooks(ctx context.Context) ([]entities.Book, error)
	FetchBookHighlights(ctx context.Context, book *entities.Book) ([]entities.Highlight, error)
}

// Sink receives the serialized batch.
type Sink interface {
	CreateHighlights(ctx context.Context, token string, highlights []readwise.HighlightInput) (json.RawMessage, error)
}

// Auditor stores a copy of the outgoing batch.
type Auditor interface {
	SaveJSON(data any) (string, error)
}

type Config struct {
	LoginProvider string
	LoginData     string
	ReadwiseToken string

	// BookConcurrency caps how many books are fetched at once. Zero means unbounded.
	BookConcurrency int
}

// Result contains the outcome of a successful run.
type Result struct {
	exporters.ExportResult

	// Response is the Readwise response body, verbatim.
	Response  json.RawMessage
	AuditFile string
	Duration  time.Duration
}

type Pipeline struct {
	source  Source
	sink    Sink
	auditor Auditor
	cfg     Config
}

func New(source Source, sink Sink, cfg Config) *Pipeline {
	return &Pipeline{source: source, sink: sink, cfg: cfg}
}

// SetAuditor enables saving every outgoing batch before it is pushed.
func (p *Pipeline) SetAuditor(auditor Auditor) {
	p.auditor = auditor
}

// Run performs a full sync and returns the Readwise response.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.cfg.ReadwiseToken == "" {
		return nil, ErrMissingReadwiseToken
	}
	startTime := time.Now()

	books, highlights, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}

	batch := exporters.ReadwiseHighlights(highlights)
	result := &Result{
		ExportResult: exporters.ExportResult{
			BooksProcessed:      len(books),
			HighlightsProcessed: len(batch),
		},
	}

	if p.auditor != nil {
		filename, err := p.auditor.SaveJSON(readwise.CreateHighlightsRequest{Highlights: batch})
		if err != nil {
			log.Printf("Pocketbook sync: warning - failed to save audit file: %v", err)
		} else {
			result.AuditFile = filename
		}
	}

	log.Printf("Pocketbook sync: pushing %d highlights to Readwise", len(batch))
	response, err := p.sink.CreateHighlights(ctx, p.cfg.ReadwiseToken, batch)
	if err != nil {
		return nil, fmt.Errorf("push to Readwise: %w", err)
	}
	result.Response = response
	result.Duration = time.Since(startTime)

	log.Printf("Pocketbook sync: pushed %d highlights from %d books in %v",
		result.HighlightsProcessed, result.BooksProcessed, result.Duration.Round(time.Millisecond))
	return result, nil
}

// Collect authenticates, lists books and fetches the highlights of every book
// concurrently. Highlights are grouped in book-list order.
func (p *Pipeline) Collect(ctx context.Context) ([]entities.Book, []entities.Highlight, error) {
	if err := p.source.Authenticate(ctx, p.cfg.LoginProvider, p.cfg.LoginData); err != nil {
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}

	books, err := p.source.ListBooks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list books: %w", err)
	}
	log.Printf("Pocketbook sync: found %d books", len(books))

	groups := make([][]entities.Highlight, len(books))
	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.BookConcurrency > 0 {
		g.SetLimit(p.cfg.BookConcurrency)
	}
	for i := range books {
		g.Go(func() error {
			highlights, err := p.source.FetchBookHighlights(gctx, &books[i])
			if err != nil {
				return err
			}
			groups[i] = highlights
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("fetch highlights: %w", err)
	}

	var highlights []entities.Highlight
	for _, group := range groups {
		highlights = append(highlights, group...)
	}
	return books, highlights, nil
}
