package entrypoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pocketbook-sync/internal/audit"
	"github.com/mrlokans/pocketbook-sync/internal/config"
	"github.com/mrlokans/pocketbook-sync/internal/database"
	syncrepo "github.com/mrlokans/pocketbook-sync/internal/database/sync"
	http_controllers "github.com/mrlokans/pocketbook-sync/internal/http"
	"github.com/mrlokans/pocketbook-sync/internal/pipeline"
	"github.com/mrlokans/pocketbook-sync/internal/pocketbook"
	"github.com/mrlokans/pocketbook-sync/internal/readwise"
	"github.com/mrlokans/pocketbook-sync/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewPipeline wires the Pocketbook source, the Readwise sink and the optional
// auditor from configuration.
func NewPipeline(cfg *config.Config) *pipeline.Pipeline {
	source := pocketbook.NewClient(pocketbook.Config{
		BaseURL:         cfg.Pocketbook.APIURL,
		Timeout:         cfg.Pocketbook.Timeout,
		NoteConcurrency: cfg.Pocketbook.NoteConcurrency,
	})
	sink := readwise.NewClient(cfg.Readwise.APIURL)

	p := pipeline.New(source, sink, pipeline.Config{
		LoginProvider:   cfg.Pocketbook.LoginProvider,
		LoginData:       cfg.Pocketbook.LoginData,
		ReadwiseToken:   cfg.Readwise.Token,
		BookConcurrency: cfg.Pocketbook.BookConcurrency,
	})
	if cfg.Audit.Dir != "" {
		p.SetAuditor(audit.NewAuditor(cfg.Audit.Dir))
	}
	return p
}

// RunOnce performs a single sync and writes the Readwise response to out.
func RunOnce(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	result, err := NewPipeline(cfg).Run(ctx)
	if err != nil {
		return err
	}

	return writeResponse(out, result.Response)
}

// Check verifies both sets of credentials without pushing anything.
func Check(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	source := pocketbook.NewClient(pocketbook.Config{
		BaseURL: cfg.Pocketbook.APIURL,
		Timeout: cfg.Pocketbook.Timeout,
	})
	if err := source.Authenticate(ctx, cfg.Pocketbook.LoginProvider, cfg.Pocketbook.LoginData); err != nil {
		return fmt.Errorf("pocketbook: %w", err)
	}
	fmt.Fprintln(out, "Pocketbook: authenticated")

	sink := readwise.NewClient(cfg.Readwise.APIURL)
	if err := sink.ValidateToken(ctx, cfg.Readwise.Token); err != nil {
		return fmt.Errorf("readwise: %w", err)
	}
	fmt.Fprintln(out, "Readwise: token is valid")
	return nil
}

func writeResponse(out io.Writer, response json.RawMessage) error {
	if len(response) == 0 {
		return nil
	}
	if _, err := out.Write(response); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 can't be caught, so only SIGINT and SIGTERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop the scheduler before the server so no sync starts mid-shutdown
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run starts the long-running service: scheduled syncs plus the HTTP API.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Pocketbook sync v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	runs := syncrepo.NewRepository(db.DB)
	if n, err := runs.MarkInterrupted(); err != nil {
		log.Printf("Warning: failed to mark interrupted sync runs: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d interrupted sync run(s) as failed", n)
	}

	syncScheduler := scheduler.NewPocketbookSyncScheduler(NewPipeline(cfg), runs, cfg.Sync.Schedule)
	if err := syncScheduler.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start sync scheduler: %v", err)
	}
	if cfg.Sync.RunOnStart {
		if err := syncScheduler.TriggerNow(); err != nil {
			log.Printf("Warning: initial sync not started: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:  db,
		Scheduler: syncScheduler,
		Runs:      runs,
		Version:   version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		log.Println("Stopping sync scheduler...")
		syncScheduler.Stop()
	})
}
