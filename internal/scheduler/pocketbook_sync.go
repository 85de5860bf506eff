package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
	"github.com/mrlokans/pocketbook-sync/internal/pipeline"
)

// ErrSyncInProgress is returned by TriggerNow while a sync is running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Runner executes one sync.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// RunStore records sync outcomes.
type RunStore interface {
	StartRun(trigger entities.SyncTrigger) (*entities.SyncRun, error)
	CompleteRun(run *entities.SyncRun, booksProcessed, highlightsPushed int, auditFile string) error
	FailRun(run *entities.SyncRun, runErr error) error
}

// PocketbookSyncScheduler runs the Pocketbook -> Readwise pipeline on a cron
// schedule. At most one sync runs at a time.
type PocketbookSyncScheduler struct {
	runner   Runner
	runs     RunStore
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	runCtx     context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewPocketbookSyncScheduler creates a new scheduler instance
func NewPocketbookSyncScheduler(runner Runner, runs RunStore, schedule string) *PocketbookSyncScheduler {
	return &PocketbookSyncScheduler{
		runner:   runner,
		runs:     runs,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cronParser)),
		runCtx:   context.Background(),
	}
}

// Start schedules the sync job. Syncs started by the scheduler are cancelled
// when ctx is done.
func (s *PocketbookSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync(entities.SyncTriggerSchedule)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	s.runCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.schedule)
	log.Printf("Pocketbook sync scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule,
		GetCronDescription(s.schedule),
		nextRun)

	return nil
}

// Stop cancels an in-flight sync and waits for it to finish
func (s *PocketbookSyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.cancelFunc()
	s.isRunning = false
	s.mu.Unlock()

	// Stop accepting new jobs and wait for running jobs to complete
	<-s.cron.Stop().Done()
	s.wg.Wait()

	log.Printf("Pocketbook sync scheduler: stopped")
}

// TriggerNow starts a sync in the background unless one is already running
func (s *PocketbookSyncScheduler) TriggerNow() error {
	if s.IsSyncing() {
		return ErrSyncInProgress
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSync(entities.SyncTriggerManual)
	}()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *PocketbookSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a sync is currently in progress
func (s *PocketbookSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// Schedule returns the configured cron expression
func (s *PocketbookSyncScheduler) Schedule() string {
	return s.schedule
}

// GetNextRunTime returns when the next sync will occur
func (s *PocketbookSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync performs the actual sync operation
func (s *PocketbookSyncScheduler) runSync(trigger entities.SyncTrigger) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Pocketbook sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	ctx := s.runCtx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	log.Printf("Pocketbook sync: starting (%s)", trigger)

	run, err := s.runs.StartRun(trigger)
	if err != nil {
		log.Printf("Pocketbook sync: warning - failed to record run start: %v", err)
	}

	result, err := s.runner.Run(ctx)
	if err != nil {
		log.Printf("Pocketbook sync: failed: %v", err)
		if run != nil {
			if recErr := s.runs.FailRun(run, err); recErr != nil {
				log.Printf("Pocketbook sync: warning - failed to record run failure: %v", recErr)
			}
		}
		return
	}

	if run != nil {
		if err := s.runs.CompleteRun(run, result.BooksProcessed, result.HighlightsProcessed, result.AuditFile); err != nil {
			log.Printf("Pocketbook sync: warning - failed to record run completion: %v", err)
		}
	}
}
