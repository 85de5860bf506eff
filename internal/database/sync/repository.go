// Package sync provides database operations for sync run history.
//
// # Usage
//
//	repo := sync.NewRepository(db)
//	run, err := repo.StartRun(entities.SyncTriggerManual)
//	...
//	err = repo.CompleteRun(run, books, highlights, auditFile)
package sync

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

const interruptedMessage = "sync was interrupted"

// Repository handles all sync run database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// StartRun records the beginning of a sync.
func (r *Repository) StartRun(trigger entities.SyncTrigger) (*entities.SyncRun, error) {
	run := &entities.SyncRun{
		Trigger:   trigger,
		Status:    entities.SyncRunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := r.db.Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteRun marks a run as successful.
func (r *Repository) CompleteRun(run *entities.SyncRun, booksProcessed, highlightsPushed int, auditFile string) error {
	now := time.Now().UTC()
	run.Status = entities.SyncRunStatusCompleted
	run.BooksProcessed = booksProcessed
	run.HighlightsPushed = highlightsPushed
	run.AuditFile = auditFile
	run.CompletedAt = &now
	return r.db.Save(run).Error
}

// FailRun marks a run as failed with the error that aborted it.
func (r *Repository) FailRun(run *entities.SyncRun, runErr error) error {
	now := time.Now().UTC()
	run.Status = entities.SyncRunStatusFailed
	if runErr != nil {
		run.Message = runErr.Error()
	}
	run.CompletedAt = &now
	return r.db.Save(run).Error
}

// LatestRun returns the most recent run, or nil when there is none.
func (r *Repository) LatestRun() (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := r.db.Order("started_at DESC, id DESC").First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (r *Repository) ListRuns(limit int) ([]entities.SyncRun, error) {
	var runs []entities.SyncRun
	err := r.db.Order("started_at DESC, id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// MarkInterrupted fails runs left in the running state by a previous process.
// Call it once at startup.
func (r *Repository) MarkInterrupted() (int64, error) {
	now := time.Now().UTC()
	result := r.db.Model(&entities.SyncRun{}).
		Where("status = ?", entities.SyncRunStatusRunning).
		Updates(map[string]any{
			"status":       entities.SyncRunStatusFailed,
			"message":      interruptedMessage,
			"completed_at": now,
		})
	return result.RowsAffected, result.Error
}
