package entities

import "time"

type SyncRunStatus string

const (
	SyncRunStatusRunning   SyncRunStatus = "running"
	SyncRunStatusCompleted SyncRunStatus = "completed"
	SyncRunStatusFailed    SyncRunStatus = "failed"
)

type SyncTrigger string

const (
	SyncTriggerSchedule SyncTrigger = "schedule"
	SyncTriggerManual   SyncTrigger = "manual"
)

// SyncRun is one execution of the Pocketbook -> Readwise pipeline. Only the
// outcome is stored, never the highlights themselves.
type SyncRun struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	Trigger          SyncTrigger   `gorm:"size:20" json:"trigger"`
	Status           SyncRunStatus `gorm:"size:20;index" json:"status"`
	BooksProcessed   int           `json:"books_processed"`
	HighlightsPushed int           `json:"highlights_pushed"`
	Message          string        `gorm:"type:text" json:"message,omitempty"`
	AuditFile        string        `gorm:"size:256" json:"audit_file,omitempty"`
	StartedAt        time.Time     `gorm:"index" json:"started_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
