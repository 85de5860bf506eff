package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
	"github.com/mrlokans/pocketbook-sync/internal/scheduler"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// SyncScheduler controls scheduled and manual syncs.
type SyncScheduler interface {
	TriggerNow() error
	IsRunning() bool
	IsSyncing() bool
	Schedule() string
	GetNextRunTime() *time.Time
}

// RunReader provides sync run history.
type RunReader interface {
	LatestRun() (*entities.SyncRun, error)
	ListRuns(limit int) ([]entities.SyncRun, error)
}

type SyncStatusResponse struct {
	SchedulerRunning    bool              `json:"scheduler_running"`
	Syncing             bool              `json:"syncing"`
	Schedule            string            `json:"schedule"`
	ScheduleDescription string            `json:"schedule_description"`
	NextRun             *time.Time        `json:"next_run,omitempty"`
	LastRun             *entities.SyncRun `json:"last_run,omitempty"`
}

type SyncController struct {
	scheduler SyncScheduler
	runs      RunReader
}

func NewSyncController(s SyncScheduler, runs RunReader) *SyncController {
	return &SyncController{scheduler: s, runs: runs}
}

// Status handles GET /api/sync/status
func (sc *SyncController) Status(c *gin.Context) {
	lastRun, err := sc.runs.LatestRun()
	if err != nil {
		respondInternalError(c, err, "latest sync run")
		return
	}

	c.JSON(http.StatusOK, SyncStatusResponse{
		SchedulerRunning:    sc.scheduler.IsRunning(),
		Syncing:             sc.scheduler.IsSyncing(),
		Schedule:            sc.scheduler.Schedule(),
		ScheduleDescription: scheduler.GetCronDescription(sc.scheduler.Schedule()),
		NextRun:             sc.scheduler.GetNextRunTime(),
		LastRun:             lastRun,
	})
}

// Runs handles GET /api/sync/runs?limit=N
func (sc *SyncController) Runs(c *gin.Context) {
	limit, ok := parseLimit(c, defaultRunsLimit, maxRunsLimit)
	if !ok {
		return
	}

	runs, err := sc.runs.ListRuns(limit)
	if err != nil {
		respondInternalError(c, err, "list sync runs")
		return
	}
	if runs == nil {
		runs = []entities.SyncRun{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Run handles POST /api/sync/run
func (sc *SyncController) Run(c *gin.Context) {
	if err := sc.scheduler.TriggerNow(); err != nil {
		if errors.Is(err, scheduler.ErrSyncInProgress) {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondInternalError(c, err, "trigger sync")
		return
	}
	respondAccepted(c, "sync started", nil)
}
