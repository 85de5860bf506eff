package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/pocketbook-sync/internal/database"
)

// SchedulerState reports whether scheduled syncs are active.
type SchedulerState interface {
	IsRunning() bool
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db        *database.Database
	scheduler SchedulerState
	version   string
}

func NewHealthController(db *database.Database, scheduler SchedulerState, version string) *HealthController {
	return &HealthController{
		db:        db,
		scheduler: scheduler,
		version:   version,
	}
}

// Status handles GET /health. The service is unhealthy when the run history
// database is unreachable or the scheduler has stopped.
func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	healthy := true

	if h.db == nil {
		checks["database"] = "not configured"
	} else if err := h.db.Ping(); err != nil {
		checks["database"] = "error: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	switch {
	case h.scheduler == nil:
		checks["scheduler"] = "not configured"
	case h.scheduler.IsRunning():
		checks["scheduler"] = "running"
	default:
		checks["scheduler"] = "stopped"
		healthy = false
	}

	status, statusCode := "healthy", http.StatusOK
	if !healthy {
		status, statusCode = "unhealthy", http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}
