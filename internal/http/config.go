package http

import (
	"github.com/mrlokans/pocketbook-sync/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	Database *database.Database

	// Sync control and history
	Scheduler SyncScheduler
	Runs      RunReader

	// Application info
	Version string
}
