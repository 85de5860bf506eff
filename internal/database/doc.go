// Package database owns the sqlite connection used by the serve command.
//
// Only sync run outcomes are stored (see the sync sub-package). Highlights are
// never persisted: every run fetches and pushes the full set again.
//
//	db, err := database.NewDatabase("./pocketbook-sync.db")
//	runs := sync.NewRepository(db.DB)
//	run, err := runs.StartRun(entities.SyncTriggerSchedule)
package database
