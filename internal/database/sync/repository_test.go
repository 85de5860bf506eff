package sync

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/pocketbook-sync/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_sync_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.SyncRun{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_StartRun(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	run, err := repo.StartRun(entities.SyncTriggerSchedule)
	require.NoError(t, err)
	assert.NotZero(t, run.ID)
	assert.Equal(t, entities.SyncRunStatusRunning, run.Status)
	assert.Equal(t, entities.SyncTriggerSchedule, run.Trigger)
	assert.Nil(t, run.CompletedAt)

	latest, err := repo.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
}

func TestRepository_CompleteRun(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	run, err := repo.StartRun(entities.SyncTriggerManual)
	require.NoError(t, err)

	err = repo.CompleteRun(run, 3, 42, "batch.json")
	require.NoError(t, err)

	latest, err := repo.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, entities.SyncRunStatusCompleted, latest.Status)
	assert.Equal(t, 3, latest.BooksProcessed)
	assert.Equal(t, 42, latest.HighlightsPushed)
	assert.Equal(t, "batch.json", latest.AuditFile)
	assert.NotNil(t, latest.CompletedAt)
}

func TestRepository_FailRun(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	run, err := repo.StartRun(entities.SyncTriggerManual)
	require.NoError(t, err)

	err = repo.FailRun(run, errors.New("authenticate: HTTP 401"))
	require.NoError(t, err)

	latest, err := repo.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, entities.SyncRunStatusFailed, latest.Status)
	assert.Equal(t, "authenticate: HTTP 401", latest.Message)
	assert.Zero(t, latest.HighlightsPushed)
}

func TestRepository_LatestRun_Empty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	latest, err := repo.LatestRun()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRepository_ListRuns(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	var ids []uint
	for i := 0; i < 5; i++ {
		run, err := repo.StartRun(entities.SyncTriggerSchedule)
		require.NoError(t, err)
		require.NoError(t, repo.CompleteRun(run, i, i, ""))
		ids = append(ids, run.ID)
	}

	runs, err := repo.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Newest first
	assert.Equal(t, ids[4], runs[0].ID)
	assert.Equal(t, ids[3], runs[1].ID)
	assert.Equal(t, ids[2], runs[2].ID)
}

func TestRepository_MarkInterrupted(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	stale, err := repo.StartRun(entities.SyncTriggerSchedule)
	require.NoError(t, err)

	done, err := repo.StartRun(entities.SyncTriggerManual)
	require.NoError(t, err)
	require.NoError(t, repo.CompleteRun(done, 1, 1, ""))

	affected, err := repo.MarkInterrupted()
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	runs, err := repo.ListRuns(10)
	require.NoError(t, err)
	for _, run := range runs {
		if run.ID == stale.ID {
			assert.Equal(t, entities.SyncRunStatusFailed, run.Status)
			assert.Equal(t, interruptedMessage, run.Message)
			assert.NotNil(t, run.CompletedAt)
		} else {
			assert.Equal(t, entities.SyncRunStatusCompleted, run.Status)
		}
	}
}
