package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/vibecast/vibecast/internal/client/models"
	"github.com/vibecast/vibecast/internal/common"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE upload_tasks (
  id         TEXT PRIMARY KEY,
  doc        TEXT NOT NULL,
  status     INTEGER NOT NULL,
  created_at TIMESTAMP NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func sampleTask(id string, status models.TaskStatus, age time.Duration) *models.UploadTask {
	return &models.UploadTask{
		ID:            id,
		ReceiverIDs:   []string{"r1", "r2"},
		AudioPath:     "staging/" + id + "/audio.m4a",
		AudioDuration: 3.5,
		WaveformData:  []float64{0.1, 0.9, 0.4},
		Status:        status,
		CreatedAt:     time.Now().Add(-age).UTC(),
	}
}

func TestSaveAndGetByID_RoundTrip(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	task := sampleTask("t1", models.StatusProcessing, 0)
	require.NoError(t, r.Save(ctx, task))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, task.ReceiverIDs, got.ReceiverIDs)
	assert.Equal(t, task.AudioPath, got.AudioPath)
	assert.Equal(t, task.WaveformData, got.WaveformData)
	assert.Equal(t, models.StatusProcessing, got.Status)
}

func TestGetByID_NotFound(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	_, err := r.GetByID(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSave_UpsertUpdatesStatusAndDoc(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	task := sampleTask("t1", models.StatusProcessing, 0)
	require.NoError(t, r.Save(ctx, task))

	task.Status = models.StatusError
	task.Error = "Failed to send"
	require.NoError(t, r.Save(ctx, task))

	got, err := r.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, got.Status)
	assert.Equal(t, "Failed to send", got.Error)
}

func TestGetInterrupted_ReturnsOnlyNonTerminal(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, sampleTask("p1", models.StatusProcessing, 3*time.Minute)))
	require.NoError(t, r.Save(ctx, sampleTask("u1", models.StatusUploading, 2*time.Minute)))
	require.NoError(t, r.Save(ctx, sampleTask("e1", models.StatusError, time.Minute)))

	got, err := r.GetInterrupted(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// oldest first
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "u1", got[1].ID)
}

func TestGetAll_IncludesTerminal(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, sampleTask("p1", models.StatusProcessing, 2*time.Minute)))
	require.NoError(t, r.Save(ctx, sampleTask("e1", models.StatusError, time.Minute)))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDelete_MissingRowIsNotAnError(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Delete(ctx, "absent"))

	require.NoError(t, r.Save(ctx, sampleTask("t1", models.StatusUploading, 0)))
	require.NoError(t, r.Delete(ctx, "t1"))

	_, err := r.GetByID(ctx, "t1")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
