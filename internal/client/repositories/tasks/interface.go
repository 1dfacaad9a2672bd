package tasks

import (
	"context"

	"github.com/vibecast/vibecast/internal/client/models"
)

// Repository persists upload tasks. The persisted snapshot is the single
// source of truth for task state; in-memory state is rebuilt from it on
// restart, never the reverse.
type Repository interface {
	// Save upserts the task's document and status.
	Save(ctx context.Context, task *models.UploadTask) error

	// Delete removes the task row. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error

	// GetByID returns one task, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.UploadTask, error)

	// GetInterrupted returns every persisted task still in a non-terminal
	// state (processing or uploading), oldest first.
	GetInterrupted(ctx context.Context) ([]*models.UploadTask, error)

	// GetAll returns every persisted task, oldest first.
	GetAll(ctx context.Context) ([]*models.UploadTask, error)
}
