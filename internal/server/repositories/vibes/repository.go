package vibes

import (
	"context"

	"github.com/vibecast/vibecast/internal/server/models"
)

// Repository persists vibe records.
type Repository interface {
	// Create inserts the vibe. The (batch_id, receiver_id) pair is the
	// idempotency key: a duplicate insert is a no-op and Create returns
	// created=false, so a resumed task never double-delivers.
	Create(ctx context.Context, v *models.Vibe) (created bool, err error)

	// GetByID returns one vibe, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Vibe, error)

	// ListByReceiver returns the receiver's vibes, newest first, excluding
	// deleted ones.
	ListByReceiver(ctx context.Context, receiverID string, limit int) ([]*models.Vibe, error)

	// MarkPlayed flags the vibe as played by its receiver, or returns
	// common.ErrNotFound.
	MarkPlayed(ctx context.Context, id string) error
}
