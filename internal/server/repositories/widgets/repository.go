package widgets

import (
	"context"

	"github.com/vibecast/vibecast/internal/server/models"
)

// Repository persists the per-receiver widget read model.
type Repository interface {
	// Get returns the receiver's widget state, or common.ErrNotFound.
	Get(ctx context.Context, receiverID string) (*models.WidgetState, error)

	// Upsert writes the state if its timestamp is strictly newer than the
	// stored one; the timestamp only ever moves forward. It returns the
	// previous timestamp (0 for a first write) and whether a row was
	// written.
	Upsert(ctx context.Context, state *models.WidgetState) (prev int64, updated bool, err error)
}
