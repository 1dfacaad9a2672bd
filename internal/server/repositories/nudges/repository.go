package nudges

import (
	"context"

	"github.com/vibecast/vibecast/internal/server/models"
)

// Repository persists nudge records.
type Repository interface {
	Create(ctx context.Context, n *models.Nudge) error
}
