package accounts

import (
	"context"

	"github.com/vibecast/vibecast/internal/server/models"
)

// Repository persists account records and their push tokens.
type Repository interface {
	// Get returns one account, or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Account, error)

	// Upsert creates or updates the account's display fields.
	Upsert(ctx context.Context, a *models.Account) error

	// SetPushToken registers the account's device token.
	SetPushToken(ctx context.Context, id, token string) error

	// ClearPushToken deletes the stored token, e.g. after the push gateway
	// reported it unregistered.
	ClearPushToken(ctx context.Context, id string) error
}
