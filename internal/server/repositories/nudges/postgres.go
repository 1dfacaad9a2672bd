// Package nudges provides the PostgreSQL-backed repository for lightweight
// signal records.
package nudges

import (
	"context"
	"fmt"

	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Nudge) error {
	query := `INSERT INTO nudges (id, sender_id, receiver_id, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, n.ID, n.SenderID, n.ReceiverID, n.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert nudge: %w", err)
	}
	return nil
}
