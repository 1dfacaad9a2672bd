// Package accounts provides the PostgreSQL-backed repository for account
// records and push-token lifecycle.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT id, display_name, avatar_url, COALESCE(push_token, '') FROM accounts WHERE id=$1`
	row := r.db.QueryRowContext(ctx, query, id)

	a := &models.Account{}
	if err := row.Scan(&a.ID, &a.DisplayName, &a.AvatarURL, &a.PushToken); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select account: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (id, display_name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			avatar_url = EXCLUDED.avatar_url;
	`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.DisplayName, a.AvatarURL); err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SetPushToken(ctx context.Context, id, token string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET push_token=$2 WHERE id=$1`, id, token)
	if err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}
	return oneRow(res)
}

func (r *PostgresRepository) ClearPushToken(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE accounts SET push_token=NULL WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to clear push token: %w", err)
	}
	return oneRow(res)
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return common.ErrNotFound
	}
	return nil
}
