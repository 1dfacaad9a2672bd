package repomanager

import (
	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/server/repositories/accounts"
	"github.com/vibecast/vibecast/internal/server/repositories/nudges"
	"github.com/vibecast/vibecast/internal/server/repositories/vibes"
	"github.com/vibecast/vibecast/internal/server/repositories/widgets"
)

// PostgresRepositoryManager builds PostgreSQL repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Vibes(db dbx.DBTX) vibes.Repository {
	return vibes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Widgets(db dbx.DBTX) widgets.Repository {
	return widgets.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Nudges(db dbx.DBTX) nudges.Repository {
	return nudges.NewPostgresRepository(db)
}
