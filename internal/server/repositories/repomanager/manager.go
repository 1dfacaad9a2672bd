// Package repomanager bundles repository constructors behind one interface
// so services can build repositories over either a *sql.DB or an open
// transaction.
package repomanager

import (
	"github.com/vibecast/vibecast/internal/dbx"
	"github.com/vibecast/vibecast/internal/server/repositories/accounts"
	"github.com/vibecast/vibecast/internal/server/repositories/nudges"
	"github.com/vibecast/vibecast/internal/server/repositories/vibes"
	"github.com/vibecast/vibecast/internal/server/repositories/widgets"
)

// RepositoryManager hands out repositories bound to the given DBTX.
type RepositoryManager interface {
	Vibes(db dbx.DBTX) vibes.Repository
	Widgets(db dbx.DBTX) widgets.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Nudges(db dbx.DBTX) nudges.Repository
}
