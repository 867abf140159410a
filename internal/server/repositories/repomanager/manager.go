// Package repomanager opens the configured storage backend and vends
// repositories bound to a dbx.DBTX, so services can use the same code path
// with a *sql.DB or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/config"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/categories"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/pins"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/visits"
)

type RepositoryManager interface {
	Backend() config.Backend
	RunMigrations(context.Context, *sql.DB) error
	Pins(db dbx.DBTX) pins.Repository
	Visits(db dbx.DBTX) visits.Repository
	Categories(db dbx.DBTX) categories.Repository
}
