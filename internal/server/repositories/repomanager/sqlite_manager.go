package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/config"
	"github.com/dmitrijs2005/pinboard/internal/server/migrations"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/categories"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/pins"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/visits"
)

// SQLiteRepositoryManager vends repositories for the embedded store.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Backend() config.Backend { return config.BackendSQLite }

func (m *SQLiteRepositoryManager) Pins(db dbx.DBTX) pins.Repository {
	return pins.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Visits(db dbx.DBTX) visits.Repository {
	return visits.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, migrations.SQLite)
}
