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

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Backend() config.Backend { return config.BackendPostgres }

// Pins returns a pins.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Pins(db dbx.DBTX) pins.Repository {
	return pins.NewPostgresRepository(db)
}

// Visits returns a visits.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Visits(db dbx.DBTX) visits.Repository {
	return visits.NewPostgresRepository(db)
}

// Categories returns a categories.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewPostgresRepository(db)
}

// RunMigrations applies the embedded PostgreSQL migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, migrations.Postgres)
}
