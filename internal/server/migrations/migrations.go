// Package migrations embeds the goose SQL migrations of both backends and
// applies them. Each dialect lives in its own directory with matching
// version numbers.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// Directory names inside Migrations.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

var dialects = map[string]goose.Dialect{
	Postgres: goose.DialectPostgres,
	SQLite:   goose.DialectSQLite3,
}

// gooseUp is a seam for tests that must not touch a real database.
var gooseUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

// Up applies every pending migration of the named dialect directory.
func Up(ctx context.Context, db *sql.DB, name string) error {
	dialect, ok := dialects[name]
	if !ok {
		return fmt.Errorf("unknown migration dialect %q", name)
	}
	fsys, err := fs.Sub(Migrations, name)
	if err != nil {
		return err
	}
	if err := gooseUp(ctx, dialect, db, fsys); err != nil {
		return fmt.Errorf("migrate %s: %w", name, err)
	}
	return nil
}
