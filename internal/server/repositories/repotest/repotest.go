// Package repotest opens throwaway databases for repository and service
// tests.
package repotest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/migrations"
)

// OpenSQLite returns a migrated SQLite database in t.TempDir(), configured
// the way the server opens its embedded store. It is closed on cleanup.
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", dbx.SQLiteDSN(filepath.Join(t.TempDir(), "pins.db")))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrations.Up(context.Background(), db, migrations.SQLite); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}
