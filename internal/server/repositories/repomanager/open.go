package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/filex"
	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/dmitrijs2005/pinboard/internal/server/config"
	"github.com/dmitrijs2005/pinboard/internal/server/migrations"
)

// Seams for tests that must not touch a real database.
var (
	sqlOpen   = sql.Open
	migrateUp = migrations.Up
)

// Open selects the backend once from cfg, opens its connection pool and
// returns it together with the matching RepositoryManager. The schema is
// not touched here; callers migrate lazily through schema.Manager.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (*sql.DB, RepositoryManager, error) {
	backend, err := config.SelectBackend(cfg)
	if err != nil {
		return nil, nil, err
	}
	switch backend {
	case config.BackendPostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "storage opened", "backend", backend, "max_open_conns", cfg.MaxOpenConns)
		return db, NewPostgresRepositoryManager(), nil
	case config.BackendSQLite:
		db, path, err := openSQLite(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "storage opened", "backend", backend, "path", path)
		return db, NewSQLiteRepositoryManager(), nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseDSN == "" {
		return nil, fmt.Errorf("postgres backend selected but no database DSN configured")
	}
	db, err := sqlOpen("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*sql.DB, string, error) {
	path, err := filex.EnsureParentDir(cfg.SQLitePath)
	if err != nil {
		return nil, "", err
	}
	db, err := sqlOpen("sqlite", dbx.SQLiteDSN(path))
	if err != nil {
		return nil, "", fmt.Errorf("open sqlite: %w", err)
	}
	// one writer at a time; BEGIN IMMEDIATE then serialises check-and-write
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping sqlite: %w", err)
	}
	return db, path, nil
}
