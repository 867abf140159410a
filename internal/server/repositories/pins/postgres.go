package pins

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// PostgresRepository implements Repository for PostgreSQL.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func newNativeTime() timeScanner { return &nativeTime{} }

// List returns pins, most recently updated first, optionally restricted to
// one category.
func (r *PostgresRepository) List(ctx context.Context, category string) ([]models.Pin, error) {
	if category == "" {
		return queryPins(ctx, r.db, newNativeTime,
			`SELECT `+pinColumns+` FROM pins ORDER BY updated_at DESC, id DESC`)
	}
	return queryPins(ctx, r.db, newNativeTime,
		`SELECT `+pinColumns+` FROM pins WHERE category = $1 ORDER BY updated_at DESC, id DESC`, category)
}

// Create inserts a pin with version 1 and no visits.
func (r *PostgresRepository) Create(ctx context.Context, p *models.NewPin, now time.Time) (*models.Pin, error) {
	now = timex.Normalize(now)
	query := `
		INSERT INTO pins (title, description, lat, lng, category, image_url, created_at, updated_at, version, visits_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, 1, 0)
		RETURNING ` + pinColumns

	row := r.db.QueryRowContext(ctx, query,
		p.Title, dbx.NullString(p.Description), p.Lat, p.Lng, p.Category, dbx.NullString(p.ImageURL), now)
	pin, err := scanPin(row, newNativeTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert pin: %w", err)
	}
	return pin, nil
}

// Get returns one pin or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Pin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pinColumns+` FROM pins WHERE id = $1`, id)
	pin, err := scanPin(row, newNativeTime)
	if err != nil {
		return nil, notFound(err, "failed to select pin")
	}
	return pin, nil
}

// CurrentUpdatedAt reads updated_at and locks the row until the surrounding
// transaction ends.
func (r *PostgresRepository) CurrentUpdatedAt(ctx context.Context, id int64) (time.Time, error) {
	var t time.Time
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM pins WHERE id = $1 FOR UPDATE`, id).Scan(&t)
	if err != nil {
		return time.Time{}, notFound(err, "failed to lock pin")
	}
	return timex.Normalize(t), nil
}

// Update replaces the mutable fields, stamps next and bumps the version,
// provided updated_at still equals prev.
func (r *PostgresRepository) Update(ctx context.Context, id int64, upd *models.PinUpdate, prev, next time.Time) (*models.Pin, error) {
	query := `
		UPDATE pins
		SET title = $1, description = $2, category = $3, image_url = $4,
			updated_at = $5, version = version + 1
		WHERE id = $6 AND updated_at = $7
		RETURNING ` + pinColumns

	row := r.db.QueryRowContext(ctx, query,
		upd.Title, dbx.NullString(upd.Description), upd.Category, dbx.NullString(upd.ImageURL),
		timex.Normalize(next), id, timex.Normalize(prev))
	pin, err := scanPin(row, newNativeTime)
	if err != nil {
		return nil, conflict(err, "failed to update pin")
	}
	return pin, nil
}

// Touch stamps next and bumps the version without changing any field.
func (r *PostgresRepository) Touch(ctx context.Context, id int64, prev, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pins SET updated_at = $1, version = version + 1 WHERE id = $2 AND updated_at = $3`,
		timex.Normalize(next), id, timex.Normalize(prev))
	if err != nil {
		return fmt.Errorf("failed to touch pin: %w", err)
	}
	return checkAffected(res)
}

// Delete removes the pin; visits go with it through ON DELETE CASCADE.
// Deleting a missing pin is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pins WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete pin: %w", err)
	}
	return nil
}

// Stats aggregates pins and visits per category.
func (r *PostgresRepository) Stats(ctx context.Context) (*models.Stats, error) {
	return queryStats(ctx, r.db)
}
