package pins

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// SQLiteRepository implements Repository for the embedded SQLite store.
// Timestamps are kept as timex.Layout text.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func newTextTime() timeScanner { return &textTime{} }

func (r *SQLiteRepository) List(ctx context.Context, category string) ([]models.Pin, error) {
	if category == "" {
		return queryPins(ctx, r.db, newTextTime,
			`SELECT `+pinColumns+` FROM pins ORDER BY updated_at DESC, id DESC`)
	}
	return queryPins(ctx, r.db, newTextTime,
		`SELECT `+pinColumns+` FROM pins WHERE category = ? ORDER BY updated_at DESC, id DESC`, category)
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.NewPin, now time.Time) (*models.Pin, error) {
	ts := timex.Format(now)
	query := `
		INSERT INTO pins (title, description, lat, lng, category, image_url, created_at, updated_at, version, visits_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, 0)
		RETURNING ` + pinColumns

	row := r.db.QueryRowContext(ctx, query,
		p.Title, dbx.NullString(p.Description), p.Lat, p.Lng, p.Category, dbx.NullString(p.ImageURL), ts, ts)
	pin, err := scanPin(row, newTextTime)
	if err != nil {
		return nil, fmt.Errorf("failed to insert pin: %w", err)
	}
	return pin, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Pin, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pinColumns+` FROM pins WHERE id = ?`, id)
	pin, err := scanPin(row, newTextTime)
	if err != nil {
		return nil, notFound(err, "failed to select pin")
	}
	return pin, nil
}

// CurrentUpdatedAt reads updated_at. SQLite has no row locks; callers run it
// inside an immediate transaction, which holds the database write lock.
func (r *SQLiteRepository) CurrentUpdatedAt(ctx context.Context, id int64) (time.Time, error) {
	var s string
	err := r.db.QueryRowContext(ctx, `SELECT updated_at FROM pins WHERE id = ?`, id).Scan(&s)
	if err != nil {
		return time.Time{}, notFound(err, "failed to read pin")
	}
	return timex.Parse(s)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, upd *models.PinUpdate, prev, next time.Time) (*models.Pin, error) {
	query := `
		UPDATE pins
		SET title = ?, description = ?, category = ?, image_url = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND updated_at = ?
		RETURNING ` + pinColumns

	row := r.db.QueryRowContext(ctx, query,
		upd.Title, dbx.NullString(upd.Description), upd.Category, dbx.NullString(upd.ImageURL),
		timex.Format(next), id, timex.Format(prev))
	pin, err := scanPin(row, newTextTime)
	if err != nil {
		return nil, conflict(err, "failed to update pin")
	}
	return pin, nil
}

func (r *SQLiteRepository) Touch(ctx context.Context, id int64, prev, next time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pins SET updated_at = ?, version = version + 1 WHERE id = ? AND updated_at = ?`,
		timex.Format(next), id, timex.Format(prev))
	if err != nil {
		return fmt.Errorf("failed to touch pin: %w", err)
	}
	return checkAffected(res)
}

// Delete removes the pin's visits explicitly before the pin itself, so the
// cascade holds even on a connection opened without foreign_keys=ON.
// Run it inside a transaction.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM visits WHERE pin_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete visits: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pins WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete pin: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Stats(ctx context.Context) (*models.Stats, error) {
	return queryStats(ctx, r.db)
}
