package pins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// timeScanner converts the backend's timestamp column into a time.Time.
type timeScanner interface {
	dest() any
	value() (time.Time, error)
}

// nativeTime reads TIMESTAMPTZ columns.
type nativeTime struct{ t time.Time }

func (n *nativeTime) dest() any                  { return &n.t }
func (n *nativeTime) value() (time.Time, error) { return timex.Normalize(n.t), nil }

// textTime reads timestamps stored as timex.Layout text.
type textTime struct{ s string }

func (x *textTime) dest() any                  { return &x.s }
func (x *textTime) value() (time.Time, error) { return timex.Parse(x.s) }

func scanPin(row dbx.Scanner, newTime func() timeScanner) (*models.Pin, error) {
	var (
		p         models.Pin
		desc, img sql.NullString
	)
	created, updated := newTime(), newTime()
	if err := row.Scan(
		&p.ID, &p.Title, &desc, &p.Lat, &p.Lng, &p.Category, &img,
		created.dest(), updated.dest(), &p.Version, &p.VisitsCount,
	); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = created.value(); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if p.UpdatedAt, err = updated.value(); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	p.Description = desc.String
	p.ImageURL = img.String
	return &p, nil
}

func queryPins(ctx context.Context, db dbx.DBTX, newTime func() timeScanner, query string, args ...any) ([]models.Pin, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select pins: %w", err)
	}
	defer rows.Close()

	result := []models.Pin{}
	for rows.Next() {
		p, err := scanPin(rows, newTime)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func queryStats(ctx context.Context, db dbx.DBTX) (*models.Stats, error) {
	rows, err := db.QueryContext(ctx, statsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to select stats: %w", err)
	}
	defer rows.Close()

	stats := &models.Stats{ByCategory: []models.CategoryStats{}}
	for rows.Next() {
		var cs models.CategoryStats
		if err := rows.Scan(&cs.Category, &cs.Color, &cs.Pins, &cs.Visits); err != nil {
			return nil, err
		}
		stats.TotalPins += cs.Pins
		stats.TotalVisits += cs.Visits
		stats.ByCategory = append(stats.ByCategory, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

// notFound maps sql.ErrNoRows to common.ErrorNotFound and wraps the rest.
func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// conflict maps sql.ErrNoRows from a conditional write to ErrVersionConflict.
func conflict(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrVersionConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrVersionConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
