package visits

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// SQLiteRepository implements Repository for the embedded SQLite store.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) scan(row dbx.Scanner) (*models.Visit, error) {
	var s string
	return scanVisit(row, &s, func() (time.Time, error) { return timex.Parse(s) })
}

func (r *SQLiteRepository) Create(ctx context.Context, pinID int64, v *models.NewVisit, visitedAt time.Time) (*models.Visit, error) {
	query := `
		INSERT INTO visits (pin_id, name, note, image_url, visited_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING ` + visitColumns

	row := r.db.QueryRowContext(ctx, query,
		pinID, v.Name, dbx.NullString(v.Note), dbx.NullString(v.ImageURL), timex.Format(visitedAt))
	visit, err := r.scan(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}
	return visit, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Visit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = ?`, id)
	visit, err := r.scan(row)
	if err != nil {
		return nil, notFound(err, "failed to select visit")
	}
	return visit, nil
}

func (r *SQLiteRepository) ListByPin(ctx context.Context, pinID int64, limit int) ([]models.Visit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE pin_id = ? ORDER BY visited_at DESC, id DESC LIMIT ?`,
		pinID, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select visits: %w", err)
	}
	defer rows.Close()

	result := []models.Visit{}
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch *models.VisitPatch) (*models.Visit, error) {
	query := `
		UPDATE visits
		SET name = COALESCE(?, name), note = COALESCE(?, note), image_url = COALESCE(?, image_url)
		WHERE id = ?
		RETURNING ` + visitColumns

	row := r.db.QueryRowContext(ctx, query,
		dbx.NullStringPtr(patch.Name), dbx.NullStringPtr(patch.Note), dbx.NullStringPtr(patch.ImageURL), id)
	visit, err := r.scan(row)
	if err != nil {
		return nil, notFound(err, "failed to update visit")
	}
	return visit, nil
}
