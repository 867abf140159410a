package visits

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

func (r *PostgresRepository) scan(row dbx.Scanner) (*models.Visit, error) {
	var t time.Time
	return scanVisit(row, &t, func() (time.Time, error) { return timex.Normalize(t), nil })
}

// Create inserts a visit for pinID.
func (r *PostgresRepository) Create(ctx context.Context, pinID int64, v *models.NewVisit, visitedAt time.Time) (*models.Visit, error) {
	query := `
		INSERT INTO visits (pin_id, name, note, image_url, visited_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + visitColumns

	row := r.db.QueryRowContext(ctx, query,
		pinID, v.Name, dbx.NullString(v.Note), dbx.NullString(v.ImageURL), timex.Normalize(visitedAt))
	visit, err := r.scan(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}
	return visit, nil
}

// Get returns one visit or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Visit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = $1`, id)
	visit, err := r.scan(row)
	if err != nil {
		return nil, notFound(err, "failed to select visit")
	}
	return visit, nil
}

// ListByPin returns the most recent visits of a pin, newest first.
func (r *PostgresRepository) ListByPin(ctx context.Context, pinID int64, limit int) ([]models.Visit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+visitColumns+` FROM visits WHERE pin_id = $1 ORDER BY visited_at DESC, id DESC LIMIT $2`,
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

// Update overwrites the non-nil fields of patch.
func (r *PostgresRepository) Update(ctx context.Context, id int64, patch *models.VisitPatch) (*models.Visit, error) {
	query := `
		UPDATE visits
		SET name = COALESCE($1, name), note = COALESCE($2, note), image_url = COALESCE($3, image_url)
		WHERE id = $4
		RETURNING ` + visitColumns

	row := r.db.QueryRowContext(ctx, query,
		dbx.NullStringPtr(patch.Name), dbx.NullStringPtr(patch.Note), dbx.NullStringPtr(patch.ImageURL), id)
	visit, err := r.scan(row)
	if err != nil {
		return nil, notFound(err, "failed to update visit")
	}
	return visit, nil
}
