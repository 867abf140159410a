package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

// SQLiteRepository implements Repository for the embedded SQLite store.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Category, error) {
	return list(ctx, r.db)
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Category) (*models.Category, error) {
	var out models.Category
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, color) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET color = excluded.color
		RETURNING name, color`, c.Name, c.Color).Scan(&out.Name, &out.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}
	return &out, nil
}
