package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

// PostgresRepository implements Repository for PostgreSQL.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all categories ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]models.Category, error) {
	return list(ctx, r.db)
}

// Upsert inserts the category or replaces the color of an existing one.
func (r *PostgresRepository) Upsert(ctx context.Context, c *models.Category) (*models.Category, error) {
	var out models.Category
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, color) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET color = EXCLUDED.color
		RETURNING name, color`, c.Name, c.Color).Scan(&out.Name, &out.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert category: %w", err)
	}
	return &out, nil
}
