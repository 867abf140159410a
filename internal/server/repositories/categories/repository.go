// Package categories stores the category palette.
package categories

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.Category, error)
	Upsert(ctx context.Context, c *models.Category) (*models.Category, error)
}

func list(ctx context.Context, db dbx.DBTX) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to select categories: %w", err)
	}
	defer rows.Close()

	result := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.Name, &c.Color); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
