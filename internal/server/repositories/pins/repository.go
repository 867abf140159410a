// Package pins provides the PostgreSQL and SQLite repositories for pins.
// Both implement Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
package pins

import (
	"context"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

// Repository is the storage contract for pins.
//
// Update and Touch are conditional on prev, the updated_at value the caller
// read (normally under a lock) in the same transaction; when it no longer
// matches they return common.ErrVersionConflict. Missing pins yield
// common.ErrorNotFound.
type Repository interface {
	List(ctx context.Context, category string) ([]models.Pin, error)
	Create(ctx context.Context, p *models.NewPin, now time.Time) (*models.Pin, error)
	Get(ctx context.Context, id int64) (*models.Pin, error)
	CurrentUpdatedAt(ctx context.Context, id int64) (time.Time, error)
	Update(ctx context.Context, id int64, upd *models.PinUpdate, prev, next time.Time) (*models.Pin, error)
	Touch(ctx context.Context, id int64, prev, next time.Time) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.Stats, error)
}

const pinColumns = `id, title, description, lat, lng, category, image_url, created_at, updated_at, version, visits_count`

const statsQuery = `
	SELECT p.category, COALESCE(c.color, ''), COUNT(*), COALESCE(SUM(p.visits_count), 0)
	FROM pins p LEFT JOIN categories c ON c.name = p.category
	GROUP BY p.category, c.color
	ORDER BY p.category
`
