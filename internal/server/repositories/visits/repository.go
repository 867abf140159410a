// Package visits stores the visits recorded against pins. Visit rows never
// bump their pin themselves; the pin service does that in the same
// transaction, and the visits_count counter is kept by database triggers.
package visits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
)

// DefaultListLimit caps how many visits ListByPin returns when asked for
// a non-positive limit.
const DefaultListLimit = 50

type Repository interface {
	Create(ctx context.Context, pinID int64, v *models.NewVisit, visitedAt time.Time) (*models.Visit, error)
	Get(ctx context.Context, id int64) (*models.Visit, error)
	ListByPin(ctx context.Context, pinID int64, limit int) ([]models.Visit, error)
	Update(ctx context.Context, id int64, patch *models.VisitPatch) (*models.Visit, error)
}

const visitColumns = `id, pin_id, name, note, image_url, visited_at`

func scanVisit(row dbx.Scanner, visitedAt any, decode func() (time.Time, error)) (*models.Visit, error) {
	var (
		v           models.Visit
		note, image sql.NullString
	)
	if err := row.Scan(&v.ID, &v.PinID, &v.Name, &note, &image, visitedAt); err != nil {
		return nil, err
	}
	t, err := decode()
	if err != nil {
		return nil, fmt.Errorf("visited_at: %w", err)
	}
	v.VisitedAt = t
	v.Note = note.String
	v.ImageURL = image.String
	return &v, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
