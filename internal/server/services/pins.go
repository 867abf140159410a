// Package services contains server-side business logic. PinService is the
// persistence facade for pins, visits and categories: it validates input,
// makes sure the schema exists, runs the optimistic concurrency protocol
// and keeps the read cache coherent with every write.
package services

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/pinboard/internal/common"
	"github.com/dmitrijs2005/pinboard/internal/dbx"
	"github.com/dmitrijs2005/pinboard/internal/logging"
	"github.com/dmitrijs2005/pinboard/internal/server/cache"
	"github.com/dmitrijs2005/pinboard/internal/server/config"
	"github.com/dmitrijs2005/pinboard/internal/server/metrics"
	"github.com/dmitrijs2005/pinboard/internal/server/models"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pinboard/internal/server/repositories/visits"
	"github.com/dmitrijs2005/pinboard/internal/server/schema"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

// DefaultCategoryColor is stored when a category is upserted without one.
const DefaultCategoryColor = "#808080"

// Cache key families. A write invalidates whole families by prefix.
const (
	keyPins       = "pins:"
	keyCategories = "categories:"
	keyStats      = "stats"
)

func pinsKey(category string) string {
	if category == "" {
		return keyPins + "all"
	}
	return keyPins + "cat:" + category
}

// PinService implements the pin/visit/category operations on top of the
// backend chosen at startup.
type PinService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	schema      *schema.Manager
	cache       *cache.Cache
	cacheTTL    time.Duration
	logger      logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewPinService wires the facade. The schema is migrated lazily on the first
// operation; c and mx may be shared with other components.
func NewPinService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, c *cache.Cache,
	logger logging.Logger, mx *metrics.Metrics) *PinService {
	return &PinService{
		db:          db,
		repomanager: m,
		schema: schema.NewManager(func(ctx context.Context) error {
			return m.RunMigrations(ctx, db)
		}),
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		logger:   logger.With("module", "pins", "backend", m.Backend()),
		metrics:  mx,
		now:      time.Now,
	}
}

// EnsureSchema migrates the database if no earlier call has succeeded.
func (s *PinService) EnsureSchema(ctx context.Context) error {
	if err := s.schema.EnsureSchema(ctx); err != nil {
		s.logger.Error(ctx, "schema initialisation failed", "error", err)
		return err
	}
	return nil
}

// Ready reports whether the schema has been initialised.
func (s *PinService) Ready() bool {
	return s.schema.Ready()
}

// ListPins returns pins, most recently updated first, optionally filtered by
// category. Results are served from the cache for up to the configured TTL.
func (s *PinService) ListPins(ctx context.Context, category string) ([]models.Pin, error) {
	category = strings.TrimSpace(category)
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	list, err := cached(s, pinsKey(category), func() ([]models.Pin, error) {
		return s.repomanager.Pins(s.db).List(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(list), nil
}

// CreatePin stores a new pin with version 1.
func (s *PinService) CreatePin(ctx context.Context, p *models.NewPin) (*models.Pin, error) {
	in := *p
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	pin, err := s.repomanager.Pins(s.db).Create(ctx, &in, s.now())
	if err != nil {
		return nil, err
	}
	s.invalidate(keyPins, keyStats)
	s.logger.Info(ctx, "pin created", "pin_id", pin.ID, "category", pin.Category)
	return pin, nil
}

// GetPinWithVisits returns the pin and its most recent visits, or
// common.ErrorNotFound.
func (s *PinService) GetPinWithVisits(ctx context.Context, id int64) (*models.PinWithVisits, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	pin, err := s.repomanager.Pins(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.repomanager.Visits(s.db).ListByPin(ctx, id, visits.DefaultListLimit)
	if err != nil {
		return nil, err
	}
	return &models.PinWithVisits{Pin: *pin, Visits: list}, nil
}

// UpdatePin replaces the mutable fields of a pin.
//
// When upd.ExpectedUpdatedAt is set and differs from the stored value the
// pin is left untouched and a *common.ConflictError carrying the stored
// value is returned. The read, the check and the write happen in one
// transaction with the row locked.
func (s *PinService) UpdatePin(ctx context.Context, id int64, upd *models.PinUpdate) (*models.Pin, error) {
	in := *upd
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var pin *models.Pin
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Pins(tx)
		current, err := repo.CurrentUpdatedAt(ctx, id)
		if err != nil {
			return err
		}
		if in.ExpectedUpdatedAt != nil && !timex.Normalize(*in.ExpectedUpdatedAt).Equal(current) {
			return &common.ConflictError{ServerUpdatedAt: current}
		}
		pin, err = repo.Update(ctx, id, &in, current, timex.Next(current, s.now()))
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			s.metrics.Conflict()
			s.logger.Warn(ctx, "pin update conflict", "pin_id", id, "error", err)
		}
		return nil, err
	}

	s.invalidate(keyPins, keyStats)
	s.logger.Info(ctx, "pin updated", "pin_id", pin.ID, "version", pin.Version)
	return pin, nil
}

// DeletePin removes a pin and all of its visits. Deleting an absent pin
// succeeds.
func (s *PinService) DeletePin(ctx context.Context, id int64) error {
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Pins(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(keyPins, keyStats)
	s.logger.Info(ctx, "pin deleted", "pin_id", id)
	return nil
}

// AddVisit records a visit and bumps the owning pin's version and
// updated_at in the same transaction. An absent pin yields
// common.ErrorNotFound.
func (s *PinService) AddVisit(ctx context.Context, pinID int64, v *models.NewVisit) (*models.Visit, error) {
	in := *v
	in.Name = strings.TrimSpace(in.Name)
	in.Note = strings.TrimSpace(in.Note)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var visit *models.Visit
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		prev, err := s.repomanager.Pins(tx).CurrentUpdatedAt(ctx, pinID)
		if err != nil {
			return err
		}
		now := s.now()
		visitedAt := now
		if in.VisitedAt != nil {
			visitedAt = *in.VisitedAt
		}
		visit, err = s.repomanager.Visits(tx).Create(ctx, pinID, &in, visitedAt)
		if err != nil {
			return err
		}
		return s.repomanager.Pins(tx).Touch(ctx, pinID, prev, timex.Next(prev, now))
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(keyPins, keyStats)
	s.logger.Info(ctx, "visit added", "pin_id", pinID, "visit_id", visit.ID)
	return visit, nil
}

// UpdateVisit applies a partial update to a visit and bumps the owning pin.
// An absent visit yields common.ErrorNotFound.
func (s *PinService) UpdateVisit(ctx context.Context, id int64, patch *models.VisitPatch) (*models.Visit, error) {
	in := models.VisitPatch{
		Name:     trimPtr(patch.Name),
		Note:     trimPtr(patch.Note),
		ImageURL: trimPtr(patch.ImageURL),
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var visit *models.Visit
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		vrepo := s.repomanager.Visits(tx)
		existing, err := vrepo.Get(ctx, id)
		if err != nil {
			return err
		}
		prepo := s.repomanager.Pins(tx)
		prev, err := prepo.CurrentUpdatedAt(ctx, existing.PinID)
		if err != nil {
			return err
		}
		visit, err = vrepo.Update(ctx, id, &in)
		if err != nil {
			return err
		}
		return prepo.Touch(ctx, existing.PinID, prev, timex.Next(prev, s.now()))
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(keyPins)
	s.logger.Info(ctx, "visit updated", "pin_id", visit.PinID, "visit_id", visit.ID)
	return visit, nil
}

// ListCategories returns the category palette ordered by name.
func (s *PinService) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	list, err := cached(s, keyCategories+"all", func() ([]models.Category, error) {
		return s.repomanager.Categories(s.db).List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(list), nil
}

// UpsertCategory creates a category or replaces its color.
func (s *PinService) UpsertCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	in := models.Category{Name: strings.TrimSpace(c.Name), Color: strings.TrimSpace(c.Color)}
	if in.Color == "" {
		in.Color = DefaultCategoryColor
	}
	if err := models.Validate(in); err != nil {
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	out, err := s.repomanager.Categories(s.db).Upsert(ctx, &in)
	if err != nil {
		return nil, err
	}
	s.invalidate(keyCategories, keyStats)
	return out, nil
}

// Stats summarises pins and visits per category.
func (s *PinService) Stats(ctx context.Context) (*models.Stats, error) {
	if err := s.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	st, err := cached(s, keyStats, func() (*models.Stats, error) {
		return s.repomanager.Pins(s.db).Stats(ctx)
	})
	if err != nil {
		return nil, err
	}
	out := *st
	out.ByCategory = slices.Clone(st.ByCategory)
	return &out, nil
}

func (s *PinService) invalidate(prefixes ...string) {
	for _, p := range prefixes {
		s.cache.InvalidatePrefix(p)
	}
}

// cached serves key from the cache or loads and stores it. Load errors are
// never cached.
func cached[T any](s *PinService, key string, load func() (T, error)) (T, error) {
	if v, ok := s.cache.Get(key, s.cacheTTL); ok {
		if t, ok := v.(T); ok {
			s.metrics.CacheHit()
			return t, nil
		}
	}
	s.metrics.CacheMiss()
	t, err := load()
	if err != nil {
		return t, err
	}
	s.cache.Set(key, t)
	return t, nil
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
