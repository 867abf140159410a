// Package schema guarantees the storage schema exists before the first query
// of the process, running the migrations at most once per successful attempt.
package schema

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// MigrateFunc creates or upgrades the schema. It must be idempotent.
type MigrateFunc func(ctx context.Context) error

// Manager runs MigrateFunc lazily. Concurrent first callers share one
// in-flight run; success is latched for the rest of the process lifetime,
// failure is not, so the next caller retries from scratch.
type Manager struct {
	migrate MigrateFunc
	group   singleflight.Group
	done    atomic.Bool
}

// NewManager returns a Manager that has not run yet.
func NewManager(migrate MigrateFunc) *Manager {
	return &Manager{migrate: migrate}
}

// EnsureSchema returns once the schema is in place or the shared attempt
// failed.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	if m.done.Load() {
		return nil
	}
	_, err, _ := m.group.Do("schema", func() (any, error) {
		if m.done.Load() {
			return nil, nil
		}
		// shared by every waiter, so one caller's cancellation must not end it
		if err := m.migrate(context.WithoutCancel(ctx)); err != nil {
			return nil, err
		}
		m.done.Store(true)
		return nil, nil
	})
	return err
}

// Ready reports whether a previous EnsureSchema call succeeded.
func (m *Manager) Ready() bool {
	return m.done.Load()
}
