// Package common defines sentinel errors shared by the storage, service and
// transport layers of the pinboard server. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrVersionConflict = errors.New("version conflict")

	// Input rejected before reaching the storage layer.
	ErrorValidation = errors.New("validation error")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Object storage is not configured.
	ErrorStorageDisabled = errors.New("object storage disabled")
)

// ConflictError reports an optimistic-concurrency mismatch on a pin update.
// ServerUpdatedAt is the authoritative timestamp the caller should re-read.
type ConflictError struct {
	ServerUpdatedAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: server updated at %s", ErrVersionConflict, e.ServerUpdatedAt.Format(time.RFC3339Nano))
}

// Is makes errors.Is(err, ErrVersionConflict) hold for every ConflictError.
func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// ValidationError wraps ErrorValidation with a human-readable reason.
func ValidationError(reason string) error {
	return fmt.Errorf("%w: %s", ErrorValidation, reason)
}
