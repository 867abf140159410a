package common

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictError_IsVersionConflict(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	err := fmt.Errorf("update pin: %w", &ConflictError{ServerUpdatedAt: ts})

	assert.True(t, errors.Is(err, ErrVersionConflict))
	assert.False(t, errors.Is(err, ErrorNotFound))

	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.True(t, ce.ServerUpdatedAt.Equal(ts))
	assert.Contains(t, err.Error(), "2024-05-01T10:00:00Z")
}

func TestValidationError(t *testing.T) {
	err := ValidationError("title is required")
	assert.True(t, errors.Is(err, ErrorValidation))
	assert.Equal(t, "validation error: title is required", err.Error())
}
