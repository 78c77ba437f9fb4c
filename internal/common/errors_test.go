package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialCascadeError_IsAndAs(t *testing.T) {
	pe := &PartialCascadeError{OwnerID: "u1", OldPath: "a", NewPath: "b", Rebased: 2, Failed: []string{"x"}}
	wrapped := fmt.Errorf("rename folder: %w", pe)

	assert.ErrorIs(t, wrapped, ErrPartialCascade)
	assert.NotErrorIs(t, wrapped, ErrNotFound)

	var got *PartialCascadeError
	require.True(t, errors.As(wrapped, &got))
	assert.Equal(t, "b", got.NewPath)
	assert.Contains(t, got.Error(), "2 rebased, 1 failed")
}

func TestMultiWrap_MatchesBothSentinels(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("db error: %w: %w", ErrStoreUnavailable, cause)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}
