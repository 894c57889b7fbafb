package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrValidation, "file too large")
	require.Equal(t, "file too large", clone.Message)
	require.Equal(t, ErrValidation.Status, clone.Status)
	assert.True(t, stdErrors.Is(clone, ErrValidation))
	assert.False(t, stdErrors.Is(clone, ErrNotFound))
	assert.Equal(t, "validation failed", ErrValidation.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	require.Equal(t, http.StatusInternalServerError, err.Status)
	require.Equal(t, ErrInternal.Code, err.Code)
	require.Contains(t, err.Error(), "boom")

	wrapped := fmt.Errorf("outer: %w", ErrUnauthorized)
	assert.Same(t, ErrUnauthorized, FromError(wrapped))
	assert.Nil(t, FromError(nil))
}
