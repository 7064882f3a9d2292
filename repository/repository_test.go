package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults kick in", 0, 0, 1, 10},
		{"negative page becomes first", -3, 20, 1, 20},
		{"limit capped at 100", 2, 500, 2, 100},
		{"valid values pass through", 3, 25, 3, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, limit := clampPage(tc.page, tc.limit)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 10))
	assert.Equal(t, 1, totalPages(1, 10))
	assert.Equal(t, 1, totalPages(10, 10))
	assert.Equal(t, 2, totalPages(11, 10))
	assert.Equal(t, 5, totalPages(41, 10))
}

func TestParseID(t *testing.T) {
	t.Run("valid hex id", func(t *testing.T) {
		_, err := parseID("65f000000000000000000001")
		assert.NoError(t, err)
	})

	t.Run("malformed id maps to not found", func(t *testing.T) {
		_, err := parseID("not-an-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id maps to not found", func(t *testing.T) {
		_, err := parseID("")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Missing: []string{"childName", "description"}}
	assert.Equal(t, "missing required fields: childName, description", err.Error())
	assert.True(t, IsValidation(err))

	reason := invalid("childAge must be between 0 and 18, got %d", 30)
	require.Error(t, reason)
	assert.True(t, IsValidation(reason))
	assert.False(t, IsValidation(ErrNotFound))
}
