package source

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/baby636/removeddit/internal/model"
)

func TestOldest(t *testing.T) {
	assert.Equal(t, int64(0), Oldest(nil))
	assert.Equal(t, int64(100), Oldest([]model.Comment{
		{ID: "a", CreatedUTC: 300},
		{ID: "b", CreatedUTC: 100},
		{ID: "c", CreatedUTC: 200},
	}))
}

func TestHelpURL(t *testing.T) {
	base := errors.New("too many requests")
	err := fmt.Errorf("fetch batch: %w", WithHelp(base, "https://example.org/help"))

	assert.Equal(t, "https://example.org/help", HelpURL(err))
	assert.ErrorIs(t, err, base)
	assert.Empty(t, HelpURL(base))
	assert.Equal(t, base, WithHelp(base, ""))
	assert.NoError(t, WithHelp(nil, "https://example.org/help"))
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Code: 429, Body: "slow down"}
	assert.True(t, err.RateLimited())
	assert.Equal(t, "unexpected status 429: slow down", err.Error())
	assert.False(t, (&StatusError{Code: 500}).RateLimited())
}
