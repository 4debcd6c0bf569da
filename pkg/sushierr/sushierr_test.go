package sushierr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOkOnlyForOK(t *testing.T) {
	assert.True(t, OK.Ok())
	assert.False(t, Error.Ok())
	assert.False(t, InvalidTrackName.Ok())
}

func TestErrRoundTrip(t *testing.T) {
	assert.Nil(t, OK.Err())

	wrapped := fmt.Errorf("creating track: %w", InvalidTrackName.Err())
	code, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, InvalidTrackName, code)
}

func TestAsOnPlainError(t *testing.T) {
	code, ok := As(fmt.Errorf("boom"))
	assert.False(t, ok)
	assert.Equal(t, Error, code)
}

func TestStringKnownValues(t *testing.T) {
	assert.Equal(t, "QUEUE_FULL", QueueFull.String())
	assert.Equal(t, "OK", OK.String())
}
