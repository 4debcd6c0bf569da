package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewObjectIsMonotonicAndUnique(t *testing.T) {
	seen := make(map[ObjectID]bool)
	var prev ObjectID
	for i := 0; i < 1000; i++ {
		got := NewObject()
		assert.False(t, seen[got], "id reused")
		assert.Greater(t, got, prev)
		seen[got] = true
		prev = got
	}
}

func TestNewEventIsMonotonicAndUnique(t *testing.T) {
	seen := make(map[EventID]bool)
	var prev EventID
	for i := 0; i < 1000; i++ {
		got := NewEvent()
		assert.False(t, seen[got])
		assert.Greater(t, got, prev)
		seen[got] = true
		prev = got
	}
}
