package rtevent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/id"
)

func TestCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	f := NewFifo(5)
	assert.Equal(t, 8, f.Capacity())
}

func TestPushPopOrder(t *testing.T) {
	f := NewFifo(4)
	e1 := MakeNoteOn(1, 0, 60, 1.0)
	e2 := MakeNoteOn(1, 1, 61, 1.0)
	require.True(t, f.Push(e1))
	require.True(t, f.Push(e2))

	got1, ok := f.Pop()
	require.True(t, ok)
	assert.EqualValues(t, 60, got1.Note())

	got2, ok := f.Pop()
	require.True(t, ok)
	assert.EqualValues(t, 61, got2.Note())
}

func TestBackpressure(t *testing.T) {
	f := NewFifo(4) // capacity 4
	for i := 0; i < 4; i++ {
		require.True(t, f.Push(MakeStopEngine(0)))
	}
	assert.False(t, f.Push(MakeStopEngine(0)), "5th push into a full ring of capacity 4 must fail")

	_, ok := f.Pop()
	require.True(t, ok)
	assert.True(t, f.Push(MakeStopEngine(0)), "push must succeed again after one pop")
}

func TestPopOnEmpty(t *testing.T) {
	f := NewFifo(4)
	_, ok := f.Pop()
	assert.False(t, ok)
}

func TestConcurrentSPSC(t *testing.T) {
	f := NewFifo(1024)
	const n = 100000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := int32(0); i < n; i++ {
			for !f.Push(MakeParameterChange(id.ObjectID(1), 0, id.ObjectID(2), float32(i))) {
			}
		}
	}()

	received := make([]float32, 0, n)
	go func() {
		defer wg.Done()
		for len(received) < n {
			if e, ok := f.Pop(); ok {
				received = append(received, e.Value())
			}
		}
	}()

	wg.Wait()
	require.Len(t, received, n)
	for i, v := range received {
		assert.Equal(t, float32(i), v)
	}
}
