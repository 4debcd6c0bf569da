package receiver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
)

func TestS6WaitForResponseTimesOutWithoutReply(t *testing.T) {
	fifo := rtevent.NewFifo(16)
	r := New(fifo)

	start := time.Now()
	ok := r.WaitForResponse(id.EventID(42), 10*time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.Less(t, elapsed, 100*time.Millisecond)
}

func TestWaitForResponseMatchesOnSuccess(t *testing.T) {
	fifo := rtevent.NewFifo(16)
	r := New(fifo)

	fifo.Push(rtevent.MakeAsyncWorkCompletion(0, 0, id.EventID(7), true))

	ok := r.WaitForResponse(id.EventID(7), 50*time.Millisecond)
	assert.True(t, ok)
}

func TestWaitForResponseNeverStealsAnotherWaitersEntry(t *testing.T) {
	fifo := rtevent.NewFifo(16)
	r := New(fifo)

	fifo.Push(rtevent.MakeAsyncWorkCompletion(0, 0, id.EventID(1), true))

	// Waiting on a different id must not consume id 1's completion.
	ok := r.WaitForResponse(id.EventID(2), 5*time.Millisecond)
	assert.False(t, ok)

	ok = r.WaitForResponse(id.EventID(1), 50*time.Millisecond)
	assert.True(t, ok)
}

func TestPollReturnsNonCompletionEvents(t *testing.T) {
	fifo := rtevent.NewFifo(16)
	r := New(fifo)

	fifo.Push(rtevent.MakeNoteOn(5, 0, 60, 1.0))
	fifo.Push(rtevent.MakeAsyncWorkCompletion(0, 0, id.EventID(3), true))
	fifo.Push(rtevent.MakeNoteOff(5, 1, 60, 0.0))

	e1, ok := r.Poll()
	assert.True(t, ok)
	assert.Equal(t, rtevent.NoteOn, e1.Type())

	e2, ok := r.Poll()
	assert.True(t, ok)
	assert.Equal(t, rtevent.NoteOff, e2.Type())

	_, ok = r.Poll()
	assert.False(t, ok)

	// the completion event is still claimable.
	assert.True(t, r.WaitForResponse(id.EventID(3), 10*time.Millisecond))
}
