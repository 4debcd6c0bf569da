package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompleteInvokesCallbackExactlyOnce(t *testing.T) {
	calls := 0
	var gotSuccess bool
	e := New(ParameterChange, "engine", "osc").WithCompletion(func(_ *Event, success bool) {
		calls++
		gotSuccess = success
	})

	e.Complete(true)
	e.Complete(true)
	e.Complete(false)

	assert.Equal(t, 1, calls)
	assert.True(t, gotSuccess)
}

func TestCompleteWithoutCallbackIsNoOp(t *testing.T) {
	e := New(EngineCommand, "engine", "osc")
	assert.False(t, e.HasCompletion())
	assert.NotPanics(t, func() { e.Complete(true) })
}

func TestNewStampsUniqueIDs(t *testing.T) {
	a := New(Keyboard, "midi", "engine")
	b := New(Keyboard, "midi", "engine")
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestSenderReceiverKindRoundTrip(t *testing.T) {
	e := New(ParameterChange, "rpc", "engine")
	e.ProcessorID = 3
	e.ParameterID = 7
	e.Value = 0.5

	assert.Equal(t, PosterID("rpc"), e.Sender())
	assert.Equal(t, PosterID("engine"), e.Receiver())
	assert.Equal(t, ParameterChange, e.Kind())
}
