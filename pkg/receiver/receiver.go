// Package receiver implements the synchronous wait-for-response
// wrapper around the RT-to-non-RT reply FIFO. Grounded on
// original_source/src/engine/receiver.h (AsynchronousEventReceiver):
// a std::vector of {id, status} nodes for entries a caller hasn't
// claimed yet, and a polling wait loop, ported to Go with a mutex
// standing in for the single-consumer discipline the FIFO itself
// otherwise assumes (many control-thread callers may call
// WaitForResponse concurrently against the one shared receiver; the
// mutex serializes their access to the FIFO's one true consumer role,
// it does not add a second consumer).
package receiver

import (
	"sync"
	"time"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
)

// pollInterval is how often WaitForResponse re-checks the FIFO while
// waiting. The spec does not mandate condition-variable wakeup; a
// short poll keeps the RT side wait-free (spec.md §4.6).
const pollInterval = 200 * time.Microsecond

type node struct {
	id      id.EventID
	success bool
}

// AsyncReceiver is the sole consumer of one from-RT rtevent.Fifo. It
// splits the events it drains into ASYNC_WORK_COMPLETION_NOTIFICATION
// records (held for WaitForResponse callers) and every other kind
// (held for Poll, used by the dispatcher to forward RT-originated
// events to their non-RT receiver).
type AsyncReceiver struct {
	mu       sync.Mutex
	fifo     *rtevent.Fifo
	pending  []node
	overflow []rtevent.RtEvent
}

// New wraps fifo. fifo must have exactly one producer (the audio
// thread) and this AsyncReceiver as its only consumer.
func New(fifo *rtevent.Fifo) *AsyncReceiver {
	return &AsyncReceiver{fifo: fifo}
}

// WaitForResponse blocks the calling thread until a completion for
// eventID appears within timeout. Returns true iff a completion for
// exactly this eventID arrives with success status before the
// deadline; entries destined for other, unrelated eventIDs are never
// consumed by a call waiting on a different id (spec.md §8 property 7)
// — they remain in pending for whoever asks for them.
func (r *AsyncReceiver) WaitForResponse(eventID id.EventID, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		r.mu.Lock()
		r.overflow = append(r.overflow, r.drainLocked()...)
		found, success := r.claimLocked(eventID)
		r.mu.Unlock()
		if found {
			return success
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// TryClaim makes one non-blocking attempt to find a completion for
// eventID, draining whatever is currently queued in the FIFO first.
// Used by the dispatcher's tick, which must never block the thread
// that also has to keep polling other posters and never applies a
// caller's timeout of its own.
func (r *AsyncReceiver) TryClaim(eventID id.EventID) (found, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overflow = append(r.overflow, r.drainLocked()...)
	return r.claimLocked(eventID)
}

// Poll returns the oldest RT-originated event that is not an async
// completion, for the dispatcher to deliver to a non-RT poster.
// Returns false if none is currently available.
func (r *AsyncReceiver) Poll() (rtevent.RtEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.overflow) == 0 {
		r.overflow = append(r.overflow, r.drainLocked()...)
	}
	if len(r.overflow) == 0 {
		return rtevent.RtEvent{}, false
	}
	e := r.overflow[0]
	r.overflow = r.overflow[1:]
	return e, true
}

// drainLocked pulls every event currently queued in the FIFO,
// stashing async completions into pending and returning every other
// kind. Caller must hold r.mu.
func (r *AsyncReceiver) drainLocked() []rtevent.RtEvent {
	var other []rtevent.RtEvent
	for {
		e, ok := r.fifo.Pop()
		if !ok {
			break
		}
		if e.Type() == rtevent.AsyncWorkCompletion {
			r.pending = append(r.pending, node{id: e.EventID(), success: e.Success()})
			continue
		}
		other = append(other, e)
	}
	return other
}

// claimLocked removes and returns the pending completion for
// eventID, if any. Caller must hold r.mu.
func (r *AsyncReceiver) claimLocked(eventID id.EventID) (found, success bool) {
	for i, n := range r.pending {
		if n.id == eventID {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return true, n.success
		}
	}
	return false, false
}
