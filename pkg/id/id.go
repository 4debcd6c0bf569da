// Package id allocates the two identifier kinds used across the engine:
// ObjectId for processors, tracks and parameters, and EventId for
// non-realtime events awaiting a reply. Both are monotonically
// increasing counters, never reused within a process.
package id

import "sync/atomic"

// ObjectID opaquely identifies a processor, track or parameter. The zero
// value is never handed out by NewObject and can be used as "no object".
type ObjectID uint32

// EventID opaquely identifies a non-realtime event for request/response
// matching between a poster and the async receiver that waits on it.
type EventID uint64

var (
	objectCounter uint32
	eventCounter  uint64
)

// NewObject returns the next process-wide unique ObjectID.
func NewObject() ObjectID {
	return ObjectID(atomic.AddUint32(&objectCounter, 1))
}

// NewEvent returns the next process-wide unique EventID.
func NewEvent() EventID {
	return EventID(atomic.AddUint64(&eventCounter, 1))
}

// Invalid is the sentinel ObjectID meaning "no object".
const Invalid ObjectID = 0
