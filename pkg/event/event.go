// Package event implements the non-realtime Event record and the
// Poster interface used by the event dispatcher (spec.md §3, §4.5).
// Unlike rtevent.RtEvent, an Event is heap-allocated and carries
// whatever payload its Kind needs; it never crosses into the RT
// domain directly (code that must reach the audio thread, such as
// pkg/host, builds an rtevent.RtEvent itself and posts it onto the
// to-RT FIFO with the dispatcher's PostRtEvent).
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/justyntemme/sushi-go/pkg/id"
)

// PosterID names a participant on the non-RT event bus: the engine
// itself, the OSC frontend, the MIDI dispatcher, the RPC layer, or any
// other component that can send and/or receive events.
type PosterID string

// Kind identifies which payload fields of an Event are meaningful.
type Kind int

const (
	Keyboard Kind = iota
	ParameterChange
	EngineCommand
	AsyncCompletion
)

// CompletionCallback is invoked exactly once by whatever poster
// processes an Event that was posted with one set, when that work
// finishes (possibly much later, e.g. after a worker-pool job or an
// RT round-trip).
type CompletionCallback func(e *Event, success bool)

// Event is a heap-allocated, polymorphic-by-Kind record delivered
// through the dispatcher's non-RT bus.
type Event struct {
	id         id.EventID
	sender     PosterID
	receiver   PosterID
	sentAt     time.Time
	kind       Kind
	completion CompletionCallback
	completed  bool

	// Keyboard payload
	TrackName string
	NoteOn    bool
	Note      int32
	Velocity  float32

	// ParameterChange payload
	ProcessorID id.ObjectID
	ParameterID id.ObjectID
	Value       float32

	// EngineCommand payload
	Command string
	Args    []string

	// AsyncCompletion payload
	OriginalEventID id.EventID
	Success         bool
}

// New allocates an Event of the given kind, addressed from sender to
// receiver, stamped with the current time and a fresh EventID.
func New(kind Kind, sender, receiver PosterID) *Event {
	return &Event{
		id:       id.NewEvent(),
		sender:   sender,
		receiver: receiver,
		sentAt:   time.Now(),
		kind:     kind,
	}
}

// ID returns the event's EventID, used to match a later completion or
// reply to this request.
func (e *Event) ID() id.EventID { return e.id }

// Sender returns the poster that created this event.
func (e *Event) Sender() PosterID { return e.sender }

// Receiver returns the poster this event is addressed to.
func (e *Event) Receiver() PosterID { return e.receiver }

// SentAt returns when the event was constructed.
func (e *Event) SentAt() time.Time { return e.sentAt }

// Kind returns which payload fields are meaningful.
func (e *Event) Kind() Kind { return e.kind }

// WithCompletion attaches a completion callback, to be invoked exactly
// once by whichever poster processes this event.
func (e *Event) WithCompletion(cb CompletionCallback) *Event {
	e.completion = cb
	return e
}

// HasCompletion reports whether a completion callback was attached.
func (e *Event) HasCompletion() bool { return e.completion != nil }

// Complete invokes the attached completion callback exactly once. A
// second call is a no-op, matching the spec's "invoking it exactly
// once" contract even if a receiver calls Complete defensively more
// than once.
func (e *Event) Complete(success bool) {
	if e.completion == nil || e.completed {
		return
	}
	e.completed = true
	e.completion(e, success)
}

// Poster is a named participant on the non-RT event bus.
type Poster interface {
	// ID returns this poster's PosterID.
	ID() PosterID
	// Process handles an event addressed to this poster. If the event
	// carries a completion callback, Process (or code it hands the
	// event to asynchronously) is responsible for calling e.Complete
	// exactly once.
	Process(e *Event)
}

// NewCorrelationTag returns an opaque string suitable for correlating
// an Event with an external protocol's own request id (e.g. an RPC
// call), independent of the internal EventID counter, which must stay
// a plain allocation-free integer so it can also be read from
// RT-adjacent code paths.
func NewCorrelationTag() string {
	return uuid.NewString()
}
