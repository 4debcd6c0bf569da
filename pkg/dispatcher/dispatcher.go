// Package dispatcher implements the non-realtime event bus: the sole
// door between control-surface callers, background workers, and the
// RT audio thread (spec.md §4.5). It is grounded on
// dshills/keystorm's internal/event/dispatch.AsyncDispatcher (bounded
// worker-pool queue, graceful Stop, panic recovery, running stats) and
// internal/event.bus (Start/Stop lifecycle, atomic running flag,
// per-call stats), adapted from keystorm's topic-subscription model to
// sushi's point-to-point poster addressing: an Event names its
// PosterID receiver directly instead of matching a topic pattern
// against a subscriber registry.
package dispatcher

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/sushi-go/internal/logx"
	"github.com/justyntemme/sushi-go/pkg/event"
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/receiver"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
)

var (
	// ErrAlreadyRunning is returned by Start on a Dispatcher that has
	// already been started.
	ErrAlreadyRunning = errors.New("dispatcher: already running")
	// ErrNotRunning is returned by Stop, or by SubmitAsyncWork,
	// on a Dispatcher that has not been started or was already stopped.
	ErrNotRunning = errors.New("dispatcher: not running")
	// ErrUnknownPoster is returned by PostEvent when no poster is
	// registered under the event's receiver id.
	ErrUnknownPoster = errors.New("dispatcher: unknown poster")
	// ErrQueueFull is returned when the async worker queue has no room
	// for another job (spec.md's diagnostic "dropped" counters cover
	// this at the engine layer; the dispatcher itself just refuses).
	ErrQueueFull = errors.New("dispatcher: worker queue full")
)

// AsyncWork is a unit of background work submitted through
// SubmitAsyncWork: arbitrary caller code run off a worker goroutine,
// with its result passed to the completion callback given to
// SubmitAsyncWork.
type AsyncWork func(ctx context.Context) (success bool)

type job struct {
	ctx        context.Context
	eventID    id.EventID
	work       AsyncWork
	completion func(success bool)
}

// Dispatcher routes non-RT events between named posters, forwards
// RT-originated events back to their addressed poster, and runs
// ASYNC_WORK jobs on a bounded worker pool (spec.md §4.5).
type Dispatcher struct {
	log *logrus.Entry

	mu      sync.RWMutex
	posters map[event.PosterID]event.Poster

	toRt     *rtevent.Fifo
	fromRt   *receiver.AsyncReceiver
	workerMu sync.Mutex
	queue    chan job
	running  atomic.Bool
	wg       sync.WaitGroup

	queueSize   int
	workerCount int

	enqueued  atomic.Uint64
	processed atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	dropped   atomic.Uint64
}

// New creates a Dispatcher that posts RT-bound events onto toRt and
// forwards RT-originated events drained from fromRt. queueSize and
// workerCount configure the ASYNC_WORK pool; both fall back to sane
// defaults when non-positive.
func New(toRt *rtevent.Fifo, fromRt *receiver.AsyncReceiver, queueSize, workerCount int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if workerCount <= 0 {
		workerCount = 4
	}
	return &Dispatcher{
		log:         logx.New("dispatcher"),
		posters:     make(map[event.PosterID]event.Poster),
		toRt:        toRt,
		fromRt:      fromRt,
		queueSize:   queueSize,
		workerCount: workerCount,
	}
}

// RegisterPoster makes p reachable as the receiver of PostEvent calls
// addressed to p.ID().
func (d *Dispatcher) RegisterPoster(p event.Poster) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.posters[p.ID()] = p
}

// UnregisterPoster removes a previously registered poster.
func (d *Dispatcher) UnregisterPoster(id event.PosterID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.posters, id)
}

// Start starts the ASYNC_WORK worker pool.
func (d *Dispatcher) Start() error {
	d.workerMu.Lock()
	defer d.workerMu.Unlock()
	if d.running.Load() {
		return ErrAlreadyRunning
	}
	d.queue = make(chan job, d.queueSize)
	d.running.Store(true)
	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.log.WithField("workers", d.workerCount).Debug("dispatcher started")
	return nil
}

// Stop stops accepting new async work and waits for in-flight jobs to
// finish, or for ctx to be cancelled first.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.workerMu.Lock()
	if !d.running.Load() {
		d.workerMu.Unlock()
		return ErrNotRunning
	}
	d.running.Store(false)
	close(d.queue)
	d.workerMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PostEvent delivers e synchronously to the poster addressed by
// e.Receiver(). Returns ErrUnknownPoster if no such poster is
// registered. The poster is responsible for calling e.Complete if e
// carries a completion callback.
func (d *Dispatcher) PostEvent(e *event.Event) error {
	d.mu.RLock()
	p, ok := d.posters[e.Receiver()]
	d.mu.RUnlock()
	if !ok {
		return ErrUnknownPoster
	}
	p.Process(e)
	return nil
}

// PostRtEvent pushes e onto the to-RT FIFO for the audio thread to
// consume on its next block. Returns false if the FIFO is full
// (spec.md testable property 6): callers must not block waiting for
// room, matching the RT side's own wait-free contract.
func (d *Dispatcher) PostRtEvent(e rtevent.RtEvent) bool {
	return d.toRt.Push(e)
}

// SubmitAsyncWork enqueues work to run on the worker pool, invoking
// completion with its result once done. Returns ErrNotRunning if the
// pool hasn't been started, ErrQueueFull if the queue has no room.
func (d *Dispatcher) SubmitAsyncWork(ctx context.Context, eventID id.EventID, work AsyncWork, completion func(success bool)) error {
	if !d.running.Load() {
		return ErrNotRunning
	}
	j := job{ctx: ctx, eventID: eventID, work: work, completion: completion}
	select {
	case d.queue <- j:
		d.enqueued.Add(1)
		return nil
	default:
		d.dropped.Add(1)
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.queue {
		d.runJob(j)
	}
}

func (d *Dispatcher) runJob(j job) {
	d.processed.Add(1)
	success := false
	defer func() {
		if r := recover(); r != nil {
			d.panicked.Add(1)
			d.log.WithField("event_id", j.eventID).WithField("stack", string(debug.Stack())).Error("async work panicked")
			success = false
		}
		if success {
			d.succeeded.Add(1)
		} else {
			d.failed.Add(1)
		}
		if j.completion != nil {
			j.completion(success)
		}
	}()

	select {
	case <-j.ctx.Done():
		return
	default:
	}
	success = j.work(j.ctx)
}

// Tick drains RT-originated events not claimed by any WaitForResponse
// caller and forwards each one to its addressed poster. It must be
// called periodically from a non-RT thread (spec.md §4.5's "drains
// the from-RT FIFO at the dispatcher tick"); it never blocks.
func (d *Dispatcher) Tick() {
	for {
		e, ok := d.fromRt.Poll()
		if !ok {
			return
		}
		d.forward(e)
	}
}

func (d *Dispatcher) forward(e rtevent.RtEvent) {
	d.mu.RLock()
	p, ok := d.posters[posterForProcessor(e)]
	d.mu.RUnlock()
	if !ok {
		return
	}
	ev := event.New(kindFor(e), "engine", p.ID())
	ev.ProcessorID = e.ProcessorID()
	if e.Type().IsKeyboard() {
		ev.Note = int32(e.Note())
		ev.Velocity = e.Velocity()
	}
	p.Process(ev)
}

// posterForProcessor is a placeholder routing rule: RT-originated
// events are, absent richer addressing, forwarded to the engine
// poster itself, which owns the processor-id -> owner mapping needed
// to route further. A future control-surface addressing scheme (e.g.
// processor-owner registration) can replace this.
func posterForProcessor(_ rtevent.RtEvent) event.PosterID {
	return "engine"
}

func kindFor(e rtevent.RtEvent) event.Kind {
	if e.Type().IsKeyboard() {
		return event.Keyboard
	}
	return event.EngineCommand
}

// Stats reports point-in-time dispatcher counters, useful for a
// host-control surface diagnostics call.
type Stats struct {
	Enqueued  uint64
	Processed uint64
	Succeeded uint64
	Failed    uint64
	Panicked  uint64
	Dropped   uint64
	QueueSize int
}

// Snapshot returns the current Stats.
func (d *Dispatcher) Snapshot() Stats {
	queueSize := 0
	if d.running.Load() {
		queueSize = len(d.queue)
	}
	return Stats{
		Enqueued:  d.enqueued.Load(),
		Processed: d.processed.Load(),
		Succeeded: d.succeeded.Load(),
		Failed:    d.failed.Load(),
		Panicked:  d.panicked.Load(),
		Dropped:   d.dropped.Load(),
		QueueSize: queueSize,
	}
}
