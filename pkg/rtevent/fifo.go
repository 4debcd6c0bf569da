package rtevent

import "sync/atomic"

// Fifo is a bounded single-producer/single-consumer ring buffer of
// RtEvent. Capacity is rounded up to the next power of two. Push is
// called from exactly one producer thread, Pop from exactly one
// (possibly different) consumer thread; no other synchronization is
// used or required. Push never blocks and never allocates; it returns
// false when the ring is full. Pop returns false when empty.
//
// Grounded on the atomic read/write index ring in
// justyntemme/vst3go's pkg/dsp/buffer/writeahead.go, generalized from
// a float32 sample ring to a fixed-size RtEvent ring and simplified
// to plain SPSC semantics (no write-ahead latency target, no GC-pause
// absorption: the spec's FIFO exists purely to cross the RT boundary).
type Fifo struct {
	buf  []RtEvent
	mask uint64

	writePos uint64
	readPos  uint64
}

// NewFifo creates a Fifo with room for at least capacity events,
// rounded up to the next power of two.
func NewFifo(capacity int) *Fifo {
	size := nextPowerOfTwo(capacity)
	return &Fifo{
		buf:  make([]RtEvent, size),
		mask: uint64(size - 1),
	}
}

// Push enqueues e. Returns false without blocking if the ring is full.
func (f *Fifo) Push(e RtEvent) bool {
	writePos := atomic.LoadUint64(&f.writePos)
	readPos := atomic.LoadUint64(&f.readPos)
	if writePos-readPos >= uint64(len(f.buf)) {
		return false
	}
	f.buf[writePos&f.mask] = e
	atomic.StoreUint64(&f.writePos, writePos+1)
	return true
}

// Pop dequeues the oldest event. Returns false without blocking if
// the ring is empty.
func (f *Fifo) Pop() (RtEvent, bool) {
	readPos := atomic.LoadUint64(&f.readPos)
	writePos := atomic.LoadUint64(&f.writePos)
	if readPos >= writePos {
		return RtEvent{}, false
	}
	e := f.buf[readPos&f.mask]
	atomic.StoreUint64(&f.readPos, readPos+1)
	return e, true
}

// Empty reports whether the ring currently has no events to pop. It
// is a snapshot, valid only until the next Push/Pop from either side.
func (f *Fifo) Empty() bool {
	return atomic.LoadUint64(&f.readPos) >= atomic.LoadUint64(&f.writePos)
}

// Capacity returns the ring's fixed capacity.
func (f *Fifo) Capacity() int {
	return len(f.buf)
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
