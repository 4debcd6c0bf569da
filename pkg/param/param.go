// Package param implements the parameter model: immutable descriptors,
// single-writer atomic values, and pre-processors that turn a raw
// control-thread write into the processed value the audio thread
// reads. Grounded on justyntemme/vst3go's pkg/framework/param
// (parameter.go's atomic-value-behind-a-descriptor shape, builders.go's
// named-preprocessor idea) and pkg/dsp/gain.go for the dB<->linear
// conversion used by DbToLinear.
package param

import (
	"math"
	"sync/atomic"

	"github.com/justyntemme/sushi-go/pkg/id"
)

// PreProcessor turns a raw value written by a control thread into the
// processed value published for the audio thread to read. It is a
// pure function with no shared state, owned by the Descriptor it is
// attached to (lifetime = the owning processor's lifetime).
type PreProcessor interface {
	Process(raw float32) float32
}

// Clamp is a PreProcessor that restricts raw to [Min, Max].
type Clamp struct {
	Min, Max float32
}

func (c Clamp) Process(raw float32) float32 {
	if raw < c.Min {
		return c.Min
	}
	if raw > c.Max {
		return c.Max
	}
	return raw
}

// DbToLinear is a PreProcessor that clamps raw to [Min, Max] decibels
// and converts it to a linear amplitude factor. Min is treated as
// -infinity dB (linear 0) when raw is at or below it.
type DbToLinear struct {
	Min, Max float32
}

func (d DbToLinear) Process(raw float32) float32 {
	if raw < d.Min {
		raw = d.Min
	}
	if raw > d.Max {
		raw = d.Max
	}
	if raw <= d.Min {
		return 0
	}
	return float32(math.Pow(10.0, float64(raw)/20.0))
}

// Descriptor is the immutable definition of one parameter, registered
// once by a processor before it enters the live graph.
type Descriptor struct {
	ID           id.ObjectID
	ShortName    string
	DisplayName  string
	Default      float32
	Min          float32
	Max          float32
	PreProcessor PreProcessor
}

// Value is the live, single-writer atomic backing store for one
// parameter. Control threads call Set with a raw value; the audio
// thread calls Get and observes the most recently published processed
// value, never a torn read (relaxed/atomic float32-as-uint32 store).
type Value struct {
	desc    Descriptor
	current atomic.Uint32
}

// NewValue creates a Value for desc, initialized to the pre-processed
// default.
func NewValue(desc Descriptor) *Value {
	v := &Value{desc: desc}
	v.current.Store(math.Float32bits(desc.processDefault()))
	return v
}

func (d Descriptor) processDefault() float32 {
	if d.PreProcessor == nil {
		return d.Default
	}
	return d.PreProcessor.Process(d.Default)
}

// Descriptor returns the parameter's immutable descriptor.
func (v *Value) Descriptor() Descriptor { return v.desc }

// Set applies the descriptor's pre-processor to raw and publishes the
// result. Safe to call from any single control thread; concurrent
// Set calls from multiple threads on the same Value are not supported
// (each parameter has exactly one writer per spec.md §3).
func (v *Value) Set(raw float32) {
	processed := raw
	if v.desc.PreProcessor != nil {
		processed = v.desc.PreProcessor.Process(raw)
	}
	v.current.Store(math.Float32bits(processed))
}

// Get returns the most recently published processed value. Safe to
// call from the audio thread.
func (v *Value) Get() float32 {
	return math.Float32frombits(v.current.Load())
}
