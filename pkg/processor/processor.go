// Package processor defines the Processor contract every audio unit
// implements — internal DSP units, external plugin wrappers, and
// tracks themselves. Grounded on justyntemme/vst3go's pkg/plugin
// (plugin.go's Processor interface) and pkg/framework/plugin
// (processor.go's BaseProcessor embeddable default), generalized from
// VST3's fixed stereo/mono bus model to the spec's explicit
// max/current channel-count negotiation (spec.md §4.2).
package processor

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// EventOutput is the non-owning back-reference a processor uses to
// publish an RtEvent upstream (spec.md §4.2 set_event_output). Tracks
// implement this to receive events from the processors they own; the
// engine implements it for top-level tracks. The sink is a relation
// only: the processor never owns it and it always outlives the
// processor by construction (spec.md §9).
type EventOutput interface {
	OutputEvent(e rtevent.RtEvent)
}

// Processor is the capability set every audio unit implements. Tracks
// satisfy this interface too (spec.md §4.3: "A Track is itself a
// Processor").
type Processor interface {
	// ID returns the processor's process-wide unique identifier.
	ID() id.ObjectID
	// Name returns the processor's optional human name, or "" if unset.
	Name() string
	// SetName sets the processor's human name.
	SetName(name string)

	// MaxInputChannels and MaxOutputChannels advertise the hard
	// ceilings this processor can ever run at.
	MaxInputChannels() int
	MaxOutputChannels() int

	// InputChannels and OutputChannels report the currently negotiated
	// channel counts.
	InputChannels() int
	OutputChannels() int

	// SetInputChannels and SetOutputChannels accept a channel-config
	// change. n must be <= the corresponding Max*Channels.
	SetInputChannels(n int)
	SetOutputChannels(n int)

	// Init performs one-time, possibly-allocating setup at the given
	// sample rate. Called once before the processor enters the live
	// graph.
	Init(sampleRate float64) sushierr.Code

	// Configure performs idempotent reconfiguration, e.g. on sample
	// rate change. May allocate; never called from the audio thread.
	Configure(sampleRate float64)

	// ProcessAudio is real-time: it must not allocate, block, or
	// perform syscalls. in.ChannelCount() == InputChannels(), and
	// likewise for out.
	ProcessAudio(in, out *sample.Buffer)

	// ProcessEvent is real-time: called before/between audio
	// processing within a block.
	ProcessEvent(e rtevent.RtEvent)

	// SetEventOutput installs the back-pointer used to publish RtEvents
	// upstream.
	SetEventOutput(sink EventOutput)

	// SetBypassed enables or disables bypass. The default
	// implementation passes input through unchanged; overrides may
	// implement soft bypass.
	SetBypassed(bypassed bool)
	// Bypassed reports the current bypass state.
	Bypassed() bool

	// Parameters returns the processor's owned parameter table.
	Parameters() *param.Registry
}

// Base provides the default implementation of every Processor method
// that does not need per-processor specialization. Concrete
// processors embed Base and override ProcessAudio, ProcessEvent, and
// (rarely) SetInputChannels/SetOutputChannels/SetBypassed for soft
// bypass or internal buffer remapping.
type Base struct {
	id                 id.ObjectID
	name               string
	maxInputChannels   int
	maxOutputChannels  int
	currentInputChans  int
	currentOutputChans int
	bypassed           bool
	eventOutput        EventOutput
	params             *param.Registry
}

// NewBase constructs a Base with the given channel ceilings. Both
// current channel counts start equal to the corresponding maximum.
func NewBase(maxInputChannels, maxOutputChannels int) *Base {
	return &Base{
		id:                 id.NewObject(),
		maxInputChannels:   maxInputChannels,
		maxOutputChannels:  maxOutputChannels,
		currentInputChans:  maxInputChannels,
		currentOutputChans: maxOutputChannels,
		params:             param.NewRegistry(),
	}
}

func (b *Base) ID() id.ObjectID   { return b.id }
func (b *Base) Name() string      { return b.name }
func (b *Base) SetName(n string)  { b.name = n }
func (b *Base) MaxInputChannels() int  { return b.maxInputChannels }
func (b *Base) MaxOutputChannels() int { return b.maxOutputChannels }
func (b *Base) InputChannels() int     { return b.currentInputChans }
func (b *Base) OutputChannels() int    { return b.currentOutputChans }

func (b *Base) SetInputChannels(n int) {
	if n > b.maxInputChannels {
		n = b.maxInputChannels
	}
	b.currentInputChans = n
}

func (b *Base) SetOutputChannels(n int) {
	if n > b.maxOutputChannels {
		n = b.maxOutputChannels
	}
	b.currentOutputChans = n
}

// Init is a no-op default; override for processors that need one-time
// allocation before entering the graph.
func (b *Base) Init(sampleRate float64) sushierr.Code { return sushierr.OK }

// Configure is a no-op default; override for processors that
// reallocate internal buffers on sample-rate change.
func (b *Base) Configure(sampleRate float64) {}

// ProcessAudio's default is identity/bypass passthrough on the common
// channel subset; concrete processors override this.
func (b *Base) ProcessAudio(in, out *sample.Buffer) {
	passThrough(in, out)
}

// ProcessEvent's default discards the event.
func (b *Base) ProcessEvent(e rtevent.RtEvent) {}

func (b *Base) SetEventOutput(sink EventOutput) { b.eventOutput = sink }

// OutputEvent publishes e to the installed event sink, if any. Real-time
// safe: never blocks, never allocates.
func (b *Base) OutputEvent(e rtevent.RtEvent) {
	if b.eventOutput != nil {
		b.eventOutput.OutputEvent(e)
	}
}

func (b *Base) SetBypassed(bypassed bool) { b.bypassed = bypassed }
func (b *Base) Bypassed() bool            { return b.bypassed }

func (b *Base) Parameters() *param.Registry { return b.params }

// RegisterFloatParameter registers a float parameter on this
// processor's table. Must be called before the processor is added to
// a Track (spec.md §4.2: "Registration after activation is
// forbidden").
func (b *Base) RegisterFloatParameter(short, display string, def, min, max float32, pre param.PreProcessor) id.ObjectID {
	return b.params.RegisterFloat(short, display, def, min, max, pre)
}

// RegisterIntParameter registers an integer-valued parameter, stored
// as a float and rounded by readers that want an int (spec.md §4.2:
// "plus analogous integer ... variants").
func (b *Base) RegisterIntParameter(short, display string, def, min, max int32) id.ObjectID {
	return b.params.RegisterFloat(short, display, float32(def), float32(min), float32(max), nil)
}

// RegisterBoolParameter registers a boolean parameter, stored as 0/1.
func (b *Base) RegisterBoolParameter(short, display string, def bool) id.ObjectID {
	defVal := float32(0)
	if def {
		defVal = 1
	}
	return b.params.RegisterFloat(short, display, defVal, 0, 1, Clamp01{})
}

// RegisterStringParameter registers a string parameter.
func (b *Base) RegisterStringParameter(short, display, def string) id.ObjectID {
	return b.params.RegisterString(short, display, def)
}

// Clamp01 is the pre-processor used by boolean parameters to keep
// their float-backed storage within {0, 1}'s continuous envelope.
type Clamp01 struct{}

func (Clamp01) Process(raw float32) float32 {
	if raw <= 0.5 {
		return 0
	}
	return 1
}

// passThrough copies input to output on the common channel subset,
// used by Base's default ProcessAudio and by bypass handling.
func passThrough(in, out *sample.Buffer) {
	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	for ch := 0; ch < n; ch++ {
		copy(out.Channel(ch), in.Channel(ch))
	}
}

// PassThrough exposes the bypass passthrough helper for processors
// that implement soft bypass explicitly inside their own ProcessAudio.
func PassThrough(in, out *sample.Buffer) {
	passThrough(in, out)
}
