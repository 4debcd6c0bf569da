// Package track implements Track: a Processor that owns an ordered
// chain of child processors, negotiates their channel configuration,
// mixes their output through per-bus gain/pan, and buffers keyboard
// events for delivery at the start of a block. Grounded directly on
// original_source/src/engine/track.cpp (Track::add, ::render,
// ::process_audio, ::update_channel_config, ::process_event,
// apply_pan_and_gain), ported from the C++ owning-raw-pointer chain to
// a Go slice of processor.Processor plus the RT-safe event queue in
// pkg/rtevent, whose ring-buffer shape mirrors vst3go's
// pkg/dsp/buffer/writeahead.go pattern.
package track

import (
	"strconv"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
)

// MaxProcessors bounds the number of processors a single track chain
// may hold (spec.md §4.3 add()).
const MaxProcessors = 64

// eventBufferCapacity bounds the per-block keyboard-event queue. A
// block is at most sample.ChunkSize samples long; this is generous
// headroom for dense note streams within one block.
const eventBufferCapacity = 256

// PanGain3dB is the -3dB pan-law constant (1 - 1/sqrt(2), rounded to
// the reference implementation's constant), used by ApplyPanAndGain.
const PanGain3dB = 0.293

const (
	leftChannelIndex  = 0
	rightChannelIndex = 1
)

// Track is itself a Processor (spec.md §4.3): it may be added to
// another track's chain in principle, but per invariant 1 a track
// never appears twice and never adds itself, and in practice the
// engine only ever adds tracks at the top level.
type Track struct {
	*processor.Base

	processors []processor.Processor

	inputBusses  int
	outputBusses int
	multibus     bool

	gainParams []*param.Value
	panParams  []*param.Value

	inputBuffer  *sample.Buffer
	outputBuffer *sample.Buffer

	eventBuffer *rtevent.Fifo
}

// NewSimple creates a single-bus track with the given channel count
// (1 for mono, 2 for stereo).
func NewSimple(channels int) *Track {
	bufChannels := channels
	if bufChannels < 2 {
		bufChannels = 2
	}
	t := &Track{
		Base:         processor.NewBase(channels, channels),
		inputBusses:  1,
		outputBusses: 1,
		multibus:     false,
		inputBuffer:  sample.New(bufChannels),
		outputBuffer: sample.New(bufChannels),
		eventBuffer:  rtevent.NewFifo(eventBufferCapacity),
	}
	t.commonInit()
	return t
}

// NewMultibus creates a multibus track; each bus is 2 channels.
func NewMultibus(inputBusses, outputBusses int) *Track {
	channels := inputBusses * 2
	if outputBusses*2 > channels {
		channels = outputBusses * 2
	}
	if channels < 2 {
		channels = 2
	}
	t := &Track{
		Base:         processor.NewBase(channels, channels),
		inputBusses:  inputBusses,
		outputBusses: outputBusses,
		multibus:     inputBusses > 1 || outputBusses > 1,
		inputBuffer:  sample.New(channels),
		outputBuffer: sample.New(channels),
		eventBuffer:  rtevent.NewFifo(eventBufferCapacity),
	}
	t.commonInit()
	return t
}

func (t *Track) commonInit() {
	t.processors = make([]processor.Processor, 0, MaxProcessors)
	t.gainParams = make([]*param.Value, t.outputBusses)
	t.panParams = make([]*param.Value, t.outputBusses)

	registerBus := func(bus int) {
		suffix := "main"
		if bus > 0 {
			suffix = "sub"
		}
		gainID := t.RegisterFloatParameter(paramName("gain", suffix, bus), "Gain", 0.0, -120.0, 24.0, param.DbToLinear{Min: -120, Max: 24})
		panID := t.RegisterFloatParameter(paramName("pan", suffix, bus), "Pan", 0.0, -1.0, 1.0, param.Clamp{Min: -1, Max: 1})
		t.gainParams[bus] = t.Parameters().Get(gainID)
		t.panParams[bus] = t.Parameters().Get(panID)
	}
	for bus := 0; bus < t.outputBusses; bus++ {
		registerBus(bus)
	}
}

func paramName(base, suffix string, bus int) string {
	if bus == 0 {
		return base + "_" + suffix
	}
	return base + "_" + suffix + "_" + strconv.Itoa(bus)
}

// InputBusses returns the number of input busses.
func (t *Track) InputBusses() int { return t.inputBusses }

// OutputBusses returns the number of output busses.
func (t *Track) OutputBusses() int { return t.outputBusses }

// Multibus reports whether this track has more than one input or
// output bus.
func (t *Track) Multibus() bool { return t.multibus }

// Processors returns a snapshot of the current chain, in order.
func (t *Track) Processors() []processor.Processor {
	out := make([]processor.Processor, len(t.processors))
	copy(out, t.processors)
	return out
}

// Add appends p to the end of the chain and renegotiates channel
// configuration. Returns false if the chain is full, if p is this
// track, or if p is already present (spec.md invariants 1-2).
func (t *Track) Add(p processor.Processor) bool {
	if len(t.processors) >= MaxProcessors {
		return false
	}
	if p.ID() == t.ID() {
		return false
	}
	for _, existing := range t.processors {
		if existing.ID() == p.ID() {
			return false
		}
	}
	t.processors = append(t.processors, p)
	p.SetEventOutput(t)
	t.UpdateChannelConfig()
	return true
}

// Remove removes the processor identified by pid from the chain and
// renegotiates. Returns false if no such processor is present.
func (t *Track) Remove(pid id.ObjectID) bool {
	for i, p := range t.processors {
		if p.ID() == pid {
			p.SetEventOutput(nil)
			t.processors = append(t.processors[:i], t.processors[i+1:]...)
			t.UpdateChannelConfig()
			return true
		}
	}
	return false
}

// UpdateChannelConfig implements the chain negotiation algorithm of
// spec.md §4.3: each processor's input is clamped to the running
// channel count and its own max; its output is clamped to the track's
// outer bound, its own max, and (for all but the last processor) the
// next processor's max input.
func (t *Track) UpdateChannelConfig() {
	in := t.InputChannels()
	for i, p := range t.processors {
		if in > p.MaxInputChannels() {
			in = p.MaxInputChannels()
		}
		if in != p.InputChannels() {
			p.SetInputChannels(in)
		}

		var out int
		if i < len(t.processors)-1 {
			out = minOf(t.MaxOutputChannels(), p.MaxOutputChannels(), t.processors[i+1].MaxInputChannels())
		} else {
			out = minOf(t.MaxOutputChannels(), p.MaxOutputChannels(), t.OutputChannels())
		}
		if out != p.OutputChannels() {
			p.SetOutputChannels(out)
		}
		in = out
	}

	if len(t.processors) > 0 {
		last := t.processors[len(t.processors)-1]
		trackOutputs := t.OutputChannels()
		if last.OutputChannels() < trackOutputs {
			trackOutputs = last.OutputChannels()
		}
		if trackOutputs != last.OutputChannels() {
			last.SetOutputChannels(trackOutputs)
		}
	}
}

func minOf(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// InputBuffer returns the track's owned input scratch buffer, used by
// the engine to slice the engine-level input into this track's view
// before calling Render.
func (t *Track) InputBuffer() *sample.Buffer { return t.inputBuffer }

// OutputBuffer returns the track's owned output scratch buffer.
func (t *Track) OutputBuffer() *sample.Buffer { return t.outputBuffer }

// Render processes one block through the chain and applies per-bus
// gain and pan to the result (spec.md §4.3 render()).
func (t *Track) Render() {
	t.ProcessAudio(t.inputBuffer, t.outputBuffer)
	for bus := 0; bus < t.outputBusses; bus++ {
		busView := sample.View(t.outputBuffer, bus*2, 2)
		ApplyPanAndGain(busView, t.gainParams[bus].Get(), t.panParams[bus].Get())
	}
}

// ProcessAudio runs in through the processor chain into out. Each
// stage's output becomes the next stage's input (spec.md §4.3:
// "rotate: in for the next stage is the previous out"), alternating
// between the two real buffers passed in so no processor ever reads
// and writes the same storage. Any buffered keyboard events are
// delivered to the first processor in the chain before its slice of
// audio, realizing "events arrive before samples in the block they
// target". Events left unconsumed after the chain (including the
// whole buffer, when the chain is empty) are re-emitted upstream with
// the event's processor id rewritten to this track's id.
func (t *Track) ProcessAudio(in, out *sample.Buffer) {
	bufA, bufB := in, out
	for _, p := range t.processors {
		for {
			e, ok := t.eventBuffer.Pop()
			if !ok {
				break
			}
			p.ProcessEvent(e)
		}
		inView := sample.View(bufA, 0, p.InputChannels())
		outView := sample.View(bufB, 0, p.OutputChannels())
		p.ProcessAudio(inView, outView)
		bufA, bufB = bufB, bufA
	}

	// bufA now holds the most recently written buffer: the chain's
	// final output, or (empty chain) the untouched input, per the
	// "track with no processors is pass-through" intent (spec.md §9).
	outputChannels := t.OutputChannels()
	if len(t.processors) > 0 {
		outputChannels = t.processors[len(t.processors)-1].OutputChannels()
	}
	if bufA != out {
		dst := sample.View(out, 0, outputChannels)
		src := sample.View(bufA, 0, outputChannels)
		dst.CopyFrom(src)
	}

	for {
		e, ok := t.eventBuffer.Pop()
		if !ok {
			break
		}
		rewritten := e.WithProcessorID(t.ID())
		t.OutputEvent(rewritten)
	}
}

// ProcessEvent buffers keyboard-family events for delivery at the
// start of the next ProcessAudio; every other event is forwarded
// upstream unchanged (spec.md §4.3).
func (t *Track) ProcessEvent(e rtevent.RtEvent) {
	if e.Type().IsKeyboard() {
		t.eventBuffer.Push(e)
		return
	}
	t.OutputEvent(e)
}

// SetBypassed propagates bypass to every processor in the chain, then
// to the track itself (spec.md §4.3).
func (t *Track) SetBypassed(bypassed bool) {
	for _, p := range t.processors {
		p.SetBypassed(bypassed)
	}
	t.Base.SetBypassed(bypassed)
}

// ApplyPanAndGain implements the pan law of spec.md §4.3: buffer must
// be a 2-channel (stereo) view. Ported literally from
// original_source/src/engine/track.cpp apply_pan_and_gain.
func ApplyPanAndGain(buffer *sample.Buffer, gain, pan float32) {
	left := sample.View(buffer, leftChannelIndex, 1)
	right := sample.View(buffer, rightChannelIndex, 1)

	var leftGain, rightGain float32
	if pan < 0.0 {
		leftGain = gain * (1.0 + pan - PanGain3dB*pan)
		rightGain = gain * (1.0 + pan)
	} else {
		leftGain = gain * (1.0 - pan)
		rightGain = gain * (1.0 - pan + PanGain3dB*pan)
	}
	left.ApplyGain(leftGain)
	right.ApplyGain(rightGain)
}
