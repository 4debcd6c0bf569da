// Package reverb implements an Internal stereo reverb plugin built
// on the Freeverb topology (parallel damped comb filters feeding a
// series all-pass diffuser), registered through
// engine.RegisterProcessorFactory under "builtin.reverb".
//
// The FDN (feedback delay network) and classic Schroeder cascade
// variants are cut from this set: both cover the same "parallel
// combs into series all-passes" shape as Freeverb with different
// tuning tables, and carrying three near-identical topologies here
// would pad the plugin list without adding a behaviour this one
// doesn't already exercise.
package reverb

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// FreeverbUID is the identifier passed to engine.AddPluginToTrack to
// instantiate the reverb plugin.
const FreeverbUID = "builtin.reverb"

const (
	numCombs      = 8
	numAllpasses  = 4
	stereoSpreadSamples = 23
	fixedInputGain      = 0.015
	roomScale           = 0.28
	roomOffset          = 0.7
	dampScale           = 0.4
)

// samples at 44.1kHz; scaled to the live sample rate on construction.
var combTuningSamples = [numCombs]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
var allpassTuningSamples = [numAllpasses]int{556, 441, 341, 225}

// combSection is a damped feedback comb filter: one delay line whose
// feedback path is low-pass filtered before being written back.
type combSection struct {
	buf       []float32
	pos       int
	feedback  float32
	damp1     float32
	damp2     float32
	lowpassed float32
}

func newCombSection(delaySamples int) *combSection {
	return &combSection{buf: make([]float32, delaySamples), damp1: 0.5, damp2: 0.5}
}

func (c *combSection) tick(input float32) float32 {
	out := c.buf[c.pos]
	c.lowpassed = out*c.damp2 + c.lowpassed*c.damp1
	c.buf[c.pos] = input + c.lowpassed*c.feedback
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

// allpassSection is a first-order diffuser: delays its input while
// passing the delayed sample straight through in magnitude.
type allpassSection struct {
	buf      []float32
	pos      int
	feedback float32
}

func newAllpassSection(delaySamples int) *allpassSection {
	return &allpassSection{buf: make([]float32, delaySamples), feedback: 0.5}
}

func (a *allpassSection) tick(input float32) float32 {
	buffered := a.buf[a.pos]
	out := -input + buffered
	a.buf[a.pos] = input + buffered*a.feedback
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// tank is one Freeverb channel's chain: numCombs parallel combs
// feeding numAllpasses series all-pass diffusers.
type tank struct {
	combs     [numCombs]*combSection
	allpasses [numAllpasses]*allpassSection
}

func newTank(sampleRate float64, spreadSamples int) *tank {
	scale := sampleRate / 44100.0
	t := &tank{}
	for i := range t.combs {
		t.combs[i] = newCombSection(int(float64(combTuningSamples[i]+spreadSamples)*scale) + 1)
	}
	for i := range t.allpasses {
		t.allpasses[i] = newAllpassSection(int(float64(allpassTuningSamples[i]+spreadSamples)*scale) + 1)
	}
	return t
}

func (t *tank) setFeedbackAndDamping(feedback, damping float32) {
	for _, c := range t.combs {
		c.feedback = feedback
		c.damp1 = damping
		c.damp2 = 1 - damping
	}
}

func (t *tank) tick(input float32) float32 {
	var out float32
	for _, c := range t.combs {
		out += c.tick(input)
	}
	for _, a := range t.allpasses {
		out = a.tick(out)
	}
	return out
}

// FreeverbProcessor runs a left and right tank, cross-mixed by
// room_size/damping/wet_level/dry_level.
type FreeverbProcessor struct {
	*processor.Base

	left, right *tank

	roomSizeID, dampingID, wetID, dryID             id.ObjectID
	roomSizeValue, dampingValue, wetValue, dryValue *param.Value

	sampleRate float64
}

// NewFreeverb builds a FreeverbProcessor with maxChannels input ports
// and 2 output ports.
func NewFreeverb(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, 2)
	p := &FreeverbProcessor{Base: b, sampleRate: 48000.0}
	p.roomSizeID = b.RegisterFloatParameter("room_size", "Room Size", 0.5, 0.0, 1.0, nil)
	p.dampingID = b.RegisterFloatParameter("damping", "Damping", 0.5, 0.0, 1.0, nil)
	p.wetID = b.RegisterFloatParameter("wet_level", "Wet", 1.0/3.0, 0.0, 1.0, nil)
	p.dryID = b.RegisterFloatParameter("dry_level", "Dry", 1.0/3.0, 0.0, 1.0, nil)

	p.roomSizeValue = b.Parameters().Get(p.roomSizeID)
	p.dampingValue = b.Parameters().Get(p.dampingID)
	p.wetValue = b.Parameters().Get(p.wetID)
	p.dryValue = b.Parameters().Get(p.dryID)

	p.left = newTank(p.sampleRate, 0)
	p.right = newTank(p.sampleRate, stereoSpreadSamples)
	return p
}

// Init rebuilds both tanks at the live sample rate.
func (p *FreeverbProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.left = newTank(sampleRate, 0)
	p.right = newTank(sampleRate, stereoSpreadSamples)
	return sushierr.OK
}

func stereoPair(in *sample.Buffer) (l, r []float32) {
	l = in.Channel(0)
	if in.ChannelCount() > 1 {
		r = in.Channel(1)
	} else {
		r = l
	}
	return l, r
}

// ProcessAudio sums the stereo input to mono, runs it through both
// tanks and mixes wet/dry per channel.
func (p *FreeverbProcessor) ProcessAudio(in, out *sample.Buffer) {
	roomSize := float64(p.roomSizeValue.Get())
	damping := float32(p.dampingValue.Get())
	wet := p.wetValue.Get()
	dry := p.dryValue.Get()

	feedback := float32(roomSize*roomScale + roomOffset)
	dampAmount := damping * dampScale
	p.left.setFeedbackAndDamping(feedback, dampAmount)
	p.right.setFeedbackAndDamping(feedback, dampAmount)

	inL, inR := stereoPair(in)
	outL, outR := out.Channel(0), out.Channel(1)
	for i := range outL {
		mono := (inL[i] + inR[i]) * fixedInputGain
		wetL := p.left.tick(mono)
		wetR := p.right.tick(mono)
		outL[i] = wetL*wet + inL[i]*dry
		outR[i] = wetR*wet + inR[i]*dry
	}
}
