// Package envelope implements an Internal ADSR envelope plugin,
// triggered by the same NOTE_ON/NOTE_OFF RtEvent variants a Track
// buffers and delivers to the first processor in its chain (spec.md
// §4.3), rather than by a parameter. ProcessEvent calls trigger/
// release on the stage machine below; ProcessAudio advances it once
// per sample and multiplies every channel by the running value.
// Registered through engine.RegisterProcessorFactory under
// "builtin.envelope".
package envelope

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

const UID = "builtin.envelope"

const minStageSeconds = 0.0005

// stage names the four segments of the ADSR cycle plus the resting
// state before a first trigger.
type stage int

const (
	stageIdle stage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// adsr is a per-sample attack/decay/sustain/release amplitude
// generator. Coefficients are exponential one-pole time constants
// recomputed whenever the corresponding duration changes, matching
// the shape (not the bookkeeping) of a classic analog envelope
// generator.
type adsr struct {
	sampleRate float64

	attackSeconds, decaySeconds, releaseSeconds float64
	sustainLevel                                float64

	attackCoef, decayCoef, releaseCoef float64

	stage   stage
	current float64
}

func newADSR(sampleRate float64) *adsr {
	e := &adsr{
		sampleRate:    sampleRate,
		attackSeconds: 0.01,
		decaySeconds:  0.1,
		sustainLevel:  0.7,
		releaseSeconds: 0.3,
	}
	e.recompute()
	return e
}

func timeConstant(seconds, sampleRate float64) float64 {
	if seconds < minStageSeconds {
		seconds = minStageSeconds
	}
	return math.Exp(-1.0 / (seconds * sampleRate))
}

func (e *adsr) recompute() {
	e.attackCoef = timeConstant(e.attackSeconds, e.sampleRate)
	e.decayCoef = timeConstant(e.decaySeconds, e.sampleRate)
	e.releaseCoef = timeConstant(e.releaseSeconds, e.sampleRate)
}

func (e *adsr) trigger() {
	e.stage = stageAttack
}

func (e *adsr) release() {
	if e.stage != stageIdle {
		e.stage = stageRelease
	}
}

// next advances the envelope by one sample and returns its current
// level.
func (e *adsr) next() float32 {
	switch e.stage {
	case stageAttack:
		e.current = 1.0 + (e.current-1.0)*e.attackCoef
		if e.current >= 0.9999 {
			e.current = 1.0
			e.stage = stageDecay
		}
	case stageDecay:
		e.current = e.sustainLevel + (e.current-e.sustainLevel)*e.decayCoef
		if math.Abs(e.current-e.sustainLevel) < 1e-4 {
			e.current = e.sustainLevel
			e.stage = stageSustain
		}
	case stageSustain:
		e.current = e.sustainLevel
	case stageRelease:
		e.current = e.current * e.releaseCoef
		if e.current < 1e-4 {
			e.current = 0
			e.stage = stageIdle
		}
	case stageIdle:
		e.current = 0
	}
	return float32(e.current)
}

// Processor shapes every channel's amplitude by one shared adsr,
// advanced once per sample and applied identically to each channel.
type Processor struct {
	*processor.Base

	envelope *adsr

	attackID, decayID, sustainID, releaseID             id.ObjectID
	attackValue, decayValue, sustainValue, releaseValue *param.Value

	sampleRate float64
	scratch    []float32
}

// New builds a Processor with maxChannels input and output ports.
func New(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &Processor{Base: b, sampleRate: 48000}
	p.attackID = b.RegisterFloatParameter("attack_s", "Attack", 0.01, 0.001, 5.0, nil)
	p.decayID = b.RegisterFloatParameter("decay_s", "Decay", 0.1, 0.001, 5.0, nil)
	p.sustainID = b.RegisterFloatParameter("sustain", "Sustain", 0.7, 0.0, 1.0, nil)
	p.releaseID = b.RegisterFloatParameter("release_s", "Release", 0.3, 0.001, 5.0, nil)

	p.attackValue = b.Parameters().Get(p.attackID)
	p.decayValue = b.Parameters().Get(p.decayID)
	p.sustainValue = b.Parameters().Get(p.sustainID)
	p.releaseValue = b.Parameters().Get(p.releaseID)

	p.envelope = newADSR(p.sampleRate)
	return p
}

func (p *Processor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.envelope = newADSR(sampleRate)
	p.scratch = make([]float32, 0, sample.ChunkSize)
	return sushierr.OK
}

// ProcessEvent triggers and releases the envelope on note events;
// every other event is ignored.
func (p *Processor) ProcessEvent(e rtevent.RtEvent) {
	switch e.Type() {
	case rtevent.NoteOn:
		p.envelope.trigger()
	case rtevent.NoteOff:
		p.envelope.release()
	}
}

// ProcessAudio advances the envelope once per sample and multiplies
// every channel by the running value.
func (p *Processor) ProcessAudio(in, out *sample.Buffer) {
	p.envelope.attackSeconds = float64(p.attackValue.Get())
	p.envelope.decaySeconds = float64(p.decayValue.Get())
	p.envelope.sustainLevel = float64(p.sustainValue.Get())
	p.envelope.releaseSeconds = float64(p.releaseValue.Get())
	p.envelope.recompute()

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	if n == 0 {
		return
	}
	frames := len(in.Channel(0))
	if cap(p.scratch) < frames {
		p.scratch = make([]float32, frames)
	}
	env := p.scratch[:frames]
	for i := range env {
		env[i] = p.envelope.next()
	}
	for ch := 0; ch < n; ch++ {
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i := range dst {
			dst[i] = src[i] * env[i]
		}
	}
}
