package modulation

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// PhaserUID is the identifier passed to engine.AddPluginToTrack to
// instantiate the phaser plugin.
const PhaserUID = "builtin.phaser"

const phaserStages = 4
const phaserCenterHz = 1000.0

// allpassStage is a first-order all-pass section, tuned each sample
// to the LFO-modulated corner frequency.
type allpassStage struct {
	a1    float32
	state float32
}

func (a *allpassStage) setFrequency(freq, sampleRate float64) {
	t := math.Tan(math.Pi * freq / sampleRate)
	a.a1 = float32((1.0 - t) / (1.0 + t))
}

func (a *allpassStage) tick(x float32) float32 {
	y := a.a1*x + a.state
	a.state = x - a.a1*y
	return y
}

// PhaserProcessor sweeps a cascade of all-pass stages with the shared
// lfo, feeding a fraction of the output back into the cascade input.
type PhaserProcessor struct {
	*processor.Base

	stages [phaserStages]allpassStage
	osc    *lfo

	rateID, depthID, feedbackID, mixID             id.ObjectID
	rateValue, depthValue, feedbackValue, mixValue *param.Value

	sampleRate     float64
	feedbackSample float32
}

// NewPhaser builds a PhaserProcessor with maxChannels input ports and
// 2 output ports.
func NewPhaser(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, 2)
	p := &PhaserProcessor{Base: b, sampleRate: 48000.0}
	p.rateID = b.RegisterFloatParameter("rate_hz", "Rate", 0.5, 0.01, 10.0, nil)
	p.depthID = b.RegisterFloatParameter("depth", "Depth", 0.8, 0.0, 1.0, nil)
	p.feedbackID = b.RegisterFloatParameter("feedback", "Feedback", 0.3, 0.0, 0.95, nil)
	p.mixID = b.RegisterFloatParameter("mix", "Mix", 0.5, minMix, maxMix, nil)

	p.rateValue = b.Parameters().Get(p.rateID)
	p.depthValue = b.Parameters().Get(p.depthID)
	p.feedbackValue = b.Parameters().Get(p.feedbackID)
	p.mixValue = b.Parameters().Get(p.mixID)

	p.osc = newLFO(p.sampleRate)
	return p
}

// Init rebuilds the oscillator at the live sample rate.
func (p *PhaserProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.osc = newLFO(sampleRate)
	return sushierr.OK
}

func (p *PhaserProcessor) runStages(x float32) float32 {
	for i := range p.stages {
		x = p.stages[i].tick(x)
	}
	return x
}

// ProcessAudio sweeps the all-pass cascade and applies it to both
// channels identically, which is enough to produce the classic
// swept-notch phase effect without a second, independently-phased
// cascade for the right channel.
func (p *PhaserProcessor) ProcessAudio(in, out *sample.Buffer) {
	p.osc.setFrequency(float64(p.rateValue.Get()))
	depth := float64(p.depthValue.Get())
	feedback := p.feedbackValue.Get()
	mix := p.mixValue.Get()

	freqRange := phaserCenterHz * depth
	minFreq := math.Max(20.0, phaserCenterHz-freqRange/2)
	maxFreq := math.Min(p.sampleRate/4, phaserCenterHz+freqRange/2)

	inL, inR := stereoPair(in)
	outL, outR := out.Channel(0), out.Channel(1)
	for i := range outL {
		mod := (p.osc.next() + 1.0) / 2.0
		logFreq := math.Log(minFreq) + (math.Log(maxFreq)-math.Log(minFreq))*mod
		freq := math.Exp(logFreq)
		for s := range p.stages {
			p.stages[s].setFrequency(freq, p.sampleRate)
		}

		wetL := p.runStages(inL[i] + p.feedbackSample*feedback)
		p.feedbackSample = wetL
		outL[i] = inL[i]*(1-mix) + wetL*mix
		outR[i] = inR[i]*(1-mix) + wetL*mix
	}
}
