package modulation

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// ChorusUID is the identifier passed to engine.AddPluginToTrack to
// instantiate the chorus plugin.
const ChorusUID = "builtin.chorus"

const (
	chorusBaseDelayMs = 15.0
	chorusMaxDepthMs  = 20.0
)

// modLine is a single modulated delay line: its read position
// oscillates around a base delay by an LFO-driven offset, with a
// feedback path whose gain is shared by both stereo channels.
type modLine struct {
	bufL, bufR []float32
	writePos   int
	feedback   float32
}

func newModLine(maxSeconds, sampleRate float64) *modLine {
	size := int(maxSeconds*sampleRate) + 1
	return &modLine{bufL: make([]float32, size), bufR: make([]float32, size)}
}

func (m *modLine) tick(inL, inR float32, delaySamples float64) (float32, float32) {
	n := float64(len(m.bufL))
	readPos := float64(m.writePos) - delaySamples
	if readPos < 0 {
		readPos += n
	}
	i0 := int(readPos)
	frac := float32(readPos - float64(i0))
	i1 := i0 + 1
	if i1 >= len(m.bufL) {
		i1 = 0
	}
	wetL := m.bufL[i0]*(1-frac) + m.bufL[i1]*frac
	wetR := m.bufR[i0]*(1-frac) + m.bufR[i1]*frac

	m.bufL[m.writePos] = inL + wetL*m.feedback
	m.bufR[m.writePos] = inR + wetR*m.feedback
	m.writePos++
	if m.writePos >= len(m.bufL) {
		m.writePos = 0
	}
	return wetL, wetR
}

// ChorusProcessor modulates a stereo delay line's read position with
// an LFO, producing the classic chorus detuning/thickening effect.
type ChorusProcessor struct {
	*processor.Base

	line *modLine
	osc  *lfo

	rateID, depthID, mixID, feedbackID             id.ObjectID
	rateValue, depthValue, mixValue, feedbackValue *param.Value

	sampleRate float64
}

// NewChorus builds a ChorusProcessor with maxChannels input ports and
// 2 output ports.
func NewChorus(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, 2)
	p := &ChorusProcessor{Base: b, sampleRate: 48000.0}
	p.rateID = b.RegisterFloatParameter("rate_hz", "Rate", 1.0, 0.01, 10.0, nil)
	p.depthID = b.RegisterFloatParameter("depth_ms", "Depth", 5.0, 0.0, chorusMaxDepthMs, nil)
	p.mixID = b.RegisterFloatParameter("mix", "Mix", 0.5, minMix, maxMix, nil)
	p.feedbackID = b.RegisterFloatParameter("feedback", "Feedback", 0.0, 0.0, 0.95, nil)

	p.rateValue = b.Parameters().Get(p.rateID)
	p.depthValue = b.Parameters().Get(p.depthID)
	p.mixValue = b.Parameters().Get(p.mixID)
	p.feedbackValue = b.Parameters().Get(p.feedbackID)

	p.line = newModLine((chorusBaseDelayMs+chorusMaxDepthMs)/1000.0, p.sampleRate)
	p.osc = newLFO(p.sampleRate)
	return p
}

// Init rebuilds the delay line at the live sample rate.
func (p *ChorusProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.line = newModLine((chorusBaseDelayMs+chorusMaxDepthMs)/1000.0, sampleRate)
	p.osc = newLFO(sampleRate)
	return sushierr.OK
}

// ProcessAudio runs the modulated delay line over a stereo pair,
// widening a mono input if necessary, and blends dry/wet by mix.
func (p *ChorusProcessor) ProcessAudio(in, out *sample.Buffer) {
	p.osc.setFrequency(float64(p.rateValue.Get()))
	depthMs := float64(p.depthValue.Get())
	mix := p.mixValue.Get()
	p.line.feedback = p.feedbackValue.Get()

	inL, inR := stereoPair(in)
	outL, outR := out.Channel(0), out.Channel(1)
	for i := range outL {
		mod := p.osc.next()
		delayMs := chorusBaseDelayMs + depthMs*mod
		delaySamples := delayMs * p.sampleRate / 1000.0
		wetL, wetR := p.line.tick(inL[i], inR[i], delaySamples)
		outL[i] = inL[i]*(1-mix) + wetL*mix
		outR[i] = inR[i]*(1-mix) + wetR*mix
	}
}
