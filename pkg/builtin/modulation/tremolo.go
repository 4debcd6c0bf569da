package modulation

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// TremoloUID is the identifier passed to engine.AddPluginToTrack to
// instantiate the tremolo plugin.
const TremoloUID = "builtin.tremolo"

// TremoloProcessor modulates amplitude with the shared lfo, selecting
// its shape through a string "waveform" parameter.
type TremoloProcessor struct {
	*processor.Base

	osc *lfo

	rateID, depthID, waveformID id.ObjectID
	rateValue, depthValue       *param.Value
	waveformValue                *param.StringValue

	sampleRate float64
}

// NewTremolo builds a TremoloProcessor with maxChannels input ports
// and 2 output ports.
func NewTremolo(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, 2)
	p := &TremoloProcessor{Base: b, sampleRate: 48000.0}
	p.rateID = b.RegisterFloatParameter("rate_hz", "Rate", 5.0, 0.01, 20.0, nil)
	p.depthID = b.RegisterFloatParameter("depth", "Depth", 0.5, 0.0, 1.0, nil)
	p.waveformID = b.RegisterStringParameter("waveform", "Waveform", "sine")

	p.rateValue = b.Parameters().Get(p.rateID)
	p.depthValue = b.Parameters().Get(p.depthID)
	p.waveformValue = b.Parameters().GetString(p.waveformID)

	p.osc = newLFO(p.sampleRate)
	return p
}

// Init rebuilds the oscillator at the live sample rate.
func (p *TremoloProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.osc = newLFO(sampleRate)
	return sushierr.OK
}

// ProcessAudio multiplies every sample by 1 minus the LFO-scaled
// depth, falling back to a sine shape for an unrecognized waveform
// name.
func (p *TremoloProcessor) ProcessAudio(in, out *sample.Buffer) {
	p.osc.setFrequency(float64(p.rateValue.Get()))
	depth := p.depthValue.Get()
	shape, ok := waveformNames[p.waveformValue.Get()]
	if !ok {
		shape = waveformSine
	}
	p.osc.shape = shape

	inL, inR := stereoPair(in)
	outL, outR := out.Channel(0), out.Channel(1)
	for i := range outL {
		mod := float32(p.osc.next())
		gain := 1.0 - depth*(mod*0.5+0.5)
		outL[i] = inL[i] * gain
		outR[i] = inR[i] * gain
	}
}
