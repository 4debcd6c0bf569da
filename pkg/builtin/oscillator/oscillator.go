// Package oscillator implements an Internal signal-generator plugin.
// It ignores its audio input and writes a periodic waveform to every
// output channel, selected through a string "waveform" parameter — a
// third STRING_PROPERTY_CHANGE exercise site alongside
// pkg/builtin/filter's "mode" and pkg/builtin/distortion's "curve".
// Registered through engine.RegisterProcessorFactory under
// "builtin.oscillator".
package oscillator

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

const UID = "builtin.oscillator"

// phaseGen is a single phase-accumulator driving every waveform
// shape this plugin offers, rather than one dedicated type per shape.
type phaseGen struct {
	sampleRate float64
	phaseInc   float64
	phase      float64
}

func newPhaseGen(sampleRate float64) *phaseGen {
	return &phaseGen{sampleRate: sampleRate}
}

func (g *phaseGen) setFrequency(hz float64) {
	g.phaseInc = hz / g.sampleRate
}

func (g *phaseGen) advance() {
	g.phase += g.phaseInc
	if g.phase >= 1.0 {
		g.phase -= math.Floor(g.phase)
	}
}

func (g *phaseGen) fill(buf []float32, shape string, pulseWidth float64) {
	for i := range buf {
		var v float32
		switch shape {
		case "saw":
			v = float32(2.0*g.phase - 1.0)
		case "square":
			if g.phase < 0.5 {
				v = 1.0
			} else {
				v = -1.0
			}
		case "pulse":
			if g.phase < pulseWidth {
				v = 1.0
			} else {
				v = -1.0
			}
		case "triangle":
			if g.phase < 0.5 {
				v = float32(4.0*g.phase - 1.0)
			} else {
				v = float32(3.0 - 4.0*g.phase)
			}
		default:
			v = float32(math.Sin(2.0 * math.Pi * g.phase))
		}
		buf[i] = v
		g.advance()
	}
}

// Processor is a generator: it ignores its input buffer and writes
// one oscillator's output identically to every output channel.
type Processor struct {
	*processor.Base

	gen *phaseGen

	freqID, widthID, waveformID id.ObjectID
	freqValue, widthValue       *param.Value
	waveformValue               *param.StringValue

	sampleRate float64
}

// New builds a Processor with maxChannels input and output ports.
func New(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &Processor{Base: b, sampleRate: 48000}
	p.freqID = b.RegisterFloatParameter("frequency_hz", "Frequency", 440.0, 0.1, 20000.0, nil)
	p.widthID = b.RegisterFloatParameter("pulse_width", "Pulse Width", 0.5, 0.01, 0.99, nil)
	p.waveformID = b.RegisterStringParameter("waveform", "Waveform", "sine")

	p.freqValue = b.Parameters().Get(p.freqID)
	p.widthValue = b.Parameters().Get(p.widthID)
	p.waveformValue = b.Parameters().GetString(p.waveformID)

	p.gen = newPhaseGen(p.sampleRate)
	return p
}

// Init rebuilds the phase generator at the live sample rate.
func (p *Processor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.gen = newPhaseGen(sampleRate)
	return sushierr.OK
}

// ProcessAudio writes one waveform to channel 0 and copies it to
// every other output channel.
func (p *Processor) ProcessAudio(in, out *sample.Buffer) {
	p.gen.setFrequency(float64(p.freqValue.Get()))

	n := out.ChannelCount()
	if n == 0 {
		return
	}
	dst := out.Channel(0)
	p.gen.fill(dst, p.waveformValue.Get(), float64(p.widthValue.Get()))
	for ch := 1; ch < n; ch++ {
		copy(out.Channel(ch), dst)
	}
}
