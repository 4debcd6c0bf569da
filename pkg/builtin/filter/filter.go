// Package filter implements an Internal biquad filter plugin,
// selectable between the classic EQ topologies (lowpass, highpass,
// bandpass, notch, allpass, peaking, low/high shelf) through a string
// "mode" parameter — this is the plugin's STRING_PROPERTY_CHANGE
// exercise, delivered the same way a float parameter is but carrying
// text instead. The biquad itself runs Direct Form I per channel with
// pre-allocated state, recomputed only when cutoff, Q, gain or mode
// actually move between blocks. Registered through
// engine.RegisterProcessorFactory under the uid "builtin.filter".
package filter

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// UID is the identifier passed to engine.AddPluginToTrack to
// instantiate this plugin.
const UID = "builtin.filter"

const (
	minFrequency  = 20.0
	maxFrequency  = 20000.0
	defaultMidHz  = 1000.0
	minQ          = 0.1
	maxQ          = 20.0
	defaultQ      = 0.707
	minGainDB     = -24.0
	maxGainDB     = 24.0
	defaultRate   = 48000.0
	cutoffSmooth  = 0.2 // one-pole smoothing coefficient on cutoff_hz
)

// biquadState holds the Direct Form I coefficients and per-channel
// history for one second-order IIR section.
type biquadState struct {
	b0, b1, b2 float32
	a1, a2     float32
	x1, x2     []float32
	y1, y2     []float32
}

func newBiquadState(channels int) *biquadState {
	return &biquadState{
		x1: make([]float32, channels),
		x2: make([]float32, channels),
		y1: make([]float32, channels),
		y2: make([]float32, channels),
	}
}

func (b *biquadState) setCoefficients(b0, b1, b2, a0, a1, a2 float64) {
	invA0 := 1.0 / a0
	b.b0 = float32(b0 * invA0)
	b.b1 = float32(b1 * invA0)
	b.b2 = float32(b2 * invA0)
	b.a1 = float32(a1 * invA0)
	b.a2 = float32(a2 * invA0)
}

// run filters buf in place on the given channel's history.
func (b *biquadState) run(buf []float32, ch int) {
	x1, x2, y1, y2 := b.x1[ch], b.x2[ch], b.y1[ch], b.y2[ch]
	for i, x0 := range buf {
		y0 := b.b0*x0 + b.b1*x1 + b.b2*x2 - b.a1*y1 - b.a2*y2
		x2, x1 = x1, x0
		y2, y1 = y1, y0
		buf[i] = y0
	}
	b.x1[ch], b.x2[ch], b.y1[ch], b.y2[ch] = x1, x2, y1, y2
}

// coefficients for every supported topology, ITU/RBJ cookbook form.
func design(mode string, sampleRate, freq, q, gainDB float64) (b0, b1, b2, a0, a1, a2 float64) {
	omega := 2.0 * math.Pi * freq / sampleRate
	sinO, cosO := math.Sin(omega), math.Cos(omega)
	alpha := sinO / (2.0 * q)

	switch mode {
	case "highpass":
		b0, b1, b2 = (1+cosO)/2, -(1 + cosO), (1+cosO)/2
		a0, a1, a2 = 1+alpha, -2*cosO, 1-alpha
	case "bandpass":
		b0, b1, b2 = alpha, 0, -alpha
		a0, a1, a2 = 1+alpha, -2*cosO, 1-alpha
	case "notch":
		b0, b1, b2 = 1, -2*cosO, 1
		a0, a1, a2 = 1+alpha, -2*cosO, 1-alpha
	case "allpass":
		b0, b1, b2 = 1-alpha, -2*cosO, 1+alpha
		a0, a1, a2 = 1+alpha, -2*cosO, 1-alpha
	case "peaking":
		A := math.Pow(10.0, gainDB/40.0)
		b0, b1, b2 = 1+alpha*A, -2*cosO, 1-alpha*A
		a0, a1, a2 = 1+alpha/A, -2*cosO, 1-alpha/A
	case "lowshelf":
		A := math.Pow(10.0, gainDB/40.0)
		sqrtAAlpha := 2 * math.Sqrt(A) * alpha
		b0 = A * ((A + 1) - (A-1)*cosO + sqrtAAlpha)
		b1 = 2 * A * ((A - 1) - (A+1)*cosO)
		b2 = A * ((A + 1) - (A-1)*cosO - sqrtAAlpha)
		a0 = (A + 1) + (A-1)*cosO + sqrtAAlpha
		a1 = -2 * ((A - 1) + (A+1)*cosO)
		a2 = (A + 1) + (A-1)*cosO - sqrtAAlpha
	case "highshelf":
		A := math.Pow(10.0, gainDB/40.0)
		sqrtAAlpha := 2 * math.Sqrt(A) * alpha
		b0 = A * ((A + 1) + (A-1)*cosO + sqrtAAlpha)
		b1 = -2 * A * ((A - 1) + (A+1)*cosO)
		b2 = A * ((A + 1) + (A-1)*cosO - sqrtAAlpha)
		a0 = (A + 1) - (A-1)*cosO + sqrtAAlpha
		a1 = 2 * ((A - 1) - (A+1)*cosO)
		a2 = (A + 1) - (A-1)*cosO - sqrtAAlpha
	default: // lowpass
		b0, b1, b2 = (1-cosO)/2, 1-cosO, (1-cosO)/2
		a0, a1, a2 = 1+alpha, -2*cosO, 1-alpha
	}
	return
}

// Processor applies a biquad filter, recomputing coefficients only
// when cutoff, Q or mode actually change between blocks.
type Processor struct {
	*processor.Base

	biquad *biquadState

	cutoffID id.ObjectID
	qID      id.ObjectID
	gainID   id.ObjectID
	modeID   id.ObjectID

	cutoffValue *param.Value
	qValue      *param.Value
	gainValue   *param.Value
	modeValue   *param.StringValue

	sampleRate float64

	lastCutoff, lastQ, lastGain float32
	lastMode                    string
	smoothedCutoff              float32
}

// New builds a Processor with maxChannels input and output ports.
func New(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &Processor{
		Base:       b,
		biquad:     newBiquadState(maxChannels),
		sampleRate: defaultRate,
	}
	p.cutoffID = b.RegisterFloatParameter("cutoff_hz", "Cutoff", defaultMidHz, minFrequency, maxFrequency, nil)
	p.qID = b.RegisterFloatParameter("q", "Q", defaultQ, minQ, maxQ, nil)
	p.gainID = b.RegisterFloatParameter("gain_db", "Gain", 0.0, minGainDB, maxGainDB, nil)
	p.modeID = b.RegisterStringParameter("mode", "Mode", "lowpass")

	p.cutoffValue = b.Parameters().Get(p.cutoffID)
	p.qValue = b.Parameters().Get(p.qID)
	p.gainValue = b.Parameters().Get(p.gainID)
	p.modeValue = b.Parameters().GetString(p.modeID)
	p.smoothedCutoff = defaultMidHz
	return p
}

// Init remembers the live sample rate so coefficient recomputation
// uses the real rate instead of the construction-time default.
func (p *Processor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	p.recompute(true)
	return sushierr.OK
}

// recompute derives biquad coefficients from the current parameter
// values, smoothing the cutoff with a one-pole filter so cutoff or
// mode changes don't click.
func (p *Processor) recompute(force bool) {
	cutoff := p.cutoffValue.Get()
	q := p.qValue.Get()
	gain := p.gainValue.Get()
	mode := p.modeValue.Get()

	p.smoothedCutoff += (cutoff - p.smoothedCutoff) * cutoffSmooth
	clamped := p.smoothedCutoff
	if clamped < minFrequency {
		clamped = minFrequency
	} else if clamped > maxFrequency {
		clamped = maxFrequency
	}

	if !force && clamped == p.lastCutoff && q == p.lastQ && gain == p.lastGain && mode == p.lastMode {
		return
	}
	p.lastCutoff, p.lastQ, p.lastGain, p.lastMode = clamped, q, gain, mode

	b0, b1, b2, a0, a1, a2 := design(mode, p.sampleRate, float64(clamped), float64(q), float64(gain))
	p.biquad.setCoefficients(b0, b1, b2, a0, a1, a2)
}

// ProcessAudio recomputes coefficients (if the parameters moved) then
// runs the biquad over every channel in place.
func (p *Processor) ProcessAudio(in, out *sample.Buffer) {
	p.recompute(false)
	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	for ch := 0; ch < n; ch++ {
		copy(out.Channel(ch), in.Channel(ch))
		p.biquad.run(out.Channel(ch), ch)
	}
}
