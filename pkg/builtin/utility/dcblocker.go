package utility

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

const DCBlockerUID = "builtin.dcblocker"

const (
	minPoleCoef = 0.9
	maxPoleCoef = 0.999
)

// onePoleState is one channel's running input/output history for the
// first-order high-pass y[n] = x[n] - x[n-1] + R*y[n-1].
type onePoleState struct {
	prevIn, prevOut float32
}

func (s *onePoleState) tick(in, coef float32) float32 {
	out := in - s.prevIn + coef*s.prevOut
	s.prevIn = in
	s.prevOut = out
	return out
}

func poleCoefficient(cutoffHz, sampleRate float64) float32 {
	r := float32(1.0 - (2.0*math.Pi*cutoffHz)/sampleRate)
	if r < minPoleCoef {
		r = minPoleCoef
	}
	if r > maxPoleCoef {
		r = maxPoleCoef
	}
	return r
}

// DCBlockerProcessor runs one onePoleState per channel.
type DCBlockerProcessor struct {
	*processor.Base

	states []onePoleState
	coef   float32

	cutoffID    id.ObjectID
	cutoffValue *param.Value

	sampleRate  float64
	maxChannels int
}

func NewDCBlocker(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &DCBlockerProcessor{Base: b, sampleRate: 48000, maxChannels: maxChannels}
	p.cutoffID = b.RegisterFloatParameter("cutoff_hz", "Cutoff", 20.0, 1.0, 200.0, nil)
	p.cutoffValue = b.Parameters().Get(p.cutoffID)

	p.states = make([]onePoleState, maxChannels)
	p.coef = poleCoefficient(float64(p.cutoffValue.Get()), p.sampleRate)
	return p
}

func (p *DCBlockerProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	for i := range p.states {
		p.states[i] = onePoleState{}
	}
	p.coef = poleCoefficient(float64(p.cutoffValue.Get()), sampleRate)
	return sushierr.OK
}

func (p *DCBlockerProcessor) ProcessAudio(in, out *sample.Buffer) {
	p.coef = poleCoefficient(float64(p.cutoffValue.Get()), p.sampleRate)

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	if n > p.maxChannels {
		n = p.maxChannels
	}
	for ch := 0; ch < n; ch++ {
		src := in.Channel(ch)
		dst := out.Channel(ch)
		state := &p.states[ch]
		for i := range src {
			dst[i] = state.tick(src[i], p.coef)
		}
	}
}
