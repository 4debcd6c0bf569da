// Package delay implements an Internal feedback delay plugin: a comb
// filter delay line per channel, with high-frequency damping folded
// into the feedback path, exposed through delay_ms, feedback, damping
// and mix parameters. Registered through
// engine.RegisterProcessorFactory under the uid "builtin.delay".
package delay

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

const maxDelaySeconds = 2.0
const maxFeedback = 0.99

// UID is the identifier passed to engine.AddPluginToTrack to
// instantiate this plugin.
const UID = "builtin.delay"

// combLine is a circular delay buffer with linear-interpolated reads
// and a damped feedback path — a comb filter.
type combLine struct {
	buf      []float32
	writePos int
	feedback float32
	damp     float32
	damped   float32
}

func newCombLine(maxSeconds, sampleRate float64) *combLine {
	size := int(maxSeconds*sampleRate) + 1
	return &combLine{buf: make([]float32, size)}
}

// tick reads the delayed sample at delaySamples, writes input plus
// the damped feedback, and returns the delayed (wet) sample.
func (c *combLine) tick(input float32, delaySamples float64) float32 {
	n := float64(len(c.buf))
	readPos := float64(c.writePos) - delaySamples
	if readPos < 0 {
		readPos += n
	}
	i0 := int(readPos)
	frac := float32(readPos - float64(i0))
	i1 := i0 + 1
	if i1 >= len(c.buf) {
		i1 = 0
	}
	wet := c.buf[i0]*(1-frac) + c.buf[i1]*frac

	c.damped = wet*(1-c.damp) + c.damped*c.damp
	c.buf[c.writePos] = input + c.damped*c.feedback
	c.writePos++
	if c.writePos >= len(c.buf) {
		c.writePos = 0
	}
	return wet
}

func (c *combLine) process(buf []float32, delaySamples float64) {
	for i, x := range buf {
		buf[i] = c.tick(x, delaySamples)
	}
}

// Processor runs one combLine per channel, each independently
// addressed by the same delay_ms/feedback/damping parameters.
type Processor struct {
	*processor.Base

	lines []*combLine

	delayMsID  id.ObjectID
	feedbackID id.ObjectID
	dampingID  id.ObjectID
	mixID      id.ObjectID

	delayMsValue  *param.Value
	feedbackValue *param.Value
	dampingValue  *param.Value
	mixValue      *param.Value

	sampleRate float64
}

// New builds a Processor with maxChannels input and output ports.
func New(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &Processor{Base: b, sampleRate: 48000.0}
	p.delayMsID = b.RegisterFloatParameter("delay_ms", "Delay", 250.0, 1.0, maxDelaySeconds*1000.0, nil)
	p.feedbackID = b.RegisterFloatParameter("feedback", "Feedback", 0.35, 0.0, maxFeedback, nil)
	p.dampingID = b.RegisterFloatParameter("damping", "Damping", 0.2, 0.0, 1.0, nil)
	p.mixID = b.RegisterFloatParameter("mix", "Mix", 0.35, 0.0, 1.0, nil)

	p.delayMsValue = b.Parameters().Get(p.delayMsID)
	p.feedbackValue = b.Parameters().Get(p.feedbackID)
	p.dampingValue = b.Parameters().Get(p.dampingID)
	p.mixValue = b.Parameters().Get(p.mixID)

	p.lines = make([]*combLine, maxChannels)
	for ch := range p.lines {
		p.lines[ch] = newCombLine(maxDelaySeconds, p.sampleRate)
	}
	return p
}

// Init rebuilds the per-channel delay lines at the live sample rate.
func (p *Processor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	for ch := range p.lines {
		p.lines[ch] = newCombLine(maxDelaySeconds, sampleRate)
	}
	return sushierr.OK
}

// ProcessAudio runs the feedback delay over every channel, applying
// the shared feedback/damping settings and blending dry/wet per the
// mix parameter.
func (p *Processor) ProcessAudio(in, out *sample.Buffer) {
	delaySamples := float64(p.delayMsValue.Get()) * p.sampleRate / 1000.0
	feedback := p.feedbackValue.Get()
	damping := p.dampingValue.Get()
	mixAmount := p.mixValue.Get()

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	if n > len(p.lines) {
		n = len(p.lines)
	}
	for ch := 0; ch < n; ch++ {
		line := p.lines[ch]
		line.feedback = feedback
		line.damp = damping
		src := in.Channel(ch)
		dst := out.Channel(ch)
		copy(dst, src)
		line.process(dst, delaySamples)
		for i := range dst {
			dst[i] = src[i]*(1-mixAmount) + dst[i]*mixAmount
		}
	}
}
