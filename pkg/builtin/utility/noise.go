// Package utility implements two Internal utility plugins, each with
// its algorithm restructured directly into the plugin type rather
// than wrapping a shared library type: a noise generator (white or
// pink, selectable through a string "type" parameter) and a DC
// blocker (a first-order leaky-integrator high-pass). Registered
// through engine.RegisterProcessorFactory under "builtin.noise" and
// "builtin.dcblocker".
//
// Brown, blue and violet noise are cut: none of them add a texture a
// synthesis or testing chain needs beyond what white and pink already
// cover, and the Gaussian generator the teacher carried alongside
// them was never reachable from any parameter.
package utility

import (
	"math/rand"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

const NoiseUID = "builtin.noise"

const pinkRowCount = 16

var noiseTypeNames = map[string]bool{
	"white": true,
	"pink":  true,
}

// pinkGenerator implements the Voss-McCartney algorithm: a set of
// randomly-updated rows summed together approximate a 1/f spectrum.
type pinkGenerator struct {
	rows       [pinkRowCount]float32
	runningSum float32
	index      int
}

func (g *pinkGenerator) next(src *rand.Rand) float32 {
	g.index = (g.index + 1) % pinkRowCount
	if g.index != 0 {
		row := trailingZeros(g.index)
		g.runningSum -= g.rows[row]
		g.rows[row] = whiteSample(src)
		g.runningSum += g.rows[row]
	}
	out := (g.runningSum + whiteSample(src)) / 20.0
	if out > 1.0 {
		out = 1.0
	} else if out < -1.0 {
		out = -1.0
	}
	return out
}

func trailingZeros(v int) int {
	n := 0
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

func whiteSample(src *rand.Rand) float32 {
	return float32(src.Float64()*2.0 - 1.0)
}

// NoiseProcessor is a generator: it ignores its input and writes
// noise identically to every output channel.
type NoiseProcessor struct {
	*processor.Base

	src  *rand.Rand
	pink pinkGenerator

	levelID    id.ObjectID
	typeID     id.ObjectID
	levelValue *param.Value
	typeValue  *param.StringValue
}

func NewNoise(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &NoiseProcessor{Base: b, src: rand.New(rand.NewSource(1))}
	p.levelID = b.RegisterFloatParameter("level", "Level", 0.2, 0.0, 1.0, nil)
	p.typeID = b.RegisterStringParameter("type", "Noise Type", "white")

	p.levelValue = b.Parameters().Get(p.levelID)
	p.typeValue = b.Parameters().GetString(p.typeID)
	return p
}

func (p *NoiseProcessor) Init(sampleRate float64) sushierr.Code {
	return sushierr.OK
}

func (p *NoiseProcessor) next() float32 {
	noiseType := p.typeValue.Get()
	if !noiseTypeNames[noiseType] {
		noiseType = "white"
	}
	if noiseType == "pink" {
		return p.pink.next(p.src)
	}
	return whiteSample(p.src)
}

func (p *NoiseProcessor) ProcessAudio(in, out *sample.Buffer) {
	level := p.levelValue.Get()

	n := out.ChannelCount()
	if n == 0 {
		return
	}
	dst := out.Channel(0)
	for i := range dst {
		dst[i] = p.next() * level
	}
	for ch := 1; ch < n; ch++ {
		copy(out.Channel(ch), dst)
	}
}
