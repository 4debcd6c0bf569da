package distortion

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
)

// BitcrusherUID is the identifier passed to engine.AddPluginToTrack
// to instantiate the bitcrusher plugin.
const BitcrusherUID = "builtin.bitcrusher"

// sampleHold holds a quantized sample across a run of skipped input
// samples, implementing sample-rate reduction without resampling.
type sampleHold struct {
	held    float32
	counter float64
}

// BitcrusherProcessor quantizes each channel's amplitude to multiples
// of 2^-bit_depth and its sample rate by rate_reduce, then crossfades dry/wet
// by mix.
type BitcrusherProcessor struct {
	*processor.Base

	holds []sampleHold

	bitsID, rateReduceID, mixID          id.ObjectID
	bitsValue, rateReduceValue, mixValue *param.Value
}

// NewBitcrusher builds a BitcrusherProcessor with maxChannels input
// and output ports.
func NewBitcrusher(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &BitcrusherProcessor{Base: b}
	p.bitsID = b.RegisterFloatParameter("bit_depth", "Bit Depth", 16.0, 1.0, 32.0, nil)
	p.rateReduceID = b.RegisterFloatParameter("rate_reduce", "Rate Reduce", 1.0, 1.0, 100.0, nil)
	p.mixID = b.RegisterFloatParameter("mix", "Mix", maxMix, minMix, maxMix, nil)

	p.bitsValue = b.Parameters().Get(p.bitsID)
	p.rateReduceValue = b.Parameters().Get(p.rateReduceID)
	p.mixValue = b.Parameters().Get(p.mixID)

	p.holds = make([]sampleHold, maxChannels)
	return p
}

func quantize(x float32, bits float64) float32 {
	levels := math.Pow(2, bits)
	return float32(math.Round(float64(x)*levels) / levels)
}

// ProcessAudio quantizes amplitude, then holds each quantized sample
// for rate_reduce input samples before advancing, and blends the
// result against the dry signal by mix.
func (p *BitcrusherProcessor) ProcessAudio(in, out *sample.Buffer) {
	bits := float64(p.bitsValue.Get())
	rateReduce := float64(p.rateReduceValue.Get())
	mix := p.mixValue.Get()

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	if n > len(p.holds) {
		n = len(p.holds)
	}
	for ch := 0; ch < n; ch++ {
		h := &p.holds[ch]
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i, x := range src {
			if h.counter <= 0 {
				h.held = quantize(x, bits)
				h.counter = rateReduce
			}
			h.counter--
			dst[i] = x*(1-mix) + h.held*mix
		}
	}
}
