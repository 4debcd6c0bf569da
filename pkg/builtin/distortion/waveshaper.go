// Package distortion implements two Internal distortion plugins:
// Waveshaper, which selects its transfer curve through a string
// "curve" parameter (a STRING_PROPERTY_CHANGE exercise site alongside
// pkg/builtin/filter's "mode"), and Bitcrusher, which quantizes
// amplitude and sample rate. Registered through
// engine.RegisterProcessorFactory under "builtin.waveshaper" and
// "builtin.bitcrusher".
//
// A tube-saturation stage and the sine/exponential/asymmetric curve
// variants are cut from this set: each is one more transfer function
// on the same switch statement below, not a distinct algorithm, and
// hardclip/softclip/saturate/foldback already cover the shapes this
// plugin set needs to exercise the mix/drive parameters and the
// string-mode dispatch.
package distortion

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
)

// WaveshaperUID is the identifier passed to engine.AddPluginToTrack
// to instantiate the waveshaper plugin.
const WaveshaperUID = "builtin.waveshaper"

const minMix, maxMix = 0.0, 1.0

// shape applies one of the named transfer curves to a driven sample.
func shape(curve string, x float32) float32 {
	switch curve {
	case "hardclip":
		if x > 1 {
			return 1
		}
		if x < -1 {
			return -1
		}
		return x
	case "saturate":
		return float32(math.Tanh(float64(x)))
	case "foldback":
		for x > 1 || x < -1 {
			if x > 1 {
				x = 2 - x
			} else if x < -1 {
				x = -2 - x
			}
		}
		return x
	default: // softclip
		return x / (1 + float32(math.Abs(float64(x))))
	}
}

// WaveshaperProcessor drives every channel's input by its "drive"
// parameter, applies the selected transfer curve, then crossfades
// dry/wet by "mix".
type WaveshaperProcessor struct {
	*processor.Base

	curveID, driveID, mixID id.ObjectID
	curveValue               *param.StringValue
	driveValue, mixValue     *param.Value
}

// NewWaveshaper builds a WaveshaperProcessor with maxChannels input
// and output ports.
func NewWaveshaper(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &WaveshaperProcessor{Base: b}
	p.curveID = b.RegisterStringParameter("curve", "Curve", "softclip")
	p.driveID = b.RegisterFloatParameter("drive", "Drive", 1.0, 1.0, 20.0, nil)
	p.mixID = b.RegisterFloatParameter("mix", "Mix", maxMix, minMix, maxMix, nil)

	p.curveValue = b.Parameters().GetString(p.curveID)
	p.driveValue = b.Parameters().Get(p.driveID)
	p.mixValue = b.Parameters().Get(p.mixID)
	return p
}

// ProcessAudio runs every channel's samples through the selected
// curve, falling back to softclip for an unrecognized mode string.
func (p *WaveshaperProcessor) ProcessAudio(in, out *sample.Buffer) {
	curve := p.curveValue.Get()
	drive := p.driveValue.Get()
	mix := p.mixValue.Get()

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	for ch := 0; ch < n; ch++ {
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i, x := range src {
			wet := shape(curve, x*drive)
			dst[i] = x*(1-mix) + wet*mix
		}
	}
}
