// Package gain implements an Internal gain plugin: it multiplies every
// channel by a linear gain derived from its "gain_db" parameter. This
// is the simplest possible Internal plugin and doubles as the
// engine's smoke-test / demo plugin, wired through
// engine.RegisterProcessorFactory under the uid "builtin.gain".
package gain

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
)

// UID is the identifier passed to engine.AddPluginToTrack to
// instantiate this plugin.
const UID = "builtin.gain"

// minDB is the floor below which a dB value is treated as silence
// rather than fed through math.Pow.
const minDB = -200.0

// Processor applies a dB gain, read from its "gain_db" parameter, to
// every channel uniformly.
type Processor struct {
	*processor.Base
	gainID    id.ObjectID
	gainValue *param.Value
}

// New builds a Processor with maxChannels input and output ports.
func New(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &Processor{Base: b}
	p.gainID = b.RegisterFloatParameter("gain_db", "Gain", 0.0, minDB, 24.0, nil)
	p.gainValue = b.Parameters().Get(p.gainID)
	return p
}

// ProcessAudio multiplies every channel by the current linear gain
// derived from the gain_db parameter. Reads gainValue directly rather
// than through Parameters().Get, which takes the registry's mutex; the
// cached *param.Value pointer is safe to read from the audio thread
// (spec.md §4.7), matching the pattern pkg/track uses for its own
// gain/pan parameters.
func (p *Processor) ProcessAudio(in, out *sample.Buffer) {
	linear := dbToLinear(p.gainValue.Get())
	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	for ch := 0; ch < n; ch++ {
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i, v := range src {
			dst[i] = v * linear
		}
	}
}

func dbToLinear(db float32) float32 {
	if db <= minDB {
		return 0
	}
	return float32(math.Pow(10.0, float64(db)/20.0))
}
