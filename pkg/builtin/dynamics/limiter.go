package dynamics

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// LimiterUID is the identifier passed to engine.AddPluginToTrack to
// instantiate the limiter plugin.
const LimiterUID = "builtin.limiter"

const (
	minCeilingDB  = -24.0
	maxCeilingDB  = 0.0
	limiterAttack = 0.0005
)

// LimiterProcessor runs a brick-wall limiter per channel: a fast
// follower tracks the input envelope, and any excursion above
// ceiling_db is reduced at an effectively infinite ratio. The
// teacher's lookahead delay line and 2x-oversampled true-peak
// estimator are both dropped: lookahead reallocates its delay buffer
// whenever its length changes, which this project's RT-safety
// invariant forbids driving from a live parameter, and true-peak
// detection only matters for a downstream loudness meter this plugin
// set doesn't carry (see pkg/builtin/analysis). A fast-attack
// follower plus a static ratio gets the brick-wall behaviour without
// either.
type LimiterProcessor struct {
	*processor.Base

	followers []follower

	thresholdID id.ObjectID
	releaseID   id.ObjectID

	thresholdValue *param.Value
	releaseValue   *param.Value

	sampleRate float64
}

// NewLimiter builds a LimiterProcessor with maxChannels input and
// output ports.
func NewLimiter(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &LimiterProcessor{Base: b, sampleRate: 48000.0}

	p.thresholdID = b.RegisterFloatParameter("ceiling_db", "Ceiling", -1.0, minCeilingDB, maxCeilingDB, nil)
	p.releaseID = b.RegisterFloatParameter("release_s", "Release", 0.050, minRelease, maxRelease, nil)

	p.thresholdValue = b.Parameters().Get(p.thresholdID)
	p.releaseValue = b.Parameters().Get(p.releaseID)

	p.followers = make([]follower, maxChannels)
	return p
}

// Init remembers the live sample rate for the per-channel followers.
func (p *LimiterProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	return sushierr.OK
}

// ProcessAudio applies brick-wall gain reduction to every channel.
func (p *LimiterProcessor) ProcessAudio(in, out *sample.Buffer) {
	ceiling := float64(p.thresholdValue.Get())
	release := float64(p.releaseValue.Get())

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	if n > len(p.followers) {
		n = len(p.followers)
	}
	for ch := 0; ch < n; ch++ {
		f := &p.followers[ch]
		f.setTimes(limiterAttack, release, p.sampleRate)
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i, x := range src {
			envelope := f.next(x)
			overDB := levelDB(envelope) - ceiling
			if overDB < 0 {
				overDB = 0
			}
			dst[i] = x * float32(dbToLinear(-overDB))
		}
	}
}
