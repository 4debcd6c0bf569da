package dynamics

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// CompressorUID is the identifier passed to engine.AddPluginToTrack
// to instantiate the compressor plugin.
const CompressorUID = "builtin.compressor"

const (
	minThresholdDB = -60.0
	maxThresholdDB = 0.0
	minRatio       = 1.0
	maxRatio       = 20.0
	maxMakeupDB    = 24.0
)

// CompressorProcessor runs a feed-forward compressor per channel: a
// follower tracks each channel's own envelope, and gain reduction
// above threshold_db is applied at a fixed ratio with static makeup
// gain. Channels are compressed independently rather than
// linked-to-the-loudest, trading stereo-image precision for a
// single, allocation-free per-sample loop.
type CompressorProcessor struct {
	*processor.Base

	followers []follower

	thresholdID id.ObjectID
	ratioID     id.ObjectID
	attackID    id.ObjectID
	releaseID   id.ObjectID
	makeupID    id.ObjectID

	thresholdValue *param.Value
	ratioValue     *param.Value
	attackValue    *param.Value
	releaseValue   *param.Value
	makeupValue    *param.Value

	sampleRate float64
}

// NewCompressor builds a CompressorProcessor with maxChannels input
// and output ports.
func NewCompressor(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &CompressorProcessor{Base: b, sampleRate: 48000.0}

	p.thresholdID = b.RegisterFloatParameter("threshold_db", "Threshold", -20.0, minThresholdDB, maxThresholdDB, nil)
	p.ratioID = b.RegisterFloatParameter("ratio", "Ratio", 4.0, minRatio, maxRatio, nil)
	p.attackID = b.RegisterFloatParameter("attack_s", "Attack", 0.005, minAttack, maxAttack, nil)
	p.releaseID = b.RegisterFloatParameter("release_s", "Release", 0.050, minRelease, maxRelease, nil)
	p.makeupID = b.RegisterFloatParameter("makeup_db", "Makeup", 0.0, 0.0, maxMakeupDB, nil)

	p.thresholdValue = b.Parameters().Get(p.thresholdID)
	p.ratioValue = b.Parameters().Get(p.ratioID)
	p.attackValue = b.Parameters().Get(p.attackID)
	p.releaseValue = b.Parameters().Get(p.releaseID)
	p.makeupValue = b.Parameters().Get(p.makeupID)

	p.followers = make([]follower, maxChannels)
	return p
}

// Init remembers the live sample rate for the per-channel followers.
func (p *CompressorProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	return sushierr.OK
}

// ProcessAudio applies feed-forward gain reduction to every channel.
func (p *CompressorProcessor) ProcessAudio(in, out *sample.Buffer) {
	threshold := float64(p.thresholdValue.Get())
	ratio := float64(p.ratioValue.Get())
	makeup := dbToLinear(float64(p.makeupValue.Get()))
	attack := float64(p.attackValue.Get())
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
		f.setTimes(attack, release, p.sampleRate)
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i, x := range src {
			envelope := f.next(x)
			overDB := levelDB(envelope) - threshold
			reduction := 0.0
			if overDB > 0 {
				reduction = overDB * (1.0 - 1.0/ratio)
			}
			dst[i] = x * float32(dbToLinear(-reduction)*makeup)
		}
	}
}
