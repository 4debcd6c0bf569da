package dynamics

import (
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// GateUID is the identifier passed to engine.AddPluginToTrack to
// instantiate the gate plugin.
const GateUID = "builtin.gate"

const (
	minThresholdDBGate = -80.0
	maxThresholdDBGate = 0.0
	minRangeDB         = -96.0
	maxRangeDB         = 0.0
)

// GateProcessor runs a noise gate per channel: one follower detects
// whether the input is above threshold_db, and a second follower
// smooths the transition between 1.0 (open) and the linear floor
// derived from range_db (closed) at the same attack/release times.
// This replaces the teacher's five-state attack/hold/release machine
// and its optional sidechain high-pass pre-filter with a single
// smoothed gain target — the audible behaviour (fade open above
// threshold, fade toward the floor below it) survives; the bookkeeping
// for a hold phase and pre-filtered detection does not.
type GateProcessor struct {
	*processor.Base

	detectors     []follower
	gainFollowers []follower

	thresholdID id.ObjectID
	attackID    id.ObjectID
	releaseID   id.ObjectID
	rangeID     id.ObjectID

	thresholdValue *param.Value
	attackValue    *param.Value
	releaseValue   *param.Value
	rangeValue     *param.Value

	sampleRate float64
}

// NewGate builds a GateProcessor with maxChannels input and output
// ports.
func NewGate(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &GateProcessor{Base: b, sampleRate: 48000.0}

	p.thresholdID = b.RegisterFloatParameter("threshold_db", "Threshold", -40.0, minThresholdDBGate, maxThresholdDBGate, nil)
	p.attackID = b.RegisterFloatParameter("attack_s", "Attack", 0.001, minAttack, maxAttack, nil)
	p.releaseID = b.RegisterFloatParameter("release_s", "Release", 0.100, minRelease, maxRelease, nil)
	p.rangeID = b.RegisterFloatParameter("range_db", "Range", -80.0, minRangeDB, maxRangeDB, nil)

	p.thresholdValue = b.Parameters().Get(p.thresholdID)
	p.attackValue = b.Parameters().Get(p.attackID)
	p.releaseValue = b.Parameters().Get(p.releaseID)
	p.rangeValue = b.Parameters().Get(p.rangeID)

	p.detectors = make([]follower, maxChannels)
	p.gainFollowers = make([]follower, maxChannels)
	return p
}

// Init remembers the live sample rate for the per-channel followers.
func (p *GateProcessor) Init(sampleRate float64) sushierr.Code {
	p.sampleRate = sampleRate
	return sushierr.OK
}

// ProcessAudio detects the input envelope per channel, then smooths
// the gain toward 1.0 when it's above threshold_db and toward the
// range_db floor when it isn't.
func (p *GateProcessor) ProcessAudio(in, out *sample.Buffer) {
	threshold := float64(p.thresholdValue.Get())
	floor := float32(dbToLinear(float64(p.rangeValue.Get())))
	attack := float64(p.attackValue.Get())
	release := float64(p.releaseValue.Get())

	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	if n > len(p.detectors) {
		n = len(p.detectors)
	}
	for ch := 0; ch < n; ch++ {
		detector := &p.detectors[ch]
		gainFollower := &p.gainFollowers[ch]
		detector.setTimes(attack, release, p.sampleRate)
		gainFollower.setTimes(attack, release, p.sampleRate)

		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i, x := range src {
			level := detector.next(x)
			target := floor
			if levelDB(level) > threshold {
				target = 1.0
			}
			gain := gainFollower.next(target)
			dst[i] = x * float32(gain)
		}
	}
}
