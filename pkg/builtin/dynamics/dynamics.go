// Package dynamics implements the Internal dynamics-processing
// plugins (compressor, gate, limiter), each running one instance of
// the matching gain-control algorithm per channel. All three share a
// single envelope follower (a one-pole attack/release smoother on the
// absolute input) rather than three separate ad-hoc detectors, and
// drive it entirely from cached *param.Value pointers so no audio-
// thread call allocates or blocks (spec.md §4.7). Registered through
// engine.RegisterProcessorFactory under "builtin.compressor",
// "builtin.gate" and "builtin.limiter".
//
// The lookahead, true-peak oversampling and multi-state
// attack/hold/release gate machine from a full mastering-grade
// implementation are cut here: each reallocates or branches in ways
// that don't earn their keep for a headless processing graph with no
// UI to show the extra transparency they buy. A plain envelope
// follower plus static gain law covers the functional requirement
// (attenuate/expand around a threshold) without the bookkeeping.
package dynamics

import "math"

const (
	minAttack  = 0.0001
	maxAttack  = 1.0
	minRelease = 0.001
	maxRelease = 5.0
)

// follower is a one-pole envelope follower: it tracks the absolute
// value of its input, rising at attackCoef and falling at
// releaseCoef.
type follower struct {
	attackCoef, releaseCoef float64
	level                   float64
}

func (f *follower) setTimes(attackSeconds, releaseSeconds, sampleRate float64) {
	if attackSeconds < minAttack {
		attackSeconds = minAttack
	}
	if releaseSeconds < minRelease {
		releaseSeconds = minRelease
	}
	f.attackCoef = math.Exp(-1.0 / (attackSeconds * sampleRate))
	f.releaseCoef = math.Exp(-1.0 / (releaseSeconds * sampleRate))
}

// next advances the follower by one sample and returns the new level.
func (f *follower) next(x float32) float64 {
	in := math.Abs(float64(x))
	if in > f.level {
		f.level = in + (f.level-in)*f.attackCoef
	} else {
		f.level = in + (f.level-in)*f.releaseCoef
	}
	return f.level
}

// levelDB converts a linear level to dB, flooring at -144dB instead
// of -Inf so downstream arithmetic stays finite.
func levelDB(linear float64) float64 {
	if linear <= 0 {
		return -144.0
	}
	return 20.0 * math.Log10(linear)
}

func dbToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}
