// Package analysis implements an Internal metering plugin. It passes
// audio through unchanged and publishes the running peak, RMS and
// attack/release-smoothed envelope levels (in dB) into three
// read-only parameters every block — the audio thread is this
// plugin's sole writer of those parameters, same single-writer
// discipline as every other live parameter.
//
// LUFS loudness, stereo correlation, FFT spectrum and phase-scope
// analysis are cut: none of them feed a parameter any other plugin or
// the engine reads, so carrying their windows and FFT tables here
// would be unused weight. What's left is restructured in place rather
// than kept as a wrapper around a shared meter library: the mutexes
// the original meters held are gone too, since a Processor is only
// ever touched by the one audio thread that owns it.
// Registered through engine.RegisterProcessorFactory under
// "builtin.meter".
package analysis

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

const UID = "builtin.meter"

const (
	rmsWindowSamples  = 1024
	peakHoldSeconds   = 3.0
	peakDecayPerSec   = 20.0
	envelopeAttackSec = 0.001
	envelopeReleaseSec = 0.1
)

// peakTracker holds the block peak with a decaying release and a
// separately-timed hold value.
type peakTracker struct {
	sampleRate float64
	peak       float64
	hold       float64
	holdCount  int
}

func (t *peakTracker) process(buf []float32) {
	blockPeak := 0.0
	for _, v := range buf {
		a := math.Abs(float64(v))
		if a > blockPeak {
			blockPeak = a
		}
	}

	decayPerSample := peakDecayPerSec / t.sampleRate / 20.0 * math.Log(10)
	t.peak *= math.Exp(-decayPerSample * float64(len(buf)))
	if blockPeak > t.peak {
		t.peak = blockPeak
	}

	if blockPeak > t.hold {
		t.hold = blockPeak
		t.holdCount = int(peakHoldSeconds * t.sampleRate)
	} else {
		t.holdCount -= len(buf)
		if t.holdCount <= 0 {
			t.hold = t.peak
			t.holdCount = 0
		}
	}
}

func (t *peakTracker) db() float64 {
	if t.peak > 0 {
		return 20.0 * math.Log10(t.peak)
	}
	return -144.0
}

// rmsTracker is a running sum-of-squares over a fixed sliding window.
type rmsTracker struct {
	window   []float64
	writePos int
	sum      float64
	count    int
}

func newRMSTracker(windowSamples int) *rmsTracker {
	return &rmsTracker{window: make([]float64, windowSamples)}
}

func (t *rmsTracker) process(buf []float32) {
	n := len(t.window)
	for _, v := range buf {
		old := t.window[t.writePos]
		t.sum -= old * old
		sq := float64(v)
		t.window[t.writePos] = sq
		t.sum += sq * sq
		t.writePos = (t.writePos + 1) % n
		if t.count < n {
			t.count++
		}
	}
}

func (t *rmsTracker) db() float64 {
	if t.count == 0 {
		return -144.0
	}
	rms := math.Sqrt(t.sum / float64(t.count))
	if rms <= 0 {
		return -144.0
	}
	return 20.0 * math.Log10(rms)
}

// envelopeFollower is a one-pole attack/release absolute-value
// tracker, the same shape used by the dynamics plugins but kept local
// here rather than shared across builtin packages.
type envelopeFollower struct {
	attackCoef, releaseCoef float32
	level                   float32
}

func newEnvelopeFollower(sampleRate float64) *envelopeFollower {
	return &envelopeFollower{
		attackCoef:  float32(math.Exp(-1.0 / (envelopeAttackSec * sampleRate))),
		releaseCoef: float32(math.Exp(-1.0 / (envelopeReleaseSec * sampleRate))),
	}
}

func (f *envelopeFollower) next(x float32) float32 {
	in := float32(math.Abs(float64(x)))
	if in > f.level {
		f.level = in + (f.level-in)*f.attackCoef
	} else {
		f.level = in + (f.level-in)*f.releaseCoef
	}
	return f.level
}

func (f *envelopeFollower) db() float32 {
	if f.level <= 0 {
		return -144.0
	}
	return float32(20.0 * math.Log10(float64(f.level)))
}

// Processor passes audio through unchanged while tracking peak, RMS
// and envelope level on channel 0.
type Processor struct {
	*processor.Base

	peak     peakTracker
	rms      *rmsTracker
	envelope *envelopeFollower

	peakDbID, rmsDbID, envelopeDbID          id.ObjectID
	peakDbValue, rmsDbValue, envelopeDbValue *param.Value
}

func New(maxChannels int) processor.Processor {
	b := processor.NewBase(maxChannels, maxChannels)
	p := &Processor{Base: b}
	p.peakDbID = b.RegisterFloatParameter("peak_db", "Peak", -60.0, -120.0, 12.0, nil)
	p.rmsDbID = b.RegisterFloatParameter("rms_db", "RMS", -60.0, -120.0, 12.0, nil)
	p.envelopeDbID = b.RegisterFloatParameter("envelope_db", "Envelope", -60.0, -120.0, 12.0, nil)

	p.peakDbValue = b.Parameters().Get(p.peakDbID)
	p.rmsDbValue = b.Parameters().Get(p.rmsDbID)
	p.envelopeDbValue = b.Parameters().Get(p.envelopeDbID)

	p.rms = newRMSTracker(rmsWindowSamples)
	p.envelope = newEnvelopeFollower(48000)
	return p
}

func (p *Processor) Init(sampleRate float64) sushierr.Code {
	p.peak = peakTracker{sampleRate: sampleRate}
	p.rms = newRMSTracker(rmsWindowSamples)
	p.envelope = newEnvelopeFollower(sampleRate)
	return sushierr.OK
}

func (p *Processor) ProcessAudio(in, out *sample.Buffer) {
	n := in.ChannelCount()
	if out.ChannelCount() < n {
		n = out.ChannelCount()
	}
	for ch := 0; ch < n; ch++ {
		copy(out.Channel(ch), in.Channel(ch))
	}

	if in.ChannelCount() == 0 {
		return
	}
	src := in.Channel(0)
	p.peak.process(src)
	p.rms.process(src)

	for _, v := range src {
		p.envelope.next(v)
	}

	p.peakDbValue.Set(float32(p.peak.db()))
	p.rmsDbValue.Set(float32(p.rms.db()))
	p.envelopeDbValue.Set(p.envelope.db())
}
