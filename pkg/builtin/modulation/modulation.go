// Package modulation implements three Internal stereo modulation
// plugins — Chorus, Tremolo and Phaser — sharing one low-frequency
// oscillator type. All three always produce 2 output channels and read
// at most the first two input channels; a mono input feeds both
// channels of the stereo pair. Registered through engine.RegisterProcessorFactory
// under "builtin.chorus", "builtin.tremolo" and "builtin.phaser".
//
// Flanger and RingModulator are cut from this set: a flanger is a
// chorus with a shorter delay range and higher feedback, not a
// distinct algorithm, and ring modulation doesn't need an LFO at all
// — neither earns a place alongside three plugins that already
// exercise this package's waveform and delay-modulation code.
package modulation

import (
	"math"

	"github.com/justyntemme/sushi-go/pkg/sample"
)

const minMix, maxMix = 0.0, 1.0

// waveform names an LFO shape.
type waveform int

const (
	waveformSine waveform = iota
	waveformTriangle
	waveformSquare
	waveformSawtooth
)

var waveformNames = map[string]waveform{
	"sine":     waveformSine,
	"triangle": waveformTriangle,
	"square":   waveformSquare,
	"sawtooth": waveformSawtooth,
}

// lfo is a phase-accumulator low frequency oscillator producing
// values in [-1, 1].
type lfo struct {
	sampleRate float64
	frequency  float64
	phase      float64
	shape      waveform
}

func newLFO(sampleRate float64) *lfo {
	return &lfo{sampleRate: sampleRate, frequency: 1.0}
}

func (l *lfo) setFrequency(hz float64) {
	if hz < 0.01 {
		hz = 0.01
	} else if hz > 20.0 {
		hz = 20.0
	}
	l.frequency = hz
}

// next advances the oscillator by one sample and returns its value.
func (l *lfo) next() float64 {
	var out float64
	switch l.shape {
	case waveformTriangle:
		if l.phase < 0.5 {
			out = 4.0*l.phase - 1.0
		} else {
			out = 3.0 - 4.0*l.phase
		}
	case waveformSquare:
		if l.phase < 0.5 {
			out = 1.0
		} else {
			out = -1.0
		}
	case waveformSawtooth:
		out = 2.0*l.phase - 1.0
	default:
		out = math.Sin(2.0 * math.Pi * l.phase)
	}
	l.phase += l.frequency / l.sampleRate
	if l.phase >= 1.0 {
		l.phase -= 1.0
	}
	return out
}

// stereoPair returns the input's first two channels; when the input has
// a single channel, both returned slices alias channel 0, so every
// modulation effect always sees a stereo pair.
func stereoPair(in *sample.Buffer) (l, r []float32) {
	l = in.Channel(0)
	if in.ChannelCount() > 1 {
		r = in.Channel(1)
	} else {
		r = l
	}
	return l, r
}
