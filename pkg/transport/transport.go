// Package transport holds the engine-wide musical clock state: tempo,
// time signature, playing mode, and sync source (spec.md §3, §4.7).
// It is read by the audio thread every block; its settings are written
// through the non-RT control surface and its sample position is
// advanced by the audio thread, so every field is an atomic rather than
// protected by a mutex — matching the single-writer discipline
// pkg/param.Value already uses for individual parameters.
package transport

import (
	"math"
	"sync/atomic"
)

// PlayingMode is the engine's transport state.
type PlayingMode uint8

const (
	Stopped PlayingMode = iota
	Playing
	Recording
)

func (m PlayingMode) String() string {
	switch m {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Recording:
		return "recording"
	default:
		return "unknown"
	}
}

// SyncMode names the source the engine's tempo tracks.
type SyncMode uint8

const (
	Internal SyncMode = iota
	MidiSlave
	AbletonLink
)

func (m SyncMode) String() string {
	switch m {
	case Internal:
		return "internal"
	case MidiSlave:
		return "midi_slave"
	case AbletonLink:
		return "ableton_link"
	default:
		return "unknown"
	}
}

// TimeSignature is a musical time signature, e.g. 4/4.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// DefaultTimeSignature is 4/4, the engine's initial value.
var DefaultTimeSignature = TimeSignature{Numerator: 4, Denominator: 4}

// packTimeSignature packs a TimeSignature into a single uint64 so it can
// live behind one atomic.Uint64: numerator in the high 32 bits,
// denominator in the low 32 bits.
func packTimeSignature(ts TimeSignature) uint64 {
	return uint64(uint32(ts.Numerator))<<32 | uint64(uint32(ts.Denominator))
}

func unpackTimeSignature(packed uint64) TimeSignature {
	return TimeSignature{
		Numerator:   int(uint32(packed >> 32)),
		Denominator: int(uint32(packed)),
	}
}

// Transport holds the engine's shared clock state, safe for one
// non-RT writer and any number of RT/non-RT readers.
type Transport struct {
	tempoBits     atomic.Uint64 // bits of a float64, via math.Float64bits
	timeSignature atomic.Uint64
	playingMode   atomic.Uint32
	syncMode      atomic.Uint32
	sampleRate    atomic.Uint64 // bits of a float64, via math.Float64bits
	currentSample atomic.Int64
}

// New creates a Transport at 120 BPM, 4/4, stopped, internal sync, at
// the given sample rate.
func New(sampleRate float64) *Transport {
	t := &Transport{}
	t.SetTempo(120.0)
	t.SetTimeSignature(DefaultTimeSignature)
	t.SetPlayingMode(Stopped)
	t.SetSyncMode(Internal)
	t.SetSampleRate(sampleRate)
	return t
}

// Tempo returns the current tempo in beats per minute.
func (t *Transport) Tempo() float64 {
	return math.Float64frombits(t.tempoBits.Load())
}

// SetTempo sets the current tempo in beats per minute.
func (t *Transport) SetTempo(bpm float64) {
	t.tempoBits.Store(math.Float64bits(bpm))
}

// TimeSignature returns the current time signature.
func (t *Transport) TimeSignature() TimeSignature {
	return unpackTimeSignature(t.timeSignature.Load())
}

// SetTimeSignature sets the current time signature.
func (t *Transport) SetTimeSignature(ts TimeSignature) {
	t.timeSignature.Store(packTimeSignature(ts))
}

// PlayingMode returns the current transport playing mode.
func (t *Transport) PlayingMode() PlayingMode {
	return PlayingMode(t.playingMode.Load())
}

// SetPlayingMode sets the current transport playing mode.
func (t *Transport) SetPlayingMode(m PlayingMode) {
	t.playingMode.Store(uint32(m))
}

// SyncMode returns the current tempo sync source.
func (t *Transport) SyncMode() SyncMode {
	return SyncMode(t.syncMode.Load())
}

// SetSyncMode sets the current tempo sync source.
func (t *Transport) SetSyncMode(m SyncMode) {
	t.syncMode.Store(uint32(m))
}

// SampleRate returns the engine's configured sample rate in Hz.
func (t *Transport) SampleRate() float64 {
	bits := t.sampleRate.Load()
	return math.Float64frombits(bits)
}

// SetSampleRate sets the engine's sample rate in Hz.
func (t *Transport) SetSampleRate(hz float64) {
	t.sampleRate.Store(math.Float64bits(hz))
}

// CurrentSamplePos returns the number of samples processed since the
// transport last started playing from zero.
func (t *Transport) CurrentSamplePos() int64 {
	return t.currentSample.Load()
}

// AdvanceSamplePos is called once per audio block by the RT thread to
// advance the sample position, only while playing.
func (t *Transport) AdvanceSamplePos(n int) {
	if t.PlayingMode() != Stopped {
		t.currentSample.Add(int64(n))
	}
}

// ResetSamplePos zeroes the sample position, e.g. on stop or seek.
func (t *Transport) ResetSamplePos() {
	t.currentSample.Store(0)
}
