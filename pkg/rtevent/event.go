// Package rtevent defines RtEvent, the compact value-type event record
// carried across the real-time audio boundary, and Fifo, the
// bounded SPSC queue that carries it. Both are grounded on
// justyntemme/vst3go's pkg/midi (the tagged-variant event design,
// generalized from MIDI-only to the full spec.md §3 variant set) and
// pkg/dsp/buffer/writeahead.go (the lock-free atomic ring buffer
// pattern, generalized from an audio sample ring to a fixed-record
// event ring).
package rtevent

import "github.com/justyntemme/sushi-go/pkg/id"

// Kind identifies which variant of RtEvent a record holds.
type Kind uint8

const (
	NoteOn Kind = iota
	NoteOff
	NoteAftertouch
	WrappedMidi
	ParameterChange
	StringPropertyChange
	AsyncWork
	AsyncWorkCompletion
	TempoChange
	TimeSignatureChange
	PlayingModeChange
	SyncModeChange
	StopEngine
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NOTE_ON"
	case NoteOff:
		return "NOTE_OFF"
	case NoteAftertouch:
		return "NOTE_AFTERTOUCH"
	case WrappedMidi:
		return "WRAPPED_MIDI_EVENT"
	case ParameterChange:
		return "PARAMETER_CHANGE"
	case StringPropertyChange:
		return "STRING_PROPERTY_CHANGE"
	case AsyncWork:
		return "ASYNC_WORK"
	case AsyncWorkCompletion:
		return "ASYNC_WORK_COMPLETION_NOTIFICATION"
	case TempoChange:
		return "TEMPO_CHANGE"
	case TimeSignatureChange:
		return "TIME_SIGNATURE_CHANGE"
	case PlayingModeChange:
		return "PLAYING_MODE_CHANGE"
	case SyncModeChange:
		return "SYNC_MODE_CHANGE"
	case StopEngine:
		return "STOP_ENGINE"
	default:
		return "UNKNOWN"
	}
}

// IsKeyboard reports whether k is one of the keyboard/MIDI-family
// variants that a Track buffers for delivery at the start of its
// processor chain (spec.md §4.3 process_event).
func (k Kind) IsKeyboard() bool {
	switch k {
	case NoteOn, NoteOff, NoteAftertouch, WrappedMidi:
		return true
	default:
		return false
	}
}

// RtEvent is a fixed-size, trivially copyable record. It carries no
// slice, map or interface value, only plain fields and (for the rare
// string-property variant) a non-owning pointer prepared by the
// control thread before the event crosses into the RT domain — so a
// whole RtEvent fits in a cache line and copying it never allocates.
type RtEvent struct {
	kind         Kind
	sampleOffset int32
	processorID  id.ObjectID

	intA   int32
	intB   int32
	floatA float32
	floatB float32
	midi   [3]byte
	str    *string
	evID   id.EventID
}

// Type returns the event's variant kind.
func (e RtEvent) Type() Kind { return e.kind }

// SampleOffset returns the in-block frame offset this event applies at.
func (e RtEvent) SampleOffset() int32 { return e.sampleOffset }

// ProcessorID returns the target (or, for events re-emitted upstream,
// the originating) processor.
func (e RtEvent) ProcessorID() id.ObjectID { return e.processorID }

// Note returns the MIDI note number for NOTE_ON/NOTE_OFF/NOTE_AFTERTOUCH.
func (e RtEvent) Note() int32 { return e.intA }

// Velocity returns the note velocity (0..1) for NOTE_ON/NOTE_OFF/NOTE_AFTERTOUCH.
func (e RtEvent) Velocity() float32 { return e.floatA }

// MidiData returns the raw 3-byte MIDI message for WRAPPED_MIDI_EVENT.
func (e RtEvent) MidiData() [3]byte { return e.midi }

// ParameterID returns the target parameter for PARAMETER_CHANGE.
func (e RtEvent) ParameterID() id.ObjectID { return id.ObjectID(e.intA) }

// Value returns the new value for PARAMETER_CHANGE, or the tempo in BPM
// for TEMPO_CHANGE.
func (e RtEvent) Value() float32 { return e.floatA }

// StringValue returns the new value for STRING_PROPERTY_CHANGE.
func (e RtEvent) StringValue() string {
	if e.str == nil {
		return ""
	}
	return *e.str
}

// EventID returns the non-RT EventID for ASYNC_WORK / ASYNC_WORK_COMPLETION_NOTIFICATION.
func (e RtEvent) EventID() id.EventID { return e.evID }

// Success reports the outcome for ASYNC_WORK_COMPLETION_NOTIFICATION.
func (e RtEvent) Success() bool { return e.intB != 0 }

// TimeSignature returns {numerator, denominator} for TIME_SIGNATURE_CHANGE.
func (e RtEvent) TimeSignature() (numerator, denominator int32) { return e.intA, e.intB }

// PlayingMode returns the new playing mode for PLAYING_MODE_CHANGE.
func (e RtEvent) PlayingMode() int32 { return e.intA }

// SyncMode returns the new sync mode for SYNC_MODE_CHANGE.
func (e RtEvent) SyncMode() int32 { return e.intA }

// WithProcessorID returns a copy of e addressed to a different
// processor. Used by Track to re-emit unconsumed keyboard events
// upstream with the track's own id (spec.md §4.3).
func (e RtEvent) WithProcessorID(p id.ObjectID) RtEvent {
	e.processorID = p
	return e
}

func MakeNoteOn(proc id.ObjectID, offset int32, note int32, velocity float32) RtEvent {
	return RtEvent{kind: NoteOn, processorID: proc, sampleOffset: offset, intA: note, floatA: velocity}
}

func MakeNoteOff(proc id.ObjectID, offset int32, note int32, velocity float32) RtEvent {
	return RtEvent{kind: NoteOff, processorID: proc, sampleOffset: offset, intA: note, floatA: velocity}
}

func MakeNoteAftertouch(proc id.ObjectID, offset int32, note int32, value float32) RtEvent {
	return RtEvent{kind: NoteAftertouch, processorID: proc, sampleOffset: offset, intA: note, floatA: value}
}

func MakeWrappedMidi(proc id.ObjectID, offset int32, data [3]byte) RtEvent {
	return RtEvent{kind: WrappedMidi, processorID: proc, sampleOffset: offset, midi: data}
}

func MakeParameterChange(proc id.ObjectID, offset int32, param id.ObjectID, value float32) RtEvent {
	return RtEvent{kind: ParameterChange, processorID: proc, sampleOffset: offset, intA: int32(param), floatA: value}
}

// MakeStringPropertyChange takes a pointer to a string already owned
// by the control thread; the pointer is only read on the RT side, the
// string it points to must not be mutated afterwards.
func MakeStringPropertyChange(proc id.ObjectID, offset int32, param id.ObjectID, value *string) RtEvent {
	return RtEvent{kind: StringPropertyChange, processorID: proc, sampleOffset: offset, intA: int32(param), str: value}
}

func MakeAsyncWork(proc id.ObjectID, offset int32, evID id.EventID) RtEvent {
	return RtEvent{kind: AsyncWork, processorID: proc, sampleOffset: offset, evID: evID}
}

func MakeAsyncWorkCompletion(proc id.ObjectID, offset int32, evID id.EventID, success bool) RtEvent {
	successInt := int32(0)
	if success {
		successInt = 1
	}
	return RtEvent{kind: AsyncWorkCompletion, processorID: proc, sampleOffset: offset, evID: evID, intB: successInt}
}

func MakeTempoChange(offset int32, tempo float32) RtEvent {
	return RtEvent{kind: TempoChange, sampleOffset: offset, floatA: tempo}
}

func MakeTimeSignatureChange(offset int32, numerator, denominator int32) RtEvent {
	return RtEvent{kind: TimeSignatureChange, sampleOffset: offset, intA: numerator, intB: denominator}
}

func MakePlayingModeChange(offset int32, mode int32) RtEvent {
	return RtEvent{kind: PlayingModeChange, sampleOffset: offset, intA: mode}
}

func MakeSyncModeChange(offset int32, mode int32) RtEvent {
	return RtEvent{kind: SyncModeChange, sampleOffset: offset, intA: mode}
}

func MakeStopEngine(offset int32) RtEvent {
	return RtEvent{kind: StopEngine, sampleOffset: offset}
}
