// Package host implements the narrow host-control surface consumed by
// frontends (OSC, the MIDI dispatcher, RPC) — spec.md §4.7 and §6.
// Every operation returns a sushierr.Code rather than a generic error,
// so a frontend can map it to a wire status without inspecting error
// strings. Graph mutation calls pass straight through to the engine
// (which already serializes them); parameter writes and keyboard
// events instead go through the dispatcher's to-RT FIFO, since they
// must reach the audio thread rather than mutate the graph in place.
package host

import (
	"github.com/justyntemme/sushi-go/pkg/dispatcher"
	"github.com/justyntemme/sushi-go/pkg/engine"
	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/param"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
	"github.com/justyntemme/sushi-go/pkg/transport"
)

// Surface is the host-control-surface contract spec.md §6 describes:
// every operation a frontend (OSC, MIDI dispatcher, RPC) needs, none
// of which ever returns a bare Go error. *Host is the only
// implementation in this module, but frontends should depend on
// Surface rather than *Host so a test double can stand in for the
// engine without constructing one.
type Surface interface {
	CreateTrack(name string, channels int) sushierr.Code
	CreateMultibusTrack(name string, inputBusses, outputBusses int) sushierr.Code
	DeleteTrack(name string) sushierr.Code
	AddPluginToTrack(trackName, uid, name string, pluginType engine.PluginType) (id.ObjectID, sushierr.Code)
	RemovePluginFromTrack(trackName string, pid id.ObjectID) sushierr.Code
	ConnectAudioInputChannel(engCh, trackCh int, trackName string) sushierr.Code
	ConnectAudioOutputChannel(engCh, trackCh int, trackName string) sushierr.Code
	ConnectAudioInputBus(engBus, trackBus int, trackName string) sushierr.Code
	ConnectAudioOutputBus(engBus, trackBus int, trackName string) sushierr.Code
	SetSampleRate(hz float64) sushierr.Code
	SetTempo(bpm float64) sushierr.Code
	SetTimeSignature(ts transport.TimeSignature) sushierr.Code
	SetTransportMode(mode transport.PlayingMode) sushierr.Code
	SetTempoSyncMode(mode transport.SyncMode) sushierr.Code
	ListTracks() []string
	ListProcessors() []string
	ListParameters(processorName string) ([]param.Descriptor, sushierr.Code)
	SetParameter(processorName, parameterName string, value float32) sushierr.Code
	GetParameter(processorName, parameterName string) (float32, sushierr.Code)
	SetStringParameter(processorName, parameterName, value string) sushierr.Code
	GetStringParameter(processorName, parameterName string) (string, sushierr.Code)
	SendKeyboardEvent(trackName string, noteOn bool, note int32, velocity float32) sushierr.Code
	DroppedToRt() uint64
	DroppedFromRt() uint64
}

// Host is the control-surface facade over one Engine and its
// Dispatcher.
type Host struct {
	engine *engine.Engine
	disp   *dispatcher.Dispatcher
}

var _ Surface = (*Host)(nil)

// New creates a Host over eng, posting parameter and keyboard events
// through disp's to-RT FIFO.
func New(eng *engine.Engine, disp *dispatcher.Dispatcher) *Host {
	return &Host{engine: eng, disp: disp}
}

// CreateTrack creates a single-bus track.
func (h *Host) CreateTrack(name string, channels int) sushierr.Code {
	return h.engine.CreateTrack(name, channels)
}

// CreateMultibusTrack creates a multibus track.
func (h *Host) CreateMultibusTrack(name string, inputBusses, outputBusses int) sushierr.Code {
	return h.engine.CreateMultibusTrack(name, inputBusses, outputBusses)
}

// DeleteTrack removes a track and everything it owns.
func (h *Host) DeleteTrack(name string) sushierr.Code {
	return h.engine.DeleteTrack(name)
}

// AddPluginToTrack adds a plugin to a track's chain, returning the new
// processor's id on success.
func (h *Host) AddPluginToTrack(trackName, uid, name string, pluginType engine.PluginType) (id.ObjectID, sushierr.Code) {
	return h.engine.AddPluginToTrack(trackName, uid, name, pluginType)
}

// RemovePluginFromTrack removes a previously added plugin.
func (h *Host) RemovePluginFromTrack(trackName string, pid id.ObjectID) sushierr.Code {
	return h.engine.RemovePluginFromTrack(trackName, pid)
}

// ConnectAudioInputChannel routes an engine input channel into a
// track's channel.
func (h *Host) ConnectAudioInputChannel(engCh, trackCh int, trackName string) sushierr.Code {
	return h.engine.ConnectAudioInputChannel(engCh, trackCh, trackName)
}

// ConnectAudioOutputChannel mixes a track's channel into an engine
// output channel.
func (h *Host) ConnectAudioOutputChannel(engCh, trackCh int, trackName string) sushierr.Code {
	return h.engine.ConnectAudioOutputChannel(engCh, trackCh, trackName)
}

// ConnectAudioInputBus routes an engine input bus into a track's bus.
func (h *Host) ConnectAudioInputBus(engBus, trackBus int, trackName string) sushierr.Code {
	return h.engine.ConnectAudioInputBus(engBus, trackBus, trackName)
}

// ConnectAudioOutputBus mixes a track's bus into an engine output bus.
func (h *Host) ConnectAudioOutputBus(engBus, trackBus int, trackName string) sushierr.Code {
	return h.engine.ConnectAudioOutputBus(engBus, trackBus, trackName)
}

// SetSampleRate updates the engine sample rate.
func (h *Host) SetSampleRate(hz float64) sushierr.Code { return h.engine.SetSampleRate(hz) }

// SetTempo updates the transport tempo.
func (h *Host) SetTempo(bpm float64) sushierr.Code { return h.engine.SetTempo(bpm) }

// SetTimeSignature updates the transport time signature.
func (h *Host) SetTimeSignature(ts transport.TimeSignature) sushierr.Code {
	return h.engine.SetTimeSignature(ts)
}

// SetTransportMode updates the transport playing mode.
func (h *Host) SetTransportMode(mode transport.PlayingMode) sushierr.Code {
	return h.engine.SetTransportMode(mode)
}

// SetTempoSyncMode updates the transport's tempo sync source.
func (h *Host) SetTempoSyncMode(mode transport.SyncMode) sushierr.Code {
	return h.engine.SetTempoSyncMode(mode)
}

// ListTracks returns every currently live track name.
func (h *Host) ListTracks() []string { return h.engine.TrackNames() }

// ListProcessors returns every currently live processor name,
// including tracks.
func (h *Host) ListProcessors() []string { return h.engine.ProcessorNames() }

// ListParameters returns the parameter descriptors registered on the
// named processor.
func (h *Host) ListParameters(processorName string) ([]param.Descriptor, sushierr.Code) {
	pid, ok := h.engine.ProcessorByName(processorName)
	if !ok {
		return nil, sushierr.InvalidProcessor
	}
	p, ok := h.engine.ProcessorByID(pid)
	if !ok {
		return nil, sushierr.InvalidProcessor
	}
	return p.Parameters().List(), sushierr.OK
}

// SetParameter posts a parameter change for delivery on the next audio
// block. Resolves processorName/parameterName to ids and returns
// InvalidProcessor/InvalidParameter if either is unknown, or
// QueueFull if the to-RT FIFO has no room.
func (h *Host) SetParameter(processorName, parameterName string, value float32) sushierr.Code {
	pid, paramID, code := h.resolveParameter(processorName, parameterName)
	if code != sushierr.OK {
		return code
	}
	ev := rtevent.MakeParameterChange(pid, 0, paramID, value)
	if !h.disp.PostRtEvent(ev) {
		return sushierr.QueueFull
	}
	return sushierr.OK
}

// GetParameter reads a parameter's current processed value directly;
// parameter values are single-writer atomics, so a non-RT read is
// always safe and needs no round trip through the FIFOs.
func (h *Host) GetParameter(processorName, parameterName string) (float32, sushierr.Code) {
	pid, paramID, code := h.resolveParameter(processorName, parameterName)
	if code != sushierr.OK {
		return 0, code
	}
	p, ok := h.engine.ProcessorByID(pid)
	if !ok {
		return 0, sushierr.InvalidProcessor
	}
	v := p.Parameters().Get(paramID)
	if v == nil {
		return 0, sushierr.InvalidParameter
	}
	return v.Get(), sushierr.OK
}

// SetStringParameter posts a string property change for delivery on
// the next audio block, the STRING_PROPERTY_CHANGE counterpart of
// SetParameter (spec.md §3).
func (h *Host) SetStringParameter(processorName, parameterName, value string) sushierr.Code {
	pid, paramID, code := h.resolveParameter(processorName, parameterName)
	if code != sushierr.OK {
		return code
	}
	ev := rtevent.MakeStringPropertyChange(pid, 0, paramID, &value)
	if !h.disp.PostRtEvent(ev) {
		return sushierr.QueueFull
	}
	return sushierr.OK
}

// GetStringParameter reads a string parameter's current value
// directly; like GetParameter, no round trip through the FIFOs is
// needed since StringValue is single-writer/many-reader.
func (h *Host) GetStringParameter(processorName, parameterName string) (string, sushierr.Code) {
	pid, paramID, code := h.resolveParameter(processorName, parameterName)
	if code != sushierr.OK {
		return "", code
	}
	p, ok := h.engine.ProcessorByID(pid)
	if !ok {
		return "", sushierr.InvalidProcessor
	}
	v := p.Parameters().GetString(paramID)
	if v == nil {
		return "", sushierr.InvalidParameter
	}
	return v.Get(), sushierr.OK
}

func (h *Host) resolveParameter(processorName, parameterName string) (id.ObjectID, id.ObjectID, sushierr.Code) {
	pid, ok := h.engine.ProcessorByName(processorName)
	if !ok {
		return id.Invalid, id.Invalid, sushierr.InvalidProcessor
	}
	p, ok := h.engine.ProcessorByID(pid)
	if !ok {
		return id.Invalid, id.Invalid, sushierr.InvalidProcessor
	}
	for _, d := range p.Parameters().List() {
		if d.ShortName == parameterName {
			return pid, d.ID, sushierr.OK
		}
	}
	return id.Invalid, id.Invalid, sushierr.InvalidParameter
}

// SendKeyboardEvent posts a note on/off event addressed to the named
// track, delivered on the next audio block.
func (h *Host) SendKeyboardEvent(trackName string, noteOn bool, note int32, velocity float32) sushierr.Code {
	pid, ok := h.engine.ProcessorByName(trackName)
	if !ok {
		return sushierr.InvalidTrackName
	}
	var ev rtevent.RtEvent
	if noteOn {
		ev = rtevent.MakeNoteOn(pid, 0, note, velocity)
	} else {
		ev = rtevent.MakeNoteOff(pid, 0, note, velocity)
	}
	if !h.disp.PostRtEvent(ev) {
		return sushierr.QueueFull
	}
	return sushierr.OK
}

// DroppedToRt returns the engine's to-RT drop counter, which no path in
// this module increments (see Engine.DroppedToRt). A post refused
// because the to-RT FIFO is full is reported as QueueFull by the
// posting method instead.
func (h *Host) DroppedToRt() uint64 { return h.engine.DroppedToRt() }

// DroppedFromRt reports how many audio-thread-to-control-thread events
// have been discarded because the from-RT FIFO was full.
func (h *Host) DroppedFromRt() uint64 { return h.engine.DroppedFromRt() }
