package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

type gainPlugin struct {
	*processor.Base
}

func newGainPlugin() processor.Processor {
	b := processor.NewBase(2, 2)
	b.RegisterFloatParameter("gain", "Gain", 1.0, 0.0, 4.0, nil)
	return &gainPlugin{Base: b}
}

func (p *gainPlugin) ProcessAudio(in, out *sample.Buffer) {
	gain := p.Parameters().List()[0].ID
	v := p.Parameters().Get(gain).Get()
	n := in.ChannelCount()
	for ch := 0; ch < n; ch++ {
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i := range src {
			dst[i] = src[i] * v
		}
	}
}

func TestCreateTrackAndConnectBus(t *testing.T) {
	e := New(2, 2, 48000, 256)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))
	require.Equal(t, sushierr.OK, e.ConnectAudioInputBus(0, 0, "main"))
	require.Equal(t, sushierr.OK, e.ConnectAudioOutputBus(0, 0, "main"))

	in := sample.New(2)
	out := sample.New(2)
	fillChannels(in, 0.5)

	assert.Equal(t, sushierr.OK, e.Process(in, out))
	assert.InDelta(t, float32(0.5), out.Channel(0)[0], 1e-6)
	assert.InDelta(t, float32(0.5), out.Channel(1)[0], 1e-6)
}

func TestCreateTrackDuplicateNameFails(t *testing.T) {
	e := New(2, 2, 48000, 256)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))
	assert.Equal(t, sushierr.InvalidTrackName, e.CreateTrack("main", 2))
}

func TestDeleteTrackRemovesRoutes(t *testing.T) {
	e := New(2, 2, 48000, 256)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))
	require.Equal(t, sushierr.OK, e.ConnectAudioOutputBus(0, 0, "main"))
	require.Equal(t, sushierr.OK, e.DeleteTrack("main"))
	assert.Equal(t, sushierr.InvalidTrackName, e.DeleteTrack("main"))

	_, ok := e.ProcessorByName("main")
	assert.False(t, ok)
}

func TestAddPluginToTrackRejectsNonInternal(t *testing.T) {
	e := New(2, 2, 48000, 256)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))
	_, code := e.AddPluginToTrack("main", "some.vst3.uid", "gain", VST3x)
	assert.Equal(t, sushierr.InvalidPluginUID, code)
}

func TestAddPluginToTrackAndRoundTripParameterChange(t *testing.T) {
	e := New(2, 2, 48000, 256)
	e.RegisterProcessorFactory("builtin.gain", newGainPlugin)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))
	require.Equal(t, sushierr.OK, e.ConnectAudioInputBus(0, 0, "main"))
	require.Equal(t, sushierr.OK, e.ConnectAudioOutputBus(0, 0, "main"))

	pid, code := e.AddPluginToTrack("main", "builtin.gain", "gain1", Internal)
	require.Equal(t, sushierr.OK, code)

	p, ok := e.ProcessorByID(pid)
	require.True(t, ok)
	gainParamID := p.Parameters().List()[0].ID

	ok = e.ToRtFifo().Push(rtevent.MakeParameterChange(pid, 0, gainParamID, 2.0))
	require.True(t, ok)

	in := sample.New(2)
	out := sample.New(2)
	fillChannels(in, 1.0)

	assert.Equal(t, sushierr.OK, e.Process(in, out))
	// parameter change applied before this block's render (testable
	// property: round trip), so gain should already read 2.0.
	assert.InDelta(t, float32(2.0), out.Channel(0)[0], 1e-4)
}

type labeledPlugin struct {
	*processor.Base
}

func newLabeledPlugin() processor.Processor {
	b := processor.NewBase(2, 2)
	b.RegisterStringParameter("label", "Label", "untitled")
	return &labeledPlugin{Base: b}
}

func (p *labeledPlugin) ProcessAudio(in, out *sample.Buffer) {
	n := in.ChannelCount()
	for ch := 0; ch < n; ch++ {
		copy(out.Channel(ch), in.Channel(ch))
	}
}

func TestAddPluginToTrackAndRoundTripStringPropertyChange(t *testing.T) {
	e := New(2, 2, 48000, 256)
	e.RegisterProcessorFactory("builtin.labeled", newLabeledPlugin)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))

	pid, code := e.AddPluginToTrack("main", "builtin.labeled", "labeled1", Internal)
	require.Equal(t, sushierr.OK, code)

	p, ok := e.ProcessorByID(pid)
	require.True(t, ok)
	labelID := p.Parameters().List()[0].ID

	name := "lead vocal"
	ok = e.ToRtFifo().Push(rtevent.MakeStringPropertyChange(pid, 0, labelID, &name))
	require.True(t, ok)

	in := sample.New(2)
	out := sample.New(2)
	require.Equal(t, sushierr.OK, e.Process(in, out))

	assert.Equal(t, "lead vocal", p.Parameters().GetString(labelID).Get())
}

func TestKeyboardEventForwardedToFromRtFifo(t *testing.T) {
	e := New(2, 2, 48000, 256)
	require.Equal(t, sushierr.OK, e.CreateTrack("main", 2))

	trackID, ok := e.ProcessorByName("main")
	require.True(t, ok)

	ok = e.ToRtFifo().Push(rtevent.MakeNoteOn(trackID, 0, 60, 1.0))
	require.True(t, ok)

	in := sample.New(2)
	out := sample.New(2)
	require.Equal(t, sushierr.OK, e.Process(in, out))

	ev, ok := e.FromRtFifo().Pop()
	require.True(t, ok)
	assert.Equal(t, rtevent.NoteOn, ev.Type())
}

func TestProcessRejectsWrongChannelCount(t *testing.T) {
	e := New(2, 2, 48000, 256)
	in := sample.New(1)
	out := sample.New(2)
	assert.Equal(t, sushierr.InvalidChannel, e.Process(in, out))
}

func fillChannels(b *sample.Buffer, v float32) {
	for c := 0; c < b.ChannelCount(); c++ {
		ch := b.Channel(c)
		for i := range ch {
			ch[i] = v
		}
	}
}
