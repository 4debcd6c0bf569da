package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
)

// capChannelsProcessor is a minimal processor whose Max* channels are
// fixed at construction, used to exercise chain negotiation (spec.md
// testable property 1 / scenario S3).
type capChannelsProcessor struct {
	*processor.Base
}

func newCapProcessor(maxIn, maxOut int) *capChannelsProcessor {
	return &capChannelsProcessor{Base: processor.NewBase(maxIn, maxOut)}
}

func fillBuffer(b *sample.Buffer, v float32) {
	for c := 0; c < b.ChannelCount(); c++ {
		ch := b.Channel(c)
		for i := range ch {
			ch[i] = v
		}
	}
}

func TestS1MonoTrackIdentity(t *testing.T) {
	tr := NewSimple(1)
	fillBuffer(tr.InputBuffer(), 1.0)

	tr.Render()

	out := tr.OutputBuffer()
	assert.InDelta(t, float32(1.0), out.Channel(0)[0], 1e-6)
}

func TestS2PanHardLeft(t *testing.T) {
	tr := NewSimple(2)
	gainID := tr.Parameters().List()[0].ID
	panID := tr.Parameters().List()[1].ID
	tr.Parameters().Get(gainID).Set(0.0) // 0dB -> linear 1.0
	tr.Parameters().Get(panID).Set(-1.0)

	fillBuffer(tr.InputBuffer(), 1.0)
	tr.Render()

	out := tr.OutputBuffer()
	assert.InDelta(t, float32(0.293), out.Channel(0)[0], 1e-4) // L
	assert.InDelta(t, float32(0.0), out.Channel(1)[0], 1e-6)   // R
}

func TestPanCenterIsUnityBothChannels(t *testing.T) {
	tr := NewSimple(2)
	gainID := tr.Parameters().List()[0].ID
	panID := tr.Parameters().List()[1].ID
	tr.Parameters().Get(gainID).Set(0.0) // 0dB -> linear 1.0
	tr.Parameters().Get(panID).Set(0.0)

	fillBuffer(tr.InputBuffer(), 1.0)
	tr.Render()

	out := tr.OutputBuffer()
	assert.InDelta(t, float32(1.0), out.Channel(0)[0], 1e-6) // L
	assert.InDelta(t, float32(1.0), out.Channel(1)[0], 1e-6) // R
}

func TestPanHardRight(t *testing.T) {
	tr := NewSimple(2)
	gainID := tr.Parameters().List()[0].ID
	panID := tr.Parameters().List()[1].ID
	tr.Parameters().Get(gainID).Set(0.0) // 0dB -> linear 1.0
	tr.Parameters().Get(panID).Set(1.0)

	fillBuffer(tr.InputBuffer(), 1.0)
	tr.Render()

	out := tr.OutputBuffer()
	assert.InDelta(t, float32(0.0), out.Channel(0)[0], 1e-6)   // L
	assert.InDelta(t, float32(0.293), out.Channel(1)[0], 1e-4) // R
}

func TestS3ChainNegotiation(t *testing.T) {
	tr := NewSimple(2)
	a := newCapProcessor(8, 8)
	b := newCapProcessor(2, 2)
	c := newCapProcessor(8, 8)

	require.True(t, tr.Add(a))
	require.True(t, tr.Add(b))
	require.True(t, tr.Add(c))

	assert.Equal(t, 2, a.InputChannels())
	assert.Equal(t, 2, a.OutputChannels())
	assert.Equal(t, 2, b.InputChannels())
	assert.Equal(t, 2, b.OutputChannels())
	assert.Equal(t, 2, c.InputChannels())
	assert.Equal(t, 2, c.OutputChannels())
}

func TestNoSelfInsertion(t *testing.T) {
	tr := NewSimple(2)
	assert.False(t, tr.Add(tr))
}

func TestAddSameProcessorTwiceFails(t *testing.T) {
	tr := NewSimple(2)
	p := newCapProcessor(2, 2)
	require.True(t, tr.Add(p))
	assert.False(t, tr.Add(p))
}

func TestAddRejectsWhenFull(t *testing.T) {
	tr := NewSimple(2)
	for i := 0; i < MaxProcessors; i++ {
		require.True(t, tr.Add(newCapProcessor(2, 2)))
	}
	assert.False(t, tr.Add(newCapProcessor(2, 2)))
}

func TestRemove(t *testing.T) {
	tr := NewSimple(2)
	p := newCapProcessor(2, 2)
	require.True(t, tr.Add(p))
	require.True(t, tr.Remove(p.ID()))
	assert.False(t, tr.Remove(p.ID()))
}

func TestS5KeyboardForwardingFromEmptyChain(t *testing.T) {
	tr := NewSimple(2)
	sink := &captureSink{}
	tr.SetEventOutput(sink)

	tr.ProcessEvent(rtevent.MakeNoteOn(999, 0, 60, 1.0))
	tr.Render()

	require.Len(t, sink.events, 1)
	got := sink.events[0]
	assert.Equal(t, rtevent.NoteOn, got.Type())
	assert.Equal(t, tr.ID(), got.ProcessorID())
	assert.EqualValues(t, 60, got.Note())
	assert.InDelta(t, 1.0, got.Velocity(), 1e-6)
}

type captureSink struct {
	events []rtevent.RtEvent
}

func (c *captureSink) OutputEvent(e rtevent.RtEvent) {
	c.events = append(c.events, e)
}

func TestBypassPropagatesAndIsIdentityForPassthroughProcessors(t *testing.T) {
	tr := NewSimple(2)
	p := newCapProcessor(2, 2) // default ProcessAudio is passthrough
	require.True(t, tr.Add(p))

	tr.SetBypassed(true)
	assert.True(t, p.Bypassed())

	fillBuffer(tr.InputBuffer(), 0.42)
	tr.Render()

	out := tr.OutputBuffer()
	// gain/pan default to unity/center, so with an identity chain the
	// common channel subset should equal the input, bit for bit.
	assert.Equal(t, float32(0.42), out.Channel(0)[0])
	assert.Equal(t, float32(0.42), out.Channel(1)[0])
}

func TestMultibusRegistersGainPanPerBus(t *testing.T) {
	tr := NewMultibus(1, 2)
	assert.Equal(t, 2, tr.OutputBusses())
	assert.Len(t, tr.Parameters().List(), 4) // gain/pan per bus x2

	names := make([]string, 0)
	for _, d := range tr.Parameters().List() {
		names = append(names, d.ShortName)
	}
	assert.Contains(t, names, "gain_main")
	assert.Contains(t, names, "pan_main")
	assert.Contains(t, names, "gain_sub_1")
	assert.Contains(t, names, "pan_sub_1")
}

func TestChainRotatesOutputIntoNextInput(t *testing.T) {
	tr := NewSimple(2)
	doubling := &doublingProcessor{Base: processor.NewBase(2, 2)}
	require.True(t, tr.Add(doubling))
	require.True(t, tr.Add(&doublingProcessor{Base: processor.NewBase(2, 2)}))

	fillBuffer(tr.InputBuffer(), 1.0)
	tr.Render()

	// two doubling stages: 1.0 -> 2.0 -> 4.0, before gain/pan (unity/center).
	out := tr.OutputBuffer()
	assert.InDelta(t, float32(4.0), out.Channel(0)[0], 1e-6)
}

type doublingProcessor struct {
	*processor.Base
}

func (d *doublingProcessor) ProcessAudio(in, out *sample.Buffer) {
	n := in.ChannelCount()
	for ch := 0; ch < n; ch++ {
		src := in.Channel(ch)
		dst := out.Channel(ch)
		for i := range src {
			dst[i] = src[i] * 2
		}
	}
}
