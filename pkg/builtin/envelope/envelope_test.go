package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/id"
	"github.com/justyntemme/sushi-go/pkg/rtevent"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestSilentUntilNoteOn(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 1.0
	}
	p.ProcessAudio(in, out)
	for _, v := range out.Channel(0) {
		assert.Equal(t, float32(0), v)
	}
}

func TestNoteOnRampsEnvelopeUp(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.attackValue.Set(0.001)

	p.ProcessEvent(rtevent.MakeNoteOn(id.Invalid, 0, 60, 1.0))

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 1.0
	}
	for i := 0; i < 10; i++ {
		p.ProcessAudio(in, out)
	}
	assert.Greater(t, out.Channel(0)[len(out.Channel(0))-1], float32(0))
}

func TestNoteOffReleasesEnvelope(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.attackValue.Set(0.0001)
	p.releaseValue.Set(0.0001)

	p.ProcessEvent(rtevent.MakeNoteOn(id.Invalid, 0, 60, 1.0))
	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 1.0
	}
	for i := 0; i < 20; i++ {
		p.ProcessAudio(in, out)
	}
	p.ProcessEvent(rtevent.MakeNoteOff(id.Invalid, 0, 60, 1.0))
	for i := 0; i < 50; i++ {
		p.ProcessAudio(in, out)
	}
	assert.InDelta(t, float32(0), out.Channel(0)[len(out.Channel(0))-1], 1e-3)
}
