package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestLowpassPassesDCSignal(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	p.cutoffValue.Set(200)
	p.qValue.Set(0.707)

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 1.0
	}
	p.ProcessAudio(in, out)

	assert.NotEqual(t, float32(0), out.Channel(0)[len(ch)-1])
}

func TestModeStringPropertySelectsTopology(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	p.modeValue.Set("highpass")
	p.recompute(true)
	assert.Equal(t, "highpass", p.lastMode)

	p.modeValue.Set("notch")
	p.recompute(true)
	assert.Equal(t, "notch", p.lastMode)
}

func TestUnknownModeFallsBackToLowpass(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	p.modeValue.Set("bogus")
	p.recompute(true)
	assert.Equal(t, "bogus", p.lastMode)

	lowpass := New(1).(*Processor)
	require.Equal(t, sushierr.OK, lowpass.Init(48000))
	lowpass.recompute(true)
	assert.Equal(t, lowpass.biquad.b0, p.biquad.b0)
	assert.Equal(t, lowpass.biquad.b1, p.biquad.b1)
	assert.Equal(t, lowpass.biquad.a1, p.biquad.a1)
}
