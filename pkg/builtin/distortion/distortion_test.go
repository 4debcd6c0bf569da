package distortion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func loudBuffer(b *sample.Buffer, ch int, v float32) {
	dst := b.Channel(ch)
	for i := range dst {
		dst[i] = v
	}
}

func TestWaveshaperClipsLoudSignal(t *testing.T) {
	p := NewWaveshaper(1).(*WaveshaperProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.curveValue.Set("hardclip")
	p.driveValue.Set(10.0)

	in := sample.New(1)
	out := sample.New(1)
	loudBuffer(in, 0, 0.9)

	p.ProcessAudio(in, out)
	for _, v := range out.Channel(0) {
		assert.LessOrEqual(t, v, float32(1.0))
	}
}

func TestWaveshaperUnknownCurveFallsBackToSoftClip(t *testing.T) {
	p := NewWaveshaper(1).(*WaveshaperProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.curveValue.Set("not-a-curve")

	in := sample.New(1)
	out := sample.New(1)
	loudBuffer(in, 0, 0.5)

	p.ProcessAudio(in, out)
	assert.NotEqual(t, float32(0), out.Channel(0)[0])
}

func TestBitcrusherReducesResolution(t *testing.T) {
	p := NewBitcrusher(1).(*BitcrusherProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.bitsValue.Set(2.0)

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 0.37
	}

	p.ProcessAudio(in, out)
	assert.NotEqual(t, float32(0.37), out.Channel(0)[0])
}
