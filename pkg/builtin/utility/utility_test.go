package utility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestNoiseGeneratesNonZeroSignal(t *testing.T) {
	p := NewNoise(1).(*NoiseProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.levelValue.Set(1.0)

	in := sample.New(1)
	out := sample.New(1)
	p.ProcessAudio(in, out)

	found := false
	for _, v := range out.Channel(0) {
		if v != 0 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestNoiseUnknownTypeFallsBackToWhite(t *testing.T) {
	p := NewNoise(1).(*NoiseProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.typeValue.Set("not-a-type")
	p.levelValue.Set(1.0)

	in := sample.New(1)
	out := sample.New(1)
	p.ProcessAudio(in, out)

	found := false
	for _, v := range out.Channel(0) {
		if v != 0 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDCBlockerRemovesOffset(t *testing.T) {
	p := NewDCBlocker(1).(*DCBlockerProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 0.5
	}

	var last float32
	for i := 0; i < 200; i++ {
		p.ProcessAudio(in, out)
		last = out.Channel(0)[len(out.Channel(0))-1]
	}
	assert.Less(t, last, float32(0.1))
}
