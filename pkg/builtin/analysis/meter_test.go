package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestMeterPassesAudioThroughUnchanged(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 0.3
	}

	p.ProcessAudio(in, out)
	assert.Equal(t, in.Channel(0), out.Channel(0))
}

func TestMeterTracksPeakLevel(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 0.8
	}

	for i := 0; i < 5; i++ {
		p.ProcessAudio(in, out)
	}
	assert.Greater(t, p.peakDbValue.Get(), float32(-20))
	assert.False(t, math.IsInf(float64(p.rmsDbValue.Get()), -1))
	assert.Greater(t, p.envelopeDbValue.Get(), float32(-60))
}
