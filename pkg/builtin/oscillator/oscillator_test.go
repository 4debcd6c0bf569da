package oscillator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestSineGeneratesNonZeroSignal(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

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

func TestWaveformSelectsDifferentShapes(t *testing.T) {
	sinePlugin := New(1).(*Processor)
	require.Equal(t, sushierr.OK, sinePlugin.Init(48000))
	sinePlugin.freqValue.Set(100)

	squarePlugin := New(1).(*Processor)
	require.Equal(t, sushierr.OK, squarePlugin.Init(48000))
	squarePlugin.freqValue.Set(100)
	squarePlugin.waveformValue.Set("square")

	in := sample.New(1)
	sineOut := sample.New(1)
	squareOut := sample.New(1)
	sinePlugin.ProcessAudio(in, sineOut)
	squarePlugin.ProcessAudio(in, squareOut)

	assert.NotEqual(t, sineOut.Channel(0)[1], squareOut.Channel(0)[1])
}

func TestUnknownWaveformFallsBackToSine(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.waveformValue.Set("not-a-waveform")

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
