package modulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func toneBuffer(b *sample.Buffer) {
	ch := b.Channel(0)
	for i := range ch {
		ch[i] = 0.5
	}
}

func TestChorusWidensMonoInputToStereo(t *testing.T) {
	p := NewChorus(1).(*ChorusProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(2)
	toneBuffer(in)

	p.ProcessAudio(in, out)
	assert.NotEqual(t, float32(0), out.Channel(0)[0])
	assert.NotEqual(t, float32(0), out.Channel(1)[0])
}

func TestTremoloUnknownWaveformFallsBackToSine(t *testing.T) {
	p := NewTremolo(1).(*TremoloProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.waveformValue.Set("not-a-waveform")

	in := sample.New(1)
	out := sample.New(2)
	toneBuffer(in)

	p.ProcessAudio(in, out)
	assert.NotEqual(t, float32(0), out.Channel(0)[0])
}

func TestTremoloModulatesAmplitude(t *testing.T) {
	p := NewTremolo(1).(*TremoloProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.depthValue.Set(1.0)
	p.rateValue.Set(2.0)

	in := sample.New(1)
	out := sample.New(2)
	toneBuffer(in)

	var min, max float32 = 1, -1
	for i := 0; i < 200; i++ {
		p.ProcessAudio(in, out)
		for _, v := range out.Channel(0) {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	assert.Greater(t, max-min, float32(0.1))
}

func TestPhaserProducesOutput(t *testing.T) {
	p := NewPhaser(1).(*PhaserProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(2)
	toneBuffer(in)
	for i := 0; i < 5; i++ {
		p.ProcessAudio(in, out)
	}
	assert.NotEqual(t, float32(0), out.Channel(0)[0])
}
