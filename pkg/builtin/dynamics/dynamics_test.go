package dynamics

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

func TestCompressorReducesLoudSignal(t *testing.T) {
	p := NewCompressor(1).(*CompressorProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.thresholdValue.Set(-20)
	p.ratioValue.Set(8)

	in := sample.New(1)
	out := sample.New(1)
	loudBuffer(in, 0, 1.0)

	for i := 0; i < 20; i++ {
		p.ProcessAudio(in, out)
	}
	assert.Less(t, out.Channel(0)[len(out.Channel(0))-1], float32(1.0))
}

func TestGateAttenuatesQuietSignalBelowThreshold(t *testing.T) {
	p := NewGate(1).(*GateProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.thresholdValue.Set(-20)
	p.attackValue.Set(0.0001)
	p.releaseValue.Set(0.001)

	in := sample.New(1)
	out := sample.New(1)
	loudBuffer(in, 0, 0.0001)

	for i := 0; i < 50; i++ {
		p.ProcessAudio(in, out)
	}
	assert.Less(t, out.Channel(0)[len(out.Channel(0))-1], float32(0.0001))
}

func TestLimiterCapsOutputNearCeiling(t *testing.T) {
	p := NewLimiter(1).(*LimiterProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.thresholdValue.Set(-6)

	in := sample.New(1)
	out := sample.New(1)
	loudBuffer(in, 0, 1.0)

	for i := 0; i < 30; i++ {
		p.ProcessAudio(in, out)
	}
	for _, v := range out.Channel(0) {
		assert.LessOrEqual(t, v, float32(dbToLinear(-6)*1.01))
	}
}
