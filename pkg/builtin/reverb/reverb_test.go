package reverb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func impulse(b *sample.Buffer) {
	b.Channel(0)[0] = 1.0
}

func TestFreeverbProducesTailAfterImpulse(t *testing.T) {
	p := NewFreeverb(1).(*FreeverbProcessor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	in := sample.New(1)
	out := sample.New(2)
	impulse(in)

	p.ProcessAudio(in, out)
	for i := 0; i < 20; i++ {
		sample.New(1)
		p.ProcessAudio(sample.New(1), out)
	}
	tail := false
	for _, v := range out.Channel(0) {
		if v != 0 {
			tail = true
		}
	}
	assert.True(t, tail, "output must still be nonzero 20 blocks after the impulse")
}

