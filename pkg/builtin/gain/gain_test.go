package gain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/justyntemme/sushi-go/pkg/sample"
)

func TestUnityGainPassesThrough(t *testing.T) {
	p := New(2)
	in := sample.New(2)
	out := sample.New(2)
	for ch := 0; ch < 2; ch++ {
		for i := range in.Channel(ch) {
			in.Channel(ch)[i] = 0.5
		}
	}
	p.ProcessAudio(in, out)
	for ch := 0; ch < 2; ch++ {
		for _, v := range out.Channel(ch) {
			assert.InDelta(t, 0.5, v, 1e-6)
		}
	}
}

func TestNegativeGainAttenuates(t *testing.T) {
	p := New(1).(*Processor)
	p.gainValue.Set(-6.0)

	in := sample.New(1)
	out := sample.New(1)
	for i := range in.Channel(0) {
		in.Channel(0)[i] = 1.0
	}
	p.ProcessAudio(in, out)
	for _, v := range out.Channel(0) {
		assert.Less(t, v, float32(1.0))
		assert.Greater(t, v, float32(0.0))
	}
}
