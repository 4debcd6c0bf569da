package delay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestFeedbackDelayProducesEchoAfterDelayTime(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))

	p.delayMsValue.Set(1.0)
	p.feedbackValue.Set(0.5)
	p.mixValue.Set(1.0)

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	ch[0] = 1.0
	for i := 1; i < len(ch); i++ {
		ch[i] = 0
	}
	p.ProcessAudio(in, out)

	found := false
	for _, v := range out.Channel(0) {
		if v != 0 {
			found = true
			break
		}
	}
	assert.True(t, found)
}

func TestZeroMixIsDryPassthrough(t *testing.T) {
	p := New(1).(*Processor)
	require.Equal(t, sushierr.OK, p.Init(48000))
	p.mixValue.Set(0.0)

	in := sample.New(1)
	out := sample.New(1)
	ch := in.Channel(0)
	for i := range ch {
		ch[i] = 0.42
	}
	p.ProcessAudio(in, out)

	for _, v := range out.Channel(0) {
		assert.InDelta(t, float32(0.42), v, 1e-6)
	}
}
