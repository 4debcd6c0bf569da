package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDbToLinearGain(t *testing.T) {
	pp := DbToLinear{Min: -120, Max: 24}
	assert.InDelta(t, 1.0, pp.Process(0), 1e-6)
	assert.InDelta(t, 0.0, pp.Process(-200), 1e-6)
	assert.InDelta(t, 10.0, pp.Process(20), 1e-6)
}

func TestClamp(t *testing.T) {
	pp := Clamp{Min: -1, Max: 1}
	assert.Equal(t, float32(-1), pp.Process(-5))
	assert.Equal(t, float32(1), pp.Process(5))
	assert.Equal(t, float32(0.5), pp.Process(0.5))
}

func TestValueRoundTrip(t *testing.T) {
	desc := Descriptor{ShortName: "gain", Default: 0, Min: -120, Max: 24, PreProcessor: DbToLinear{Min: -120, Max: 24}}
	v := NewValue(desc)
	assert.InDelta(t, 1.0, v.Get(), 1e-6) // default 0dB -> linear 1.0

	v.Set(-6)
	assert.InDelta(t, 0.5011872, v.Get(), 1e-4)
}

func TestRegistryRegisterAndFreeze(t *testing.T) {
	r := NewRegistry()
	pid := r.RegisterFloat("gain", "Gain", 0, -120, 24, DbToLinear{Min: -120, Max: 24})
	require.NotNil(t, r.Get(pid))
	assert.Len(t, r.List(), 1)

	r.Freeze()
	assert.Panics(t, func() {
		r.RegisterFloat("pan", "Pan", 0, -1, 1, Clamp{Min: -1, Max: 1})
	})
}

func TestRegistryStringParameter(t *testing.T) {
	r := NewRegistry()
	pid := r.RegisterString("preset", "Preset", "init")
	sv := r.GetString(pid)
	require.NotNil(t, sv)
	assert.Equal(t, "init", sv.Get())
	sv.Set("bright")
	assert.Equal(t, "bright", sv.Get())
}
