package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func TestApplyConfigCreatesTracksAndPlugins(t *testing.T) {
	e := New(2, 2, 48000, 256)
	e.RegisterProcessorFactory("builtin.gain", newGainPlugin)

	cfg := Config{
		Tempo: 128,
		Tracks: []TrackConfig{
			{
				Name:     "main",
				Channels: 2,
				Plugins: []PluginConfig{
					{UID: "builtin.gain", Name: "gain1"},
				},
			},
		},
	}

	require.NoError(t, e.ApplyConfig(cfg))
	assert.Equal(t, []string{"main"}, e.TrackNames())
	assert.Contains(t, e.ProcessorNames(), "gain1")
	assert.InDelta(t, 128.0, e.Transport().Tempo(), 1e-9)
}

func TestApplyConfigStopsAtFirstFailure(t *testing.T) {
	e := New(2, 2, 48000, 256)

	cfg := Config{
		Tracks: []TrackConfig{
			{Name: "main", Channels: 2},
			{Name: "main", Channels: 2}, // duplicate name fails
		},
	}

	err := e.ApplyConfig(cfg)
	require.Error(t, err)

	_, ok := e.ProcessorByName("main")
	assert.True(t, ok)
	require.Equal(t, sushierr.OK, e.CreateTrack("second", 2))
}
