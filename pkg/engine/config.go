package engine

import (
	"fmt"

	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

// Config is the plain-data description of an engine's starting graph.
// The core never reads a config file itself (spec.md scopes file I/O
// out of the engine); an external loader decodes JSON or YAML into
// this struct — the yaml tags are for that loader's benefit, mirroring
// how the reference framework's bus.Configuration is pure data with no
// parsing logic attached.
type Config struct {
	SampleRate        float64       `yaml:"sample_rate" json:"sample_rate"`
	NumInputChannels  int           `yaml:"num_input_channels" json:"num_input_channels"`
	NumOutputChannels int           `yaml:"num_output_channels" json:"num_output_channels"`
	Tempo             float64       `yaml:"tempo" json:"tempo"`
	Tracks            []TrackConfig `yaml:"tracks" json:"tracks"`
}

// TrackConfig describes one track and the plugins loaded onto it.
type TrackConfig struct {
	Name     string         `yaml:"name" json:"name"`
	Channels int            `yaml:"channels" json:"channels"`
	Plugins  []PluginConfig `yaml:"plugins" json:"plugins"`
}

// PluginConfig describes one Internal plugin to instantiate onto a
// track. Type is always Internal in a loaded config: VST2x/VST3x have
// no factory to resolve against (see DESIGN.md).
type PluginConfig struct {
	UID  string `yaml:"uid" json:"uid"`
	Name string `yaml:"name" json:"name"`
}

// ApplyConfig creates every track and plugin named in cfg against e,
// in order, stopping at the first failure. It does not touch sample
// rate or channel counts — those are fixed at New and would require a
// fresh Engine to change.
func (e *Engine) ApplyConfig(cfg Config) error {
	if cfg.Tempo > 0 {
		if code := e.SetTempo(cfg.Tempo); code != sushierr.OK {
			return fmt.Errorf("engine: apply config: set tempo: %s", code)
		}
	}
	for _, t := range cfg.Tracks {
		if code := e.CreateTrack(t.Name, t.Channels); code != sushierr.OK {
			return fmt.Errorf("engine: apply config: create track %q: %s", t.Name, code)
		}
		for _, p := range t.Plugins {
			if _, code := e.AddPluginToTrack(t.Name, p.UID, p.Name, Internal); code != sushierr.OK {
				return fmt.Errorf("engine: apply config: add plugin %q to track %q: %s", p.UID, t.Name, code)
			}
		}
	}
	return nil
}
