// Command sushi is a demo host process: it wires together an
// engine.Engine, a dispatcher.Dispatcher, and a host.Host, optionally
// loads a YAML config describing tracks and plugins, then runs the
// audio callback on a fixed-period ticker until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/justyntemme/sushi-go/internal/logx"
	"github.com/justyntemme/sushi-go/internal/rtsched"
	builtinanalysis "github.com/justyntemme/sushi-go/pkg/builtin/analysis"
	builtindelay "github.com/justyntemme/sushi-go/pkg/builtin/delay"
	builtindistortion "github.com/justyntemme/sushi-go/pkg/builtin/distortion"
	builtindynamics "github.com/justyntemme/sushi-go/pkg/builtin/dynamics"
	builtinenvelope "github.com/justyntemme/sushi-go/pkg/builtin/envelope"
	builtinfilter "github.com/justyntemme/sushi-go/pkg/builtin/filter"
	builtingain "github.com/justyntemme/sushi-go/pkg/builtin/gain"
	builtinmodulation "github.com/justyntemme/sushi-go/pkg/builtin/modulation"
	builtinoscillator "github.com/justyntemme/sushi-go/pkg/builtin/oscillator"
	builtinreverb "github.com/justyntemme/sushi-go/pkg/builtin/reverb"
	builtinutility "github.com/justyntemme/sushi-go/pkg/builtin/utility"
	"github.com/justyntemme/sushi-go/pkg/dispatcher"
	"github.com/justyntemme/sushi-go/pkg/engine"
	"github.com/justyntemme/sushi-go/pkg/host"
	"github.com/justyntemme/sushi-go/pkg/processor"
	"github.com/justyntemme/sushi-go/pkg/receiver"
	"github.com/justyntemme/sushi-go/pkg/sample"
	"github.com/justyntemme/sushi-go/pkg/sushierr"
)

func main() {
	var (
		sampleRate   float64
		numInputs    int
		numOutputs   int
		fifoCapacity int
		configPath   string
		rtPriority   int
		logLevel     string
	)

	flag.Float64Var(&sampleRate, "sample-rate", 48000, "engine sample rate in Hz")
	flag.IntVar(&numInputs, "inputs", 2, "number of engine input channels")
	flag.IntVar(&numOutputs, "outputs", 2, "number of engine output channels")
	flag.IntVar(&fifoCapacity, "fifo-capacity", 1024, "RT event FIFO capacity")
	flag.StringVar(&configPath, "config", "", "path to a YAML config file describing tracks and plugins")
	flag.IntVar(&rtPriority, "rt-priority", 0, "SCHED_FIFO priority for the audio thread (0 disables)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	if level, err := logrus.ParseLevel(logLevel); err == nil {
		logx.SetLevel(level)
	}
	log := logx.New("cmd.sushi")

	eng := engine.New(numInputs, numOutputs, sampleRate, fifoCapacity)
	registerBuiltinProcessors(eng, numOutputs)

	if configPath != "" {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.WithField("error", err.Error()).Fatal("failed to load config")
		}
		if err := eng.ApplyConfig(cfg); err != nil {
			log.WithField("error", err.Error()).Fatal("failed to apply config")
		}
		log.WithField("path", configPath).WithField("tracks", len(cfg.Tracks)).Info("loaded config")
	} else {
		if code := eng.CreateTrack("main", numOutputs); code != sushierr.OK {
			log.WithField("code", code.String()).Fatal("failed to create default track")
		}
		if _, code := eng.AddPluginToTrack("main", builtingain.UID, "gain1", engine.Internal); code != sushierr.OK {
			log.WithField("code", code.String()).Fatal("failed to add default gain plugin")
		}
		log.Info("no config given, created a single default track \"main\" with a gain plugin")
	}

	recv := receiver.New(eng.FromRtFifo())
	disp := dispatcher.New(eng.ToRtFifo(), recv, 1024, 4)
	if err := disp.Start(); err != nil {
		log.WithField("error", err.Error()).Fatal("failed to start dispatcher")
	}
	h := host.New(eng, disp)

	if rtPriority > 0 {
		if err := rtsched.PromoteCurrentThread(rtPriority); err != nil {
			log.WithField("error", err.Error()).Warn("could not promote audio thread, continuing anyway")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("sample_rate", sampleRate).
		WithField("tracks", len(h.ListTracks())).
		Info("sushi host started, running audio callback loop")

	runAudioLoop(ctx, log, eng, disp, numInputs, numOutputs, sampleRate)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := disp.Stop(shutdownCtx); err != nil {
		log.WithField("error", err.Error()).Warn("dispatcher did not stop cleanly")
	}
	log.Info("sushi host stopped")
}

// runAudioLoop drives the engine's Process callback at the real-time
// rate implied by sampleRate, exactly as an audio backend's callback
// thread would, and drains the dispatcher's from-RT events every block.
func runAudioLoop(ctx context.Context, log *logrus.Entry, eng *engine.Engine, disp *dispatcher.Dispatcher, numInputs, numOutputs int, sampleRate float64) {
	blockPeriod := time.Duration(float64(sample.ChunkSize) / sampleRate * float64(time.Second))
	ticker := time.NewTicker(blockPeriod)
	defer ticker.Stop()

	in := sample.New(numInputs)
	out := sample.New(numOutputs)

	for {
		select {
		case <-ctx.Done():
			log.Info("received shutdown signal")
			return
		case <-ticker.C:
			if code := eng.Process(in, out); code != sushierr.OK {
				log.WithField("code", code.String()).Error("engine.Process failed")
			}
			disp.Tick()
		}
	}
}

// registerBuiltinProcessors wires every pkg/builtin/* plugin into eng
// under its UID, so a config file's plugin_uid can name any of them.
func registerBuiltinProcessors(eng *engine.Engine, numOutputs int) {
	eng.RegisterProcessorFactory(builtingain.UID, func() processor.Processor {
		return builtingain.New(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinfilter.UID, func() processor.Processor {
		return builtinfilter.New(numOutputs)
	})
	eng.RegisterProcessorFactory(builtindelay.UID, func() processor.Processor {
		return builtindelay.New(numOutputs)
	})
	eng.RegisterProcessorFactory(builtindynamics.CompressorUID, func() processor.Processor {
		return builtindynamics.NewCompressor(numOutputs)
	})
	eng.RegisterProcessorFactory(builtindynamics.GateUID, func() processor.Processor {
		return builtindynamics.NewGate(numOutputs)
	})
	eng.RegisterProcessorFactory(builtindynamics.LimiterUID, func() processor.Processor {
		return builtindynamics.NewLimiter(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinenvelope.UID, func() processor.Processor {
		return builtinenvelope.New(numOutputs)
	})
	eng.RegisterProcessorFactory(builtindistortion.WaveshaperUID, func() processor.Processor {
		return builtindistortion.NewWaveshaper(numOutputs)
	})
	eng.RegisterProcessorFactory(builtindistortion.BitcrusherUID, func() processor.Processor {
		return builtindistortion.NewBitcrusher(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinmodulation.ChorusUID, func() processor.Processor {
		return builtinmodulation.NewChorus(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinmodulation.TremoloUID, func() processor.Processor {
		return builtinmodulation.NewTremolo(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinmodulation.PhaserUID, func() processor.Processor {
		return builtinmodulation.NewPhaser(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinreverb.FreeverbUID, func() processor.Processor {
		return builtinreverb.NewFreeverb(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinoscillator.UID, func() processor.Processor {
		return builtinoscillator.New(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinutility.NoiseUID, func() processor.Processor {
		return builtinutility.NewNoise(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinutility.DCBlockerUID, func() processor.Processor {
		return builtinutility.NewDCBlocker(numOutputs)
	})
	eng.RegisterProcessorFactory(builtinanalysis.UID, func() processor.Processor {
		return builtinanalysis.New(numOutputs)
	})
}

func loadConfig(path string) (engine.Config, error) {
	var cfg engine.Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
