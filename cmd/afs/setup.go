package main

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/urfave/cli"

	"AFS/audio"
	"AFS/scene"
	"AFS/wave"
)

const (
	audioSampleRate    = 48000
	defaultPulseOn     = 150 * time.Millisecond
	defaultPulsePeriod = time.Second
	pulseAmplitude     = 0.5
	emitterFreqStep    = 110
	listenerRadius     = 0.15
	wallClearance      = 4
)

// Scene layers. Walls block the listener; every layer is solid to the wave.
const (
	layerWalls wave.LayerMask = 1 << iota
	layerBodies
)

// world bundles everything a command needs to tick a simulation.
type world struct {
	cfg      wave.Config
	scene    *scene.Scene
	sim      *wave.Simulation
	listener int
}

// buildScene lays out procedural walls around the impulse centre.
func buildScene(cfg wave.Config, segments int, seed int64) (*scene.Scene, error) {
	if seed == 0 {
		seed = time.Now().UnixNano() + 1
	}
	opts := scene.DefaultWallOptions(cfg.GridWidth, cfg.GridHeight, cfg.Origin, cfg.Spacing)
	opts.Segments = segments
	opts.KeepClear = cfg.CellPosition(cfg.SimWidth()/2, cfg.SimHeight()/2)
	opts.ExclusionRadius = cfg.ImpulseRadius + wallClearance
	walls := scene.GenerateWalls(rand.New(rand.NewSource(seed)), opts)

	s := scene.New()
	if err := s.AddWalls(walls, layerWalls); err != nil {
		return nil, err
	}
	log.Printf("Generated %d wall segments (seed %d)", len(walls), seed)
	return s, nil
}

// pulseSource returns a synthetic energy source when no audio file is given.
func pulseSource(freq float64, on, period time.Duration) *audio.StreamerSource {
	sr := beep.SampleRate(audioSampleRate)
	return audio.NewStreamerSource(audio.NewPulseTrain(sr, freq, on, period, pulseAmplitude))
}

// energySource picks the central audio input from the flags.
func energySource(c *cli.Context) (wave.EnergySampler, error) {
	if path := c.String("audio"); path != "" {
		samples, err := loadLoopSamples(audioSampleRate, path)
		if err != nil {
			return nil, err
		}
		src, err := audio.NewLoopSource(samples)
		if err != nil {
			return nil, err
		}
		log.Printf("Looping %q (%d samples)", path, src.Len())
		return src, nil
	}
	return pulseSource(c.Float64("pulse-freq"), c.Duration("pulse-on"), c.Duration("pulse-period")), nil
}

// newSimulation builds a simulation, falling back to the CPU solver when the
// requested backend cannot start.
func newSimulation(cfg wave.Config, prober wave.Prober, energy wave.EnergySampler, opts ...wave.Option) (*wave.Simulation, error) {
	sim, err := wave.New(cfg, prober, energy, opts...)
	if errors.Is(err, wave.ErrBackendUnavailable) {
		log.Printf("%v; falling back to the CPU solver", err)
		cfg.Backend = wave.BackendCPU
		sim, err = wave.New(cfg, prober, energy, opts...)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("Simulating %dx%d cells (%dx%d visible) on %s, Courant %.3f",
		cfg.SimWidth(), cfg.SimHeight(), cfg.GridWidth, cfg.GridHeight, sim.Backend(), cfg.Courant())
	return sim, nil
}

// buildWorld reads the shared flags and assembles scene, listener body,
// audio sources and simulation.
func buildWorld(c *cli.Context, opts ...wave.Option) (*world, error) {
	cfg, err := configFromContext(c)
	if err != nil {
		return nil, err
	}
	sc, err := buildScene(cfg, c.Int("walls"), c.Int64("seed"))
	if err != nil {
		return nil, err
	}
	// The listener starts a few cells below the centre so it does not cover
	// the impulse.
	start := cfg.CellPosition(cfg.SimWidth()/2, cfg.SimHeight()/2+int(cfg.ImpulseRadius)+2)
	listener, err := sc.AddSphere(start, listenerRadius, layerBodies)
	if err != nil {
		return nil, err
	}

	energy, err := energySource(c)
	if err != nil {
		return nil, err
	}
	sim, err := newSimulation(cfg, sc, energy, opts...)
	if err != nil {
		return nil, err
	}

	for i, arg := range c.StringSlice("emitter") {
		pos, err := parseEmitter(arg)
		if err != nil {
			sim.Close()
			return nil, err
		}
		src := pulseSource(c.Float64("pulse-freq")+float64(i+1)*emitterFreqStep, c.Duration("pulse-on"), c.Duration("pulse-period"))
		if err := sim.AddEmitter(pos, src, 1); err != nil {
			sim.Close()
			return nil, fmt.Errorf("emitter %q: %w", arg, err)
		}
	}
	return &world{cfg: sim.Config(), scene: sc, sim: sim, listener: listener}, nil
}

// statsLine summarises the run for logs and status bars.
func statsLine(sim *wave.Simulation) string {
	st := sim.Stats()
	return fmt.Sprintf("tick %d  energy %.4g  rms %.3f  impulses %d  rescans %d  probe/audio failures %d/%d",
		st.Ticks, sim.Fields().Energy(), st.LastRMS, st.Impulses, st.ObstacleRefreshes, st.ProbeFailures, st.AudioFailures)
}
