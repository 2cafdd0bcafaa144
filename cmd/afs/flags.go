package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"AFS/wave"
)

// sharedFlags are accepted by every command. Defaults come from
// wave.DefaultConfig so the CLI and library agree.
func sharedFlags() []cli.Flag {
	def := wave.DefaultConfig()
	return []cli.Flag{
		cli.IntFlag{Name: "grid-width", Value: def.GridWidth, Usage: "Visible grid width in cells", EnvVar: "AFS_GRID_WIDTH"},
		cli.IntFlag{Name: "grid-height", Value: def.GridHeight, Usage: "Visible grid height in cells", EnvVar: "AFS_GRID_HEIGHT"},
		cli.IntFlag{Name: "border", Value: def.Border, Usage: "Absorbing border cells on each side", EnvVar: "AFS_BORDER"},
		cli.Float64Flag{Name: "spacing", Value: def.Spacing, Usage: "Cell size in world units", EnvVar: "AFS_SPACING"},
		cli.Float64Flag{Name: "wave-speed", Value: def.WaveSpeed, Usage: "Propagation speed c", EnvVar: "AFS_WAVE_SPEED"},
		cli.Float64Flag{Name: "dt", Value: def.TimeStep, Usage: "Time step per tick", EnvVar: "AFS_DT"},
		cli.Float64Flag{Name: "damping", Value: def.Damping, Usage: "Per-update damping factor in [0, 1]", EnvVar: "AFS_DAMPING"},
		cli.IntFlag{Name: "obstacle-frequency", Value: def.ObstacleUpdateFrequency, Usage: "Ticks between obstacle rescans", EnvVar: "AFS_OBSTACLE_FREQUENCY"},
		cli.Float64Flag{Name: "probe-radius", Value: def.ObstacleProbeRadius, Usage: "Sphere radius of each obstacle probe", EnvVar: "AFS_PROBE_RADIUS"},
		cli.IntFlag{Name: "audio-sample-size", Value: def.AudioSampleSize, Usage: "Audio samples per energy measurement", EnvVar: "AFS_AUDIO_SAMPLE_SIZE"},
		cli.Float64Flag{Name: "audio-threshold", Value: def.AudioThreshold, Usage: "RMS that must be exceeded to inject", EnvVar: "AFS_AUDIO_THRESHOLD"},
		cli.Float64Flag{Name: "audio-multiplier", Value: def.AudioImpulseMultiplier, Usage: "Impulse intensity per unit RMS", EnvVar: "AFS_AUDIO_MULTIPLIER"},
		cli.Float64Flag{Name: "impulse-radius", Value: def.ImpulseRadius, Usage: "Impulse radius in cells", EnvVar: "AFS_IMPULSE_RADIUS"},
		cli.Float64Flag{Name: "amplitude", Value: def.AmplitudeMultiplier, Usage: "Height per unit pressure", EnvVar: "AFS_AMPLITUDE"},
		cli.Float64Flag{Name: "curvature", Value: def.CurvatureMultiplier, Usage: "Curvature multiplier before clamping", EnvVar: "AFS_CURVATURE"},
		cli.IntFlag{Name: "workers", Value: def.Workers, Usage: "Goroutines per integration pass (0 or 1 runs inline)", EnvVar: "AFS_WORKERS"},
		cli.Float64Flag{Name: "divergence-limit", Value: def.DivergenceLimit, Usage: "Abort when |p| or |v| exceeds this (0 disables)", EnvVar: "AFS_DIVERGENCE_LIMIT"},
		cli.StringFlag{Name: "backend", Value: string(def.Backend), Usage: "Solver backend: cpu or opencl", EnvVar: "AFS_BACKEND"},

		cli.IntFlag{Name: "walls", Value: 8, Usage: "Number of procedural wall segments", EnvVar: "AFS_WALLS"},
		cli.Int64Flag{Name: "seed", Value: 0, Usage: "Wall layout seed (0 picks one from the clock)", EnvVar: "AFS_SEED"},
		cli.StringFlag{Name: "audio", Value: "", Usage: "WAV file looped as the central audio source; a pulse train is used when empty", EnvVar: "AFS_AUDIO"},
		cli.Float64Flag{Name: "pulse-freq", Value: 220, Usage: "Tone frequency of the synthetic pulse train", EnvVar: "AFS_PULSE_FREQ"},
		cli.DurationFlag{Name: "pulse-on", Value: defaultPulseOn, Usage: "Tone length of each synthetic pulse", EnvVar: "AFS_PULSE_ON"},
		cli.DurationFlag{Name: "pulse-period", Value: defaultPulsePeriod, Usage: "Interval between synthetic pulses", EnvVar: "AFS_PULSE_PERIOD"},
		cli.StringSliceFlag{Name: "emitter", Usage: "Extra pulse emitter at world position x,z (repeatable)", EnvVar: "AFS_EMITTERS"},
	}
}

// configFromContext builds and validates a wave.Config from the parsed flags.
func configFromContext(c *cli.Context) (wave.Config, error) {
	cfg := wave.DefaultConfig()
	cfg.GridWidth = c.Int("grid-width")
	cfg.GridHeight = c.Int("grid-height")
	cfg.Border = c.Int("border")
	cfg.Spacing = c.Float64("spacing")
	cfg.WaveSpeed = c.Float64("wave-speed")
	cfg.TimeStep = c.Float64("dt")
	cfg.Damping = c.Float64("damping")
	cfg.ObstacleUpdateFrequency = c.Int("obstacle-frequency")
	cfg.ObstacleProbeRadius = c.Float64("probe-radius")
	cfg.AudioSampleSize = c.Int("audio-sample-size")
	cfg.AudioThreshold = c.Float64("audio-threshold")
	cfg.AudioImpulseMultiplier = c.Float64("audio-multiplier")
	cfg.ImpulseRadius = c.Float64("impulse-radius")
	cfg.AmplitudeMultiplier = c.Float64("amplitude")
	cfg.CurvatureMultiplier = c.Float64("curvature")
	cfg.Workers = c.Int("workers")
	cfg.DivergenceLimit = c.Float64("divergence-limit")
	cfg.Backend = wave.Backend(c.String("backend"))
	return cfg, cfg.Validate()
}

// parseEmitter reads a "x,z" world position.
func parseEmitter(s string) (wave.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return wave.Vec3{}, fmt.Errorf("emitter %q: want x,z", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return wave.Vec3{}, fmt.Errorf("emitter %q: %w", s, err)
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return wave.Vec3{}, fmt.Errorf("emitter %q: %w", s, err)
	}
	return wave.Vec3{X: x, Z: z}, nil
}
