package wave

import (
	"fmt"
	"math"
)

// Backend selects the implementation that advances the fields each tick.
type Backend string

const (
	BackendCPU    Backend = "cpu"
	BackendOpenCL Backend = "opencl"
)

// Default simulation, obstacle, audio and visualization values. They match
// the settings the acoustic field was tuned with: a 100x100 visible grid
// padded by a 20 cell absorbing border, sampled every 0.1 world units.
const (
	defaultGridWidth         = 100
	defaultGridHeight        = 100
	defaultBorder            = 20
	defaultSpacing           = 0.1
	defaultWaveSpeed         = 1.0
	defaultTimeStep          = 0.02
	defaultDamping           = 0.999
	defaultObstacleFrequency = 60
	defaultProbeRadius       = 0.05
	defaultAudioSampleSize   = 128
	defaultAudioThreshold    = 0.01
	defaultAudioMultiplier   = 100
	defaultImpulseRadius     = 2
	defaultAmplitude         = 10
	defaultCurvature         = 10
	minDomainCells           = 3
)

// Config holds every scalar option recognised by a Simulation. A Config is
// read once by New; changing dimensions requires a new Simulation.
type Config struct {
	// GridWidth and GridHeight size the visible window in cells.
	GridWidth  int
	GridHeight int
	// Border pads each side of the visible window with absorbing cells.
	Border int
	// Spacing is the uniform spatial step dx shared by both axes.
	Spacing float64

	WaveSpeed float64
	TimeStep  float64
	// Damping multiplies velocity and pressure after every update.
	Damping float64

	// Origin is the world position of visible cell (0, 0). Domain cell
	// (x, y) sits at Origin + ((x-Border)*Spacing, 0, (y-Border)*Spacing).
	Origin Vec3

	ObstacleUpdateFrequency int
	ObstacleProbeRadius     float64
	ObstacleLayers          LayerMask

	AudioSampleSize        int
	AudioThreshold         float64
	AudioImpulseMultiplier float64
	ImpulseRadius          float64

	AmplitudeMultiplier float64
	CurvatureMultiplier float64

	// Workers splits the velocity and pressure passes across goroutines.
	// Zero or one keeps the tick on the calling goroutine.
	Workers int
	// DivergenceLimit enables a per-tick scan for NaN, Inf or magnitudes
	// above the limit. Zero disables the scan.
	DivergenceLimit float64
	Backend         Backend
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		GridWidth:               defaultGridWidth,
		GridHeight:              defaultGridHeight,
		Border:                  defaultBorder,
		Spacing:                 defaultSpacing,
		WaveSpeed:               defaultWaveSpeed,
		TimeStep:                defaultTimeStep,
		Damping:                 defaultDamping,
		ObstacleUpdateFrequency: defaultObstacleFrequency,
		ObstacleProbeRadius:     defaultProbeRadius,
		ObstacleLayers:          AllLayers,
		AudioSampleSize:         defaultAudioSampleSize,
		AudioThreshold:          defaultAudioThreshold,
		AudioImpulseMultiplier:  defaultAudioMultiplier,
		ImpulseRadius:           defaultImpulseRadius,
		AmplitudeMultiplier:     defaultAmplitude,
		CurvatureMultiplier:     defaultCurvature,
		Backend:                 BackendCPU,
	}
}

// SimWidth returns the padded domain width.
func (c Config) SimWidth() int { return c.GridWidth + 2*c.Border }

// SimHeight returns the padded domain height.
func (c Config) SimHeight() int { return c.GridHeight + 2*c.Border }

// Courant returns c*dt/dx. Explicit stepping is only stable while it stays
// at or below 1; the value is reported, never corrected.
func (c Config) Courant() float64 {
	if c.Spacing == 0 {
		return math.Inf(1)
	}
	return c.WaveSpeed * c.TimeStep / c.Spacing
}

// CellPosition returns the world position probed for domain cell (x, y).
func (c Config) CellPosition(x, y int) Vec3 {
	return Vec3{
		X: c.Origin.X + float64(x-c.Border)*c.Spacing,
		Y: c.Origin.Y,
		Z: c.Origin.Z + float64(y-c.Border)*c.Spacing,
	}
}

// CellAt maps a world position to the nearest domain cell. ok is false when
// the position falls outside the domain.
func (c Config) CellAt(pos Vec3) (x, y int, ok bool) {
	x = int(math.Round((pos.X-c.Origin.X)/c.Spacing)) + c.Border
	y = int(math.Round((pos.Z-c.Origin.Z)/c.Spacing)) + c.Border
	if x < 0 || x >= c.SimWidth() || y < 0 || y >= c.SimHeight() {
		return x, y, false
	}
	return x, y, true
}

// Validate reports the first configuration error, wrapped in
// ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.GridWidth < 1 || c.GridHeight < 1:
		return fmt.Errorf("%w: visible grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.GridWidth, c.GridHeight)
	case c.Border < 0:
		return fmt.Errorf("%w: border must not be negative, got %d", ErrInvalidConfig, c.Border)
	case c.SimWidth() < minDomainCells || c.SimHeight() < minDomainCells:
		return fmt.Errorf("%w: domain must be at least %dx%d, got %dx%d", ErrInvalidConfig,
			minDomainCells, minDomainCells, c.SimWidth(), c.SimHeight())
	case !(c.Spacing > 0) || math.IsInf(c.Spacing, 0):
		return fmt.Errorf("%w: grid spacing must be positive, got %v", ErrInvalidConfig, c.Spacing)
	case !(c.TimeStep > 0) || math.IsInf(c.TimeStep, 0):
		return fmt.Errorf("%w: time step must be positive, got %v", ErrInvalidConfig, c.TimeStep)
	case !(c.WaveSpeed >= 0) || math.IsInf(c.WaveSpeed, 0):
		return fmt.Errorf("%w: wave speed must not be negative, got %v", ErrInvalidConfig, c.WaveSpeed)
	case !(c.Damping >= 0 && c.Damping <= 1):
		return fmt.Errorf("%w: damping must be within [0, 1], got %v", ErrInvalidConfig, c.Damping)
	case c.ObstacleUpdateFrequency < 1:
		return fmt.Errorf("%w: obstacle update frequency must be at least 1, got %d", ErrInvalidConfig, c.ObstacleUpdateFrequency)
	case c.ObstacleProbeRadius < 0:
		return fmt.Errorf("%w: obstacle probe radius must not be negative, got %v", ErrInvalidConfig, c.ObstacleProbeRadius)
	case c.AudioSampleSize < 1:
		return fmt.Errorf("%w: audio sample size must be at least 1, got %d", ErrInvalidConfig, c.AudioSampleSize)
	case c.ImpulseRadius < 0:
		return fmt.Errorf("%w: impulse radius must not be negative, got %v", ErrInvalidConfig, c.ImpulseRadius)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.DivergenceLimit < 0:
		return fmt.Errorf("%w: divergence limit must not be negative, got %v", ErrInvalidConfig, c.DivergenceLimit)
	}
	switch c.Backend {
	case "", BackendCPU, BackendOpenCL:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	return nil
}
