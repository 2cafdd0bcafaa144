package wave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies the tuned defaults and derived dimensions
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 140, cfg.SimWidth())
	assert.Equal(t, 140, cfg.SimHeight())
	assert.Equal(t, 60, cfg.ObstacleUpdateFrequency)
	assert.Equal(t, 128, cfg.AudioSampleSize)
	assert.Equal(t, AllLayers, cfg.ObstacleLayers)
	assert.InDelta(t, 0.2, cfg.Courant(), 1e-12)
}

// TestConfigValidate verifies that degenerate settings are rejected as
// configuration errors
func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.GridWidth = 0 }},
		{"negative border", func(c *Config) { c.Border = -1 }},
		{"domain below three cells", func(c *Config) { c.GridWidth, c.Border = 2, 0 }},
		{"zero spacing", func(c *Config) { c.Spacing = 0 }},
		{"NaN spacing", func(c *Config) { c.Spacing = math.NaN() }},
		{"zero time step", func(c *Config) { c.TimeStep = 0 }},
		{"negative wave speed", func(c *Config) { c.WaveSpeed = -1 }},
		{"damping above one", func(c *Config) { c.Damping = 1.5 }},
		{"zero obstacle frequency", func(c *Config) { c.ObstacleUpdateFrequency = 0 }},
		{"negative probe radius", func(c *Config) { c.ObstacleProbeRadius = -0.1 }},
		{"zero audio sample size", func(c *Config) { c.AudioSampleSize = 0 }},
		{"negative impulse radius", func(c *Config) { c.ImpulseRadius = -2 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"unknown backend", func(c *Config) { c.Backend = "vulkan" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

// TestConfigBorderlessMinimum verifies that a 3x3 domain without border is
// still accepted
func TestConfigBorderlessMinimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight, cfg.Border = 3, 3, 0
	assert.NoError(t, cfg.Validate())
}

// TestCellPositionMapping verifies the world placement of domain cells and
// the inverse lookup
func TestCellPositionMapping(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight, cfg.Border = 10, 10, 2
	cfg.Origin = Vec3{X: 1, Y: 0.5, Z: -1}

	pos := cfg.CellPosition(2, 2)
	assert.Equal(t, Vec3{X: 1, Y: 0.5, Z: -1}, pos)

	pos = cfg.CellPosition(0, 5)
	assert.InDelta(t, 0.8, pos.X, 1e-12)
	assert.InDelta(t, -0.7, pos.Z, 1e-12)

	x, y, ok := cfg.CellAt(cfg.CellPosition(9, 4))
	require.True(t, ok)
	assert.Equal(t, 9, x)
	assert.Equal(t, 4, y)

	_, _, ok = cfg.CellAt(Vec3{X: 100})
	assert.False(t, ok)
}
