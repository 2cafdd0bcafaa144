package scene

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AFS/wave"
)

const (
	layerWalls wave.LayerMask = 1 << iota
	layerProps
)

// TestProbeSphere verifies sphere overlap including the touching case
func TestProbeSphere(t *testing.T) {
	s := New()
	_, err := s.AddSphere(wave.Vec3{X: 1, Z: 1}, 0.5, layerWalls)
	require.NoError(t, err)

	hit, err := s.Probe(wave.Vec3{X: 1.2, Z: 1}, 0.05, wave.AllLayers)
	require.NoError(t, err)
	assert.True(t, hit)

	hit, err = s.Probe(wave.Vec3{X: 1.5, Z: 1}, 0, wave.AllLayers)
	require.NoError(t, err)
	assert.True(t, hit, "a point on the surface touches")

	hit, err = s.Probe(wave.Vec3{X: 1.6, Z: 1}, 0.05, wave.AllLayers)
	require.NoError(t, err)
	assert.False(t, hit)
}

// TestProbeBox verifies the closest point test against an axis aligned box
func TestProbeBox(t *testing.T) {
	s := New()
	_, err := s.AddBox(wave.Vec3{}, wave.Vec3{X: 1, Y: 0.5, Z: 0.25}, layerWalls)
	require.NoError(t, err)

	cases := []struct {
		pos    wave.Vec3
		radius float64
		want   bool
	}{
		{wave.Vec3{}, 0, true},
		{wave.Vec3{X: 0.9, Z: 0.2}, 0, true},
		{wave.Vec3{X: 1.05}, 0.1, true},
		{wave.Vec3{X: 1.2}, 0.1, false},
		// Corner: the gap is (0.1, 0, 0.1), length 0.141.
		{wave.Vec3{X: 1.1, Z: 0.35}, 0.1, false},
		{wave.Vec3{X: 1.1, Z: 0.35}, 0.15, true},
		{wave.Vec3{Y: 2}, 0.1, false},
	}
	for _, tc := range cases {
		hit, err := s.Probe(tc.pos, tc.radius, wave.AllLayers)
		require.NoError(t, err)
		assert.Equal(t, tc.want, hit, "probe %+v r=%v", tc.pos, tc.radius)
	}
}

// TestProbeLayerFilter verifies that bodies outside the requested layers are
// ignored
func TestProbeLayerFilter(t *testing.T) {
	s := New()
	_, err := s.AddSphere(wave.Vec3{}, 1, layerProps)
	require.NoError(t, err)

	hit, err := s.Probe(wave.Vec3{}, 0.1, layerWalls)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = s.Probe(wave.Vec3{}, 0.1, layerWalls|layerProps)
	require.NoError(t, err)
	assert.True(t, hit)
}

// TestMoveAndRemove verifies that the index follows body updates
func TestMoveAndRemove(t *testing.T) {
	s := New()
	id, err := s.AddSphere(wave.Vec3{}, 0.2, layerWalls)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Move(id, wave.Vec3{X: 3}))
	hit, _ := s.Probe(wave.Vec3{}, 0.05, wave.AllLayers)
	assert.False(t, hit)
	hit, _ = s.Probe(wave.Vec3{X: 3}, 0.05, wave.AllLayers)
	assert.True(t, hit)

	b, ok := s.Body(id)
	require.True(t, ok)
	assert.Equal(t, 3.0, b.Center.X)

	require.NoError(t, s.Remove(id))
	assert.Zero(t, s.Len())
	hit, _ = s.Probe(wave.Vec3{X: 3}, 0.05, wave.AllLayers)
	assert.False(t, hit)

	assert.ErrorIs(t, s.Remove(id), ErrUnknownBody)
	assert.ErrorIs(t, s.Move(id, wave.Vec3{}), ErrUnknownBody)
}

// TestManyBodies verifies queries against a tree deep enough to split nodes
func TestManyBodies(t *testing.T) {
	s := New()
	for i := 0; i < 200; i++ {
		_, err := s.AddSphere(wave.Vec3{X: float64(i)}, 0.1, layerWalls)
		require.NoError(t, err)
	}
	for i := 0; i < 200; i += 37 {
		hit, err := s.Probe(wave.Vec3{X: float64(i)}, 0.05, wave.AllLayers)
		require.NoError(t, err)
		assert.True(t, hit, "body %d", i)
		hit, err = s.Probe(wave.Vec3{X: float64(i) + 0.5}, 0.05, wave.AllLayers)
		require.NoError(t, err)
		assert.False(t, hit, "gap after body %d", i)
	}
}

// TestSceneRejectsInvalidShapes verifies argument validation
func TestSceneRejectsInvalidShapes(t *testing.T) {
	s := New()
	_, err := s.AddSphere(wave.Vec3{}, -1, layerWalls)
	assert.Error(t, err)
	_, err = s.AddBox(wave.Vec3{}, wave.Vec3{X: -1}, layerWalls)
	assert.Error(t, err)
	_, err = s.Probe(wave.Vec3{}, -1, wave.AllLayers)
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

// TestSceneDrivesObstacleMask verifies the scene as the occupancy query of a
// simulation: a box over a run of cells becomes exactly that run of solids
func TestSceneDrivesObstacleMask(t *testing.T) {
	cfg := wave.DefaultConfig()
	cfg.GridWidth, cfg.GridHeight, cfg.Border = 10, 10, 2

	s := New()
	// Covers domain cells x = 4..6 on row y = 5.
	center := cfg.CellPosition(5, 5)
	_, err := s.AddBox(center, wave.Vec3{X: 1.4 * cfg.Spacing, Y: 0.5, Z: 0.4 * cfg.Spacing}, layerWalls)
	require.NoError(t, err)

	sim, err := wave.New(cfg, s, wave.EnergyFunc(func(int) (float64, error) { return 0, nil }))
	require.NoError(t, err)
	m := sim.Mask()
	assert.Equal(t, 3, m.Count())
	for x := 4; x <= 6; x++ {
		assert.True(t, m.Obstacle(x, 5), "cell (%d, 5)", x)
	}
	assert.False(t, m.Obstacle(7, 5))
	assert.False(t, m.Obstacle(5, 4))
}

// TestGenerateWallsRespectsExclusion verifies that walls stay inside the
// area and away from the keep-clear point
func TestGenerateWallsRespectsExclusion(t *testing.T) {
	opts := DefaultWallOptions(60, 60, wave.Vec3{X: -3, Z: -3}, 0.1)
	opts.Segments = 40
	walls := GenerateWalls(rand.New(rand.NewSource(7)), opts)
	require.NotEmpty(t, walls)

	s := New()
	require.NoError(t, s.AddWalls(walls, layerWalls))
	assert.Equal(t, len(walls), s.Len())

	keep := opts.KeepClear
	for y := 0; y < opts.Rows; y++ {
		for x := 0; x < opts.Cols; x++ {
			pos := wave.Vec3{X: opts.Origin.X + float64(x)*opts.Spacing, Z: opts.Origin.Z + float64(y)*opts.Spacing}
			hit, err := s.Probe(pos, 0.05, wave.AllLayers)
			require.NoError(t, err)
			if !hit {
				continue
			}
			assert.True(t, x > 1 && x < opts.Cols-1 && y > 1 && y < opts.Rows-1, "wall on edge cell (%d, %d)", x, y)
			dx, dz := (pos.X-keep.X)/opts.Spacing, (pos.Z-keep.Z)/opts.Spacing
			assert.GreaterOrEqual(t, dx*dx+dz*dz, opts.ExclusionRadius*opts.ExclusionRadius-1e-6,
				"wall inside exclusion at (%d, %d)", x, y)
		}
	}
}

// TestGenerateWallsDeterministic verifies that a seed reproduces a layout
func TestGenerateWallsDeterministic(t *testing.T) {
	opts := DefaultWallOptions(40, 30, wave.Vec3{}, 0.1)
	a := GenerateWalls(rand.New(rand.NewSource(3)), opts)
	b := GenerateWalls(rand.New(rand.NewSource(3)), opts)
	assert.Equal(t, a, b)
	assert.Nil(t, GenerateWalls(rand.New(rand.NewSource(3)), DefaultWallOptions(4, 4, wave.Vec3{}, 0.1)))
}
