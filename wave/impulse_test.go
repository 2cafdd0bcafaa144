package wave

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestImpulseRadialFalloff verifies peak, linear falloff and the cut-off at
// the radius after one central impulse on a zero field
func TestImpulseRadialFalloff(t *testing.T) {
	f := NewFields(14, 14)
	in := newInjector(2, f.Width, f.Height)
	in.applyCentral(f, 100)

	assert.Equal(t, float32(100), f.Pressure(7, 7))
	assert.InDelta(t, 50, f.Pressure(8, 7), 1e-5)
	assert.InDelta(t, 50, f.Pressure(7, 6), 1e-5)
	assert.InDelta(t, 100*(1-math.Sqrt2/2), f.Pressure(8, 8), 1e-4)

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			dx, dy := float64(x-7), float64(y-7)
			if math.Sqrt(dx*dx+dy*dy) >= 2 {
				assert.Zero(t, f.Pressure(x, y), "cell (%d, %d) beyond the radius", x, y)
			}
		}
	}
}

// TestImpulseAccumulates verifies that injections add to existing pressure
func TestImpulseAccumulates(t *testing.T) {
	f := NewFields(9, 9)
	in := newInjector(1.5, f.Width, f.Height)
	f.SetPressure(4, 4, 3)
	in.applyCentral(f, 10)
	in.applyCentral(f, 10)
	assert.Equal(t, float32(23), f.Pressure(4, 4))
}

// TestImpulseClipsAtDomainEdge verifies that footprint cells outside the
// domain are skipped
func TestImpulseClipsAtDomainEdge(t *testing.T) {
	f := NewFields(5, 5)
	in := newInjector(3, f.Width, f.Height)
	assert.NotPanics(t, func() { in.applyAt(f, 0, 0, 9) })
	assert.Equal(t, float32(9), f.Pressure(0, 0))
	assert.InDelta(t, 6, f.Pressure(1, 0), 1e-5)
}

// TestImpulseZeroRadius verifies that a zero radius injects nothing
func TestImpulseZeroRadius(t *testing.T) {
	f := NewFields(5, 5)
	in := newInjector(0, f.Width, f.Height)
	in.applyCentral(f, 100)
	assert.Zero(t, f.Energy())
}
