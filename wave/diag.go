package wave

import (
	"fmt"
	"math"
)

// checkFinite scans pressure and velocity for NaN, Inf or magnitudes above
// limit.
func checkFinite(f *Fields, limit float32) error {
	for _, buf := range []struct {
		name string
		data []float32
	}{
		{"pressure", f.P},
		{"velocity x", f.VX},
		{"velocity y", f.VY},
	} {
		for i, v := range buf.data {
			if v != v || v > limit || v < -limit || math.IsInf(float64(v), 0) {
				return fmt.Errorf("%w: %s %v at cell (%d, %d)", ErrDiverged, buf.name, v, i%f.Width, i/f.Width)
			}
		}
	}
	return nil
}

// divergenceLimit converts the configured limit, treating values that
// overflow float32 as +Inf so only non-finite values trip the check.
func divergenceLimit(limit float64) float32 {
	if limit > math.MaxFloat32 {
		return float32(math.Inf(1))
	}
	return float32(limit)
}
