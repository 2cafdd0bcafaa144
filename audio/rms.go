// Package audio turns raw sample streams into the RMS energy that drives
// impulse injection, and turns centre pressure back into PCM for listening.
package audio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RMS returns sqrt(sum(s^2)/n). An empty slice has zero energy.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
}
