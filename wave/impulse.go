package wave

import "math"

type impulseTap struct {
	dx, dy int
	weight float64
}

// precomputeImpulseFootprint lists every offset strictly inside radius with
// its linear falloff weight 1 - d/radius.
func precomputeImpulseFootprint(radius float64) []impulseTap {
	if !(radius > 0) {
		return nil
	}
	reach := int(math.Ceil(radius))
	footprint := make([]impulseTap, 0, (2*reach+1)*(2*reach+1))
	for y := -reach; y <= reach; y++ {
		for x := -reach; x <= reach; x++ {
			dist := math.Sqrt(float64(x*x + y*y))
			if dist < radius {
				footprint = append(footprint, impulseTap{dx: x, dy: y, weight: 1 - dist/radius})
			}
		}
	}
	return footprint
}

// injector adds radial pressure pulses to a field.
type injector struct {
	footprint []impulseTap
	cx, cy    int
}

func newInjector(radius float64, width, height int) injector {
	return injector{
		footprint: precomputeImpulseFootprint(radius),
		cx:        width / 2,
		cy:        height / 2,
	}
}

// applyAt adds intensity*weight to every footprint cell around (cx, cy) that
// lies inside the domain.
func (in injector) applyAt(f *Fields, cx, cy int, intensity float64) {
	for _, tap := range in.footprint {
		x := cx + tap.dx
		y := cy + tap.dy
		if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
			continue
		}
		f.P[y*f.Width+x] += float32(intensity * tap.weight)
	}
}

// applyCentral injects at the domain centre.
func (in injector) applyCentral(f *Fields, intensity float64) {
	in.applyAt(f, in.cx, in.cy, intensity)
}
