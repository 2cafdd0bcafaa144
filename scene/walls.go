package scene

import (
	"math"
	"math/rand"

	"AFS/wave"
)

// wallMargin is the box margin around outer cell centres, in cells.
const wallMargin = 0.4

// WallOptions controls procedural wall generation over a grid of cells.
type WallOptions struct {
	// Cols and Rows size the area in cells; Origin is the world position of
	// cell (0, 0) and Spacing the cell size.
	Cols, Rows int
	Origin     wave.Vec3
	Spacing    float64

	Segments          int
	MinLength         int
	MaxLength         int
	ThicknessVariance int
	// Height is the vertical extent of each wall box.
	Height float64
	Layer  wave.LayerMask

	// KeepClear and ExclusionRadius (in cells) describe an area no wall may
	// touch, normally the impulse centre.
	KeepClear       wave.Vec3
	ExclusionRadius float64
}

// DefaultWallOptions sizes walls for a cols x rows area.
func DefaultWallOptions(cols, rows int, origin wave.Vec3, spacing float64) WallOptions {
	return WallOptions{
		Cols:              cols,
		Rows:              rows,
		Origin:            origin,
		Spacing:           spacing,
		Segments:          8,
		MinLength:         6,
		MaxLength:         max(6, min(cols, rows)/3),
		ThicknessVariance: 1,
		Height:            1,
		Layer:             wave.AllLayers,
		KeepClear: wave.Vec3{
			X: origin.X + float64(cols/2)*spacing,
			Y: origin.Y,
			Z: origin.Z + float64(rows/2)*spacing,
		},
		ExclusionRadius: 6,
	}
}

// WallBox is an axis aligned wall ready for Scene.AddBox.
type WallBox struct {
	Center      wave.Vec3
	HalfExtents wave.Vec3
}

// GenerateWalls lays out straight horizontal or vertical segments of random
// length and thickness. Segments stop one cell short of the area edge and
// cells within the exclusion radius of KeepClear are left open by ending
// the segment there.
func GenerateWalls(rng *rand.Rand, opts WallOptions) []WallBox {
	if opts.Cols < 5 || opts.Rows < 5 || opts.Spacing <= 0 {
		return nil
	}
	lengthRange := opts.MaxLength - opts.MinLength + 1
	if lengthRange <= 0 {
		lengthRange = 1
	}
	keepX := (opts.KeepClear.X - opts.Origin.X) / opts.Spacing
	keepY := (opts.KeepClear.Z - opts.Origin.Z) / opts.Spacing
	blocked := func(x, y int) bool {
		if x <= 1 || x >= opts.Cols-1 || y <= 1 || y >= opts.Rows-1 {
			return true
		}
		dx, dy := float64(x)-keepX, float64(y)-keepY
		return dx*dx+dy*dy < opts.ExclusionRadius*opts.ExclusionRadius
	}

	var walls []WallBox
	for s := 0; s < opts.Segments; s++ {
		length := opts.MinLength + rng.Intn(lengthRange)
		thickness := 0
		if opts.ThicknessVariance > 0 {
			thickness = rng.Intn(opts.ThicknessVariance + 1)
		}
		horizontal := rng.Intn(2) == 0
		x := rng.Intn(opts.Cols-4) + 2
		y := rng.Intn(opts.Rows-4) + 2
		dx, dy := 0, 1
		if horizontal {
			dx, dy = 1, 0
		}
		perpX, perpY := dy, dx

		// Walk the centre line until any cell of the cross-section is
		// blocked, then emit the run walked so far.
		run := 0
		for l := 0; l < length; l++ {
			cx, cy := x+dx*l, y+dy*l
			open := true
			for t := -thickness; t <= thickness; t++ {
				if blocked(cx+perpX*t, cy+perpY*t) {
					open = false
					break
				}
			}
			if !open {
				break
			}
			run++
		}
		if run == 0 {
			continue
		}

		// Cell span covered by the segment, inclusive.
		x0, y0 := x-perpX*thickness, y-perpY*thickness
		x1, y1 := x+dx*(run-1)+perpX*thickness, y+dy*(run-1)+perpY*thickness
		walls = append(walls, opts.cellBox(x0, y0, x1, y1))
	}
	return walls
}

// cellBox returns a box whose footprint covers cells [x0, x1] x [y0, y1].
// The margin around the outer cell centres stays below half a cell so that
// probes of neighbouring cells with a small radius remain open.
func (o WallOptions) cellBox(x0, y0, x1, y1 int) WallBox {
	cx := (float64(x0) + float64(x1)) / 2
	cy := (float64(y0) + float64(y1)) / 2
	return WallBox{
		Center: wave.Vec3{
			X: o.Origin.X + cx*o.Spacing,
			Y: o.Origin.Y,
			Z: o.Origin.Z + cy*o.Spacing,
		},
		HalfExtents: wave.Vec3{
			X: (math.Abs(float64(x1-x0))/2 + wallMargin) * o.Spacing,
			Y: o.Height / 2,
			Z: (math.Abs(float64(y1-y0))/2 + wallMargin) * o.Spacing,
		},
	}
}

// AddWalls inserts generated walls into s on the given layer.
func (s *Scene) AddWalls(walls []WallBox, layer wave.LayerMask) error {
	for _, w := range walls {
		if _, err := s.AddBox(w.Center, w.HalfExtents, layer); err != nil {
			return err
		}
	}
	return nil
}
