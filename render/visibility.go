package render

import "math"

type cell struct{ x, y int }

// octants maps the shadowcasting scan onto the eight grid octants.
var octants = [8][4]int{
	{1, 0, 0, 1},
	{0, 1, 1, 0},
	{-1, 0, 0, 1},
	{0, 1, -1, 0},
	{-1, 0, 0, -1},
	{0, -1, -1, 0},
	{1, 0, 0, -1},
	{0, -1, 1, 0},
}

// Visibility computes which cells of a cols x rows window can be seen from a
// viewpoint within a field-of-view cone. Opaque cells block sight but are
// themselves visible.
type Visibility struct {
	cols, rows int
	stamp      []uint32
	gen        uint32
	perimeter  []cell

	opaque    func(x, y int) bool
	cosHalfSq float64
	fx, fy    float64
}

// NewVisibility allocates the stamp buffer for a cols x rows window.
func NewVisibility(cols, rows int) *Visibility {
	v := &Visibility{cols: cols, rows: rows, stamp: make([]uint32, cols*rows)}
	for x := 0; x < cols; x++ {
		v.perimeter = append(v.perimeter, cell{x, 0}, cell{x, rows - 1})
	}
	for y := 1; y < rows-1; y++ {
		v.perimeter = append(v.perimeter, cell{0, y}, cell{cols - 1, y})
	}
	return v
}

// Update recomputes visibility from (cx, cy) looking along (fx, fy) with a
// cone of fovDeg degrees, clamped to [1, 180]. A zero heading looks up.
func (v *Visibility) Update(cx, cy int, fx, fy, fovDeg float64, opaque func(x, y int) bool) {
	cx = clampCoord(cx, 0, v.cols-1)
	cy = clampCoord(cy, 0, v.rows-1)
	if v.gen == ^uint32(0) {
		clear(v.stamp)
		v.gen = 1
	} else {
		v.gen++
	}
	v.stamp[cy*v.cols+cx] = v.gen

	mag := math.Hypot(fx, fy)
	if mag == 0 {
		fx, fy, mag = 0, -1, 1
	}
	v.fx, v.fy = fx/mag, fy/mag
	fovDeg = math.Max(1, math.Min(180, fovDeg))
	cosHalf := math.Cos(fovDeg * math.Pi / 360)
	v.cosHalfSq = cosHalf * cosHalf
	v.opaque = opaque

	radius := max(cx, v.cols-1-cx, cy, v.rows-1-cy)
	for _, o := range octants {
		v.castLight(cx, cy, 1, 1.0, 0.0, radius, o[0], o[1], o[2], o[3])
	}

	// Shadowcasting finds nothing when the viewpoint is boxed in on the
	// scan rows; fall back to rays towards the window edge.
	if v.count(2) <= 1 {
		for _, t := range v.perimeter {
			if v.inCone(t.x-cx, t.y-cy) {
				v.castRay(cx, cy, t.x, t.y)
			}
		}
	}
	v.opaque = nil
}

// Visible reports whether (x, y) was visible at the last Update.
func (v *Visibility) Visible(x, y int) bool {
	if x < 0 || x >= v.cols || y < 0 || y >= v.rows {
		return false
	}
	return v.stamp[y*v.cols+x] == v.gen
}

// Occlude paints every hidden cell of an RGBA pixel buffer black.
func (v *Visibility) Occlude(pixels []byte) {
	for i, s := range v.stamp {
		if s == v.gen {
			continue
		}
		base := i * 4
		if base+3 >= len(pixels) {
			return
		}
		pixels[base] = 0
		pixels[base+1] = 0
		pixels[base+2] = 0
		pixels[base+3] = 255
	}
}

// count returns the number of visible cells, stopping once limit is reached.
func (v *Visibility) count(limit int) int {
	n := 0
	for _, s := range v.stamp {
		if s == v.gen {
			n++
			if n >= limit {
				break
			}
		}
	}
	return n
}

func (v *Visibility) inCone(dx, dy int) bool {
	vx, vy := float64(dx), float64(dy)
	dot := vx*v.fx + vy*v.fy
	return dot > 0 && dot*dot >= (vx*vx+vy*vy)*v.cosHalfSq
}

// castLight is recursive symmetric shadowcasting over one octant.
func (v *Visibility) castLight(cx, cy, row int, startSlope, endSlope float64, radius int, xx, xy, yx, yy int) {
	if startSlope < endSlope {
		return
	}
	radiusSq := radius * radius
	for i := row; i <= radius; i++ {
		blocked := false
		newStart := 0.0
		for dx := -i; dx <= 0; dx++ {
			dy := -i
			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)
			if rSlope > startSlope {
				continue
			}
			if lSlope < endSlope {
				break
			}
			X := cx + dx*xx + dy*xy
			Y := cy + dx*yx + dy*yy
			if X < 0 || X >= v.cols || Y < 0 || Y >= v.rows {
				continue
			}
			if dx*dx+dy*dy <= radiusSq && v.inCone(X-cx, Y-cy) {
				v.stamp[Y*v.cols+X] = v.gen
			}
			wall := v.opaque(X, Y)
			if blocked {
				if wall {
					newStart = rSlope
					continue
				}
				blocked = false
				startSlope = newStart
			} else if wall && i < radius {
				blocked = true
				v.castLight(cx, cy, i+1, startSlope, lSlope, radius, xx, xy, yx, yy)
				newStart = rSlope
			}
		}
		if blocked {
			break
		}
	}
}

// castRay marks cells along a Bresenham line up to the first opaque cell.
func (v *Visibility) castRay(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	startX, startY := x0, y0
	for {
		if x0 < 0 || x0 >= v.cols || y0 < 0 || y0 >= v.rows {
			return
		}
		v.stamp[y0*v.cols+x0] = v.gen
		if x0 == x1 && y0 == y1 {
			return
		}
		if (x0 != startX || y0 != startY) && v.opaque(x0, y0) {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// clampCoord constrains v to lie within the inclusive [lo, hi] range.
func clampCoord(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
