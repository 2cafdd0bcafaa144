package wave

import "fmt"

// Neighbour flags recorded for fluid cells that touch an obstacle.
const (
	solidLeft uint8 = 1 << iota
	solidRight
	solidUp
	solidDown
)

// edgeCell is an interior fluid cell with at least one solid 4-neighbour.
type edgeCell struct {
	idx   int32
	flags uint8
}

// Mask marks which domain cells hold a solid occupant. Values only change
// through Set or a successful Refresh.
type Mask struct {
	width, height int
	cells         []bool
	scratch       []bool

	// solids and edges index the mask for obstacle enforcement; they are
	// rebuilt lazily after the cells change.
	solids  []int32
	edges   []edgeCell
	dirty   bool
	version uint64
}

// NewMask allocates an empty mask for a width x height domain.
func NewMask(width, height int) *Mask {
	return &Mask{
		width:   width,
		height:  height,
		cells:   make([]bool, width*height),
		scratch: make([]bool, width*height),
	}
}

// Obstacle reports whether (x, y) is solid. Coordinates outside the domain
// are not solid.
func (m *Mask) Obstacle(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.cells[y*m.width+x]
}

// Set marks a single cell, for callers that build masks by hand.
func (m *Mask) Set(x, y int, solid bool) {
	idx := y*m.width + x
	if m.cells[idx] == solid {
		return
	}
	m.cells[idx] = solid
	m.markDirty()
}

// Clear removes every obstacle.
func (m *Mask) Clear() {
	clear(m.cells)
	m.markDirty()
}

// Count returns the number of solid cells.
func (m *Mask) Count() int {
	m.ensureIndex()
	return len(m.solids)
}

// Version increases whenever the mask contents may have changed.
func (m *Mask) Version() uint64 { return m.version }

func (m *Mask) markDirty() {
	m.dirty = true
	m.version++
}

// Refresh rescans every cell through prober. cellPos maps a domain cell to
// the world position probed. A failed probe aborts the scan and leaves the
// previous mask in place.
func (m *Mask) Refresh(prober Prober, cellPos func(x, y int) Vec3, radius float64, layers LayerMask) error {
	for y := 0; y < m.height; y++ {
		base := y * m.width
		for x := 0; x < m.width; x++ {
			solid, err := prober.Probe(cellPos(x, y), radius, layers)
			if err != nil {
				return fmt.Errorf("probing cell (%d, %d): %w", x, y, err)
			}
			m.scratch[base+x] = solid
		}
	}
	m.cells, m.scratch = m.scratch, m.cells
	m.markDirty()
	return nil
}

// ensureIndex recalculates the solid cell list and the fluid cells that
// border a solid.
func (m *Mask) ensureIndex() {
	if !m.dirty {
		return
	}
	m.dirty = false
	m.solids = m.solids[:0]
	m.edges = m.edges[:0]
	w := m.width
	for i, solid := range m.cells {
		if solid {
			m.solids = append(m.solids, int32(i))
		}
	}
	if len(m.solids) == 0 {
		return
	}
	for y := 1; y < m.height-1; y++ {
		base := y * w
		for x := 1; x < w-1; x++ {
			i := base + x
			if m.cells[i] {
				continue
			}
			var flags uint8
			if m.cells[i-1] {
				flags |= solidLeft
			}
			if m.cells[i+1] {
				flags |= solidRight
			}
			if m.cells[i-w] {
				flags |= solidUp
			}
			if m.cells[i+w] {
				flags |= solidDown
			}
			if flags != 0 {
				m.edges = append(m.edges, edgeCell{idx: int32(i), flags: flags})
			}
		}
	}
}
