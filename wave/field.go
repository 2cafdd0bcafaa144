package wave

// Fields stores the double-buffered pressure and velocity grids of the
// pressure-velocity solver. Every buffer is row-major, indexed y*Width+x.
type Fields struct {
	Width, Height int

	P, PNew   []float32
	VX, VXNew []float32
	VY, VYNew []float32
}

// NewFields allocates zeroed buffers for a width x height domain.
func NewFields(width, height int) *Fields {
	size := width * height
	return &Fields{
		Width:  width,
		Height: height,
		P:      make([]float32, size),
		PNew:   make([]float32, size),
		VX:     make([]float32, size),
		VXNew:  make([]float32, size),
		VY:     make([]float32, size),
		VYNew:  make([]float32, size),
	}
}

// Index returns the flat offset of cell (x, y). Bounds are the caller's
// responsibility.
func (f *Fields) Index(x, y int) int { return y*f.Width + x }

// Pressure returns the current pressure at (x, y).
func (f *Fields) Pressure(x, y int) float32 { return f.P[y*f.Width+x] }

// SetPressure overwrites the current pressure at (x, y).
func (f *Fields) SetPressure(x, y int, v float32) { f.P[y*f.Width+x] = v }

// Velocity returns the current velocity components at (x, y).
func (f *Fields) Velocity(x, y int) (vx, vy float32) {
	idx := y*f.Width + x
	return f.VX[idx], f.VY[idx]
}

// SetVelocity overwrites the current velocity at (x, y).
func (f *Fields) SetVelocity(x, y int, vx, vy float32) {
	idx := y*f.Width + x
	f.VX[idx] = vx
	f.VY[idx] = vy
}

// zeroCell clears pressure and velocity in the current buffers.
func (f *Fields) zeroCell(idx int) {
	f.P[idx] = 0
	f.VX[idx] = 0
	f.VY[idx] = 0
}

// swapVelocity makes the freshly written velocity buffers current.
func (f *Fields) swapVelocity() {
	f.VX, f.VXNew = f.VXNew, f.VX
	f.VY, f.VYNew = f.VYNew, f.VY
}

// swapPressure makes the freshly written pressure buffer current.
func (f *Fields) swapPressure() {
	f.P, f.PNew = f.PNew, f.P
}

// Reset zeroes all six buffers.
func (f *Fields) Reset() {
	for _, buf := range [][]float32{f.P, f.PNew, f.VX, f.VXNew, f.VY, f.VYNew} {
		clear(buf)
	}
}

// Energy returns the sum of squared pressure over the domain.
func (f *Fields) Energy() float64 {
	var sum float64
	for _, v := range f.P {
		sum += float64(v) * float64(v)
	}
	return sum
}

// KineticEnergy returns the sum of squared velocity magnitudes.
func (f *Fields) KineticEnergy() float64 {
	var sum float64
	for i := range f.VX {
		vx, vy := float64(f.VX[i]), float64(f.VY[i])
		sum += vx*vx + vy*vy
	}
	return sum
}

// Clone returns a deep copy, used to compare runs.
func (f *Fields) Clone() *Fields {
	c := NewFields(f.Width, f.Height)
	copy(c.P, f.P)
	copy(c.PNew, f.PNew)
	copy(c.VX, f.VX)
	copy(c.VXNew, f.VXNew)
	copy(c.VY, f.VY)
	copy(c.VYNew, f.VYNew)
	return c
}
