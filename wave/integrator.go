package wave

// stepper advances the fields by one tick. The CPU Integrator and the OpenCL
// solver both implement it.
type stepper interface {
	Step(f *Fields, m *Mask) error
	Name() string
	Close()
}

// Integrator is the CPU pressure-velocity solver. Each tick runs four
// ordered phases: velocity from the pressure gradient, pressure from the
// velocity divergence, absorbing edges, then obstacle clamping and
// reflection. Phases one and two write into the New buffers and swap, so no
// cell observes a neighbour updated in the same pass.
type Integrator struct {
	dt      float32
	c2dt    float32
	inv2dx  float32
	damping float32
	spans   []rowSpan
}

// NewIntegrator derives the stencil coefficients from cfg. cfg is assumed
// valid.
func NewIntegrator(cfg Config) *Integrator {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Integrator{
		dt:      float32(cfg.TimeStep),
		c2dt:    float32(cfg.TimeStep * cfg.WaveSpeed * cfg.WaveSpeed),
		inv2dx:  float32(1 / (2 * cfg.Spacing)),
		damping: float32(cfg.Damping),
		spans:   splitRows(1, cfg.SimHeight()-1, workers),
	}
}

// Name identifies the backend in logs.
func (in *Integrator) Name() string { return string(BackendCPU) }

// Close is a no-op for the CPU backend.
func (in *Integrator) Close() {}

// Step runs all four phases.
func (in *Integrator) Step(f *Fields, m *Mask) error {
	in.UpdateVelocity(f)
	in.UpdatePressure(f)
	in.AbsorbBoundaries(f)
	in.EnforceObstacles(f, m)
	return nil
}

// UpdateVelocity applies v' = (v - dt*grad p) * damping on interior cells
// and makes the result current.
func (in *Integrator) UpdateVelocity(f *Fields) {
	forRows(in.spans, func(y0, y1 int) { in.velocityRows(f, y0, y1) })
	f.swapVelocity()
}

func (in *Integrator) velocityRows(f *Fields, y0, y1 int) {
	width := f.Width
	dt, inv2dx, damp := in.dt, in.inv2dx, in.damping
	for y := y0; y < y1; y++ {
		base := y * width
		row := f.P[base : base+width]
		top := f.P[base-width : base]
		bottom := f.P[base+width : base+2*width]
		vx := f.VX[base : base+width]
		vy := f.VY[base : base+width]
		vxNew := f.VXNew[base : base+width]
		vyNew := f.VYNew[base : base+width]
		for x := 1; x < width-1; x++ {
			dpdx := (row[x+1] - row[x-1]) * inv2dx
			dpdy := (bottom[x] - top[x]) * inv2dx
			vxNew[x] = (vx[x] - dt*dpdx) * damp
			vyNew[x] = (vy[x] - dt*dpdy) * damp
		}
	}
}

// UpdatePressure applies p' = (p - dt*c^2*div v) * damping on interior cells
// and makes the result current.
func (in *Integrator) UpdatePressure(f *Fields) {
	forRows(in.spans, func(y0, y1 int) { in.pressureRows(f, y0, y1) })
	f.swapPressure()
}

func (in *Integrator) pressureRows(f *Fields, y0, y1 int) {
	width := f.Width
	c2dt, inv2dx, damp := in.c2dt, in.inv2dx, in.damping
	for y := y0; y < y1; y++ {
		base := y * width
		p := f.P[base : base+width]
		vx := f.VX[base : base+width]
		vyTop := f.VY[base-width : base]
		vyBottom := f.VY[base+width : base+2*width]
		pNew := f.PNew[base : base+width]
		for x := 1; x < width-1; x++ {
			div := (vx[x+1]-vx[x-1])*inv2dx + (vyBottom[x]-vyTop[x])*inv2dx
			pNew[x] = (p[x] - c2dt*div) * damp
		}
	}
}

// AbsorbBoundaries forces pressure to zero on the four domain edges.
func (in *Integrator) AbsorbBoundaries(f *Fields) {
	width, height := f.Width, f.Height
	last := (height - 1) * width
	for x := 0; x < width; x++ {
		f.P[x] = 0
		f.P[last+x] = 0
	}
	for y := 1; y < height-1; y++ {
		f.P[y*width] = 0
		f.P[y*width+width-1] = 0
	}
}

// EnforceObstacles zeroes pressure and velocity inside every solid cell, then
// flips velocity components of neighbouring fluid cells that point into a
// solid. Components already pointing away are left untouched.
func (in *Integrator) EnforceObstacles(f *Fields, m *Mask) {
	if m == nil {
		return
	}
	m.ensureIndex()
	for _, idx := range m.solids {
		f.zeroCell(int(idx))
	}
	for _, e := range m.edges {
		i := int(e.idx)
		if e.flags&solidLeft != 0 && f.VX[i] < 0 {
			f.VX[i] = -f.VX[i]
		}
		if e.flags&solidRight != 0 && f.VX[i] > 0 {
			f.VX[i] = -f.VX[i]
		}
		if e.flags&solidUp != 0 && f.VY[i] < 0 {
			f.VY[i] = -f.VY[i]
		}
		if e.flags&solidDown != 0 && f.VY[i] > 0 {
			f.VY[i] = -f.VY[i]
		}
	}
}
