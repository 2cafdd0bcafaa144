package wave

// Frame holds the per-cell visualization outputs of the visible window,
// row-major, indexed y*Cols+x.
type Frame struct {
	Cols, Rows int
	// Heights is pressure scaled by the amplitude multiplier.
	Heights []float32
	// Curvature is |p - mean of the 4 neighbours| scaled by the curvature
	// multiplier and clamped to [0, 1].
	Curvature []float32
	// Solid mirrors the obstacle mask for overlays.
	Solid []bool
}

// NewFrame allocates a frame for a cols x rows window.
func NewFrame(cols, rows int) *Frame {
	return &Frame{
		Cols:      cols,
		Rows:      rows,
		Heights:   make([]float32, cols*rows),
		Curvature: make([]float32, cols*rows),
		Solid:     make([]bool, cols*rows),
	}
}

// At returns the height and curvature of visible cell (x, y).
func (fr *Frame) At(x, y int) (height, curvature float32) {
	i := y*fr.Cols + x
	return fr.Heights[i], fr.Curvature[i]
}

// Extractor computes a Frame from the current pressure field. It only reads
// simulation state.
type Extractor struct {
	border    int
	amplitude float32
	curvature float32
}

// NewExtractor reads the window offset and multipliers from cfg.
func NewExtractor(cfg Config) Extractor {
	return Extractor{
		border:    cfg.Border,
		amplitude: float32(cfg.AmplitudeMultiplier),
		curvature: float32(cfg.CurvatureMultiplier),
	}
}

// Extract fills dst from f and m. Curvature is zero on domain edge cells,
// which are only visible when the border is zero.
func (e Extractor) Extract(f *Fields, m *Mask, dst *Frame) {
	width := f.Width
	for y := 0; y < dst.Rows; y++ {
		sy := y + e.border
		for x := 0; x < dst.Cols; x++ {
			sx := x + e.border
			si := sy*width + sx
			di := y*dst.Cols + x
			p := f.P[si]
			dst.Heights[di] = p * e.amplitude

			var curv float32
			if sx > 0 && sx < width-1 && sy > 0 && sy < f.Height-1 {
				avg := (f.P[si-1] + f.P[si+1] + f.P[si-width] + f.P[si+width]) / 4
				curv = p - avg
				if curv < 0 {
					curv = -curv
				}
			}
			curv *= e.curvature
			if curv > 1 {
				curv = 1
			} else if !(curv >= 0) {
				curv = 0
			}
			dst.Curvature[di] = curv
			if m != nil {
				dst.Solid[di] = m.cells[si]
			}
		}
	}
}
