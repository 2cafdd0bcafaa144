// Package render turns extracted frames into pixels, terminal cells or a
// compact recording.
package render

import (
	"fmt"
	"image/color"

	"github.com/mazznoer/colorgrad"
)

const paletteSize = 256

// WallColor is used for obstacle cells.
var WallColor = color.RGBA{R: 30, G: 40, B: 80, A: 255}

// Palette maps a curvature value in [0, 1] to a colour through a
// precomputed ramp.
type Palette struct {
	colors []color.RGBA
}

// NewPalette interpolates from low (flat field) to high (sharp curvature).
func NewPalette(low, high color.Color) (*Palette, error) {
	grad, err := colorgrad.NewGradient().Colors(low, high).Build()
	if err != nil {
		return nil, fmt.Errorf("building palette: %w", err)
	}
	return fromGradient(grad), nil
}

// DefaultPalette is the viridis ramp.
func DefaultPalette() *Palette {
	return fromGradient(colorgrad.Viridis())
}

func fromGradient(grad colorgrad.Gradient) *Palette {
	ramp := grad.Colors(paletteSize)
	p := &Palette{colors: make([]color.RGBA, len(ramp))}
	for i, c := range ramp {
		p.colors[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return p
}

// At returns the colour for t, clamped to [0, 1].
func (p *Palette) At(t float32) color.RGBA {
	if !(t > 0) {
		return p.colors[0]
	}
	if t >= 1 {
		return p.colors[len(p.colors)-1]
	}
	return p.colors[int(t*float32(len(p.colors)-1)+0.5)]
}

// Len returns the number of precomputed entries.
func (p *Palette) Len() int { return len(p.colors) }
