package render

import (
	"fmt"
	"math"

	"AFS/wave"
)

// FillPixels writes frame as RGBA bytes into dst, which must hold
// Cols*Rows*4 bytes. Brightness follows |height|*gain clamped to 1 and the
// hue follows curvature through pal. Obstacles are drawn in WallColor.
func FillPixels(dst []byte, frame *wave.Frame, pal *Palette, gain float32) error {
	n := frame.Cols * frame.Rows
	if len(dst) < n*4 {
		return fmt.Errorf("pixel buffer holds %d bytes, need %d", len(dst), n*4)
	}
	for i := 0; i < n; i++ {
		base := i * 4
		if frame.Solid[i] {
			dst[base] = WallColor.R
			dst[base+1] = WallColor.G
			dst[base+2] = WallColor.B
			dst[base+3] = 255
			continue
		}
		intensity := magnitude(frame.Heights[i], gain)
		c := pal.At(frame.Curvature[i])
		dst[base] = byte(float32(c.R) * intensity)
		dst[base+1] = byte(float32(c.G) * intensity)
		dst[base+2] = byte(float32(c.B) * intensity)
		dst[base+3] = 255
	}
	return nil
}

// magnitude returns |h|*gain clamped to [0, 1]; NaN maps to 0.
func magnitude(h, gain float32) float32 {
	v := math.Abs(float64(h * gain))
	switch {
	case math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return float32(v)
}
