package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func noWalls(int, int) bool { return false }

// TestVisibilityCone verifies the field-of-view cone on an open window
func TestVisibilityCone(t *testing.T) {
	v := NewVisibility(11, 11)
	v.Update(5, 5, 0, -1, 90, noWalls)

	assert.True(t, v.Visible(5, 5), "viewpoint")
	assert.True(t, v.Visible(5, 0))
	assert.True(t, v.Visible(3, 1))
	assert.False(t, v.Visible(5, 9), "behind the viewer")
	assert.False(t, v.Visible(0, 5), "perpendicular to the heading")
	assert.False(t, v.Visible(0, 4), "outside a 90 degree cone")
	assert.False(t, v.Visible(-1, 0))
}

// TestVisibilityWallShadow verifies that opaque cells hide what lies behind
// them but stay visible themselves
func TestVisibilityWallShadow(t *testing.T) {
	wall := func(x, y int) bool { return y == 3 && x >= 2 && x <= 8 }
	v := NewVisibility(11, 11)
	v.Update(5, 8, 0, 0, 180, wall)

	assert.True(t, v.Visible(5, 5))
	assert.True(t, v.Visible(5, 3), "the wall face")
	assert.False(t, v.Visible(5, 1), "behind the wall")
	assert.False(t, v.Visible(5, 2))
}

// TestVisibilityOcclude verifies that hidden cells are blacked out
func TestVisibilityOcclude(t *testing.T) {
	v := NewVisibility(3, 3)
	v.Update(1, 1, 0, -1, 90, noWalls)

	pixels := make([]byte, 3*3*4)
	for i := range pixels {
		pixels[i] = 200
	}
	v.Occlude(pixels)

	assert.Equal(t, []byte{200, 200, 200, 200}, pixels[1*4:2*4], "cell above is visible")
	below := (2*3 + 1) * 4
	assert.Equal(t, []byte{0, 0, 0, 255}, pixels[below:below+4])
}

// TestVisibilityGenerationsReset verifies that repeated updates do not leak
// visibility from an earlier viewpoint
func TestVisibilityGenerationsReset(t *testing.T) {
	v := NewVisibility(9, 9)
	v.Update(4, 4, 0, -1, 60, noWalls)
	assert.True(t, v.Visible(4, 0))
	v.Update(4, 4, 0, 1, 60, noWalls)
	assert.False(t, v.Visible(4, 0))
	assert.True(t, v.Visible(4, 8))

	v.gen = ^uint32(0)
	v.Update(4, 4, 1, 0, 60, noWalls)
	assert.Equal(t, uint32(1), v.gen)
	assert.True(t, v.Visible(8, 4))
	assert.False(t, v.Visible(4, 8))
}
