package render

import (
	"bytes"
	"image/color"
	"io"
	"math"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AFS/wave"
)

var _ wave.Sink = (*TerminalSink)(nil)

func grayPalette(t *testing.T) *Palette {
	t.Helper()
	pal, err := NewPalette(color.RGBA{A: 255}, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	require.NoError(t, err)
	return pal
}

// TestPaletteRamp verifies endpoints, clamping and monotonic interpolation
func TestPaletteRamp(t *testing.T) {
	pal := grayPalette(t)
	require.Equal(t, paletteSize, pal.Len())

	assert.Equal(t, color.RGBA{A: 255}, pal.At(0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, pal.At(1))
	assert.Equal(t, pal.At(0), pal.At(-3))
	assert.Equal(t, pal.At(1), pal.At(7))
	assert.Equal(t, pal.At(0), pal.At(float32(math.NaN())))

	prev := pal.At(0).R
	for i := 1; i <= 10; i++ {
		c := pal.At(float32(i) / 10)
		assert.GreaterOrEqual(t, c.R, prev)
		prev = c.R
	}

	def := DefaultPalette()
	assert.NotEqual(t, def.At(0), def.At(1))
}

func testFrame() *wave.Frame {
	fr := wave.NewFrame(2, 2)
	fr.Heights[0] = 3    // saturated
	fr.Heights[1] = 0    // flat
	fr.Solid[2] = true   // wall
	fr.Heights[3] = -0.5 // half intensity
	fr.Curvature[0] = 1  // brightest palette entry
	fr.Curvature[3] = 1
	return fr
}

// TestFillPixels verifies brightness, hue and obstacle colouring
func TestFillPixels(t *testing.T) {
	pal := grayPalette(t)
	fr := testFrame()
	px := make([]byte, 16)
	require.NoError(t, FillPixels(px, fr, pal, 1))

	assert.Equal(t, []byte{255, 255, 255, 255}, px[0:4])
	assert.Equal(t, []byte{0, 0, 0, 255}, px[4:8])
	assert.Equal(t, []byte{WallColor.R, WallColor.G, WallColor.B, 255}, px[8:12])
	assert.Equal(t, []byte{127, 127, 127, 255}, px[12:16])

	assert.Error(t, FillPixels(make([]byte, 15), fr, pal, 1))
}

// TestTerminalSink verifies glyph selection, scaling and the status line
func TestTerminalSink(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(4, 3)

	sink := NewTerminalSink(screen, grayPalette(t), 1)
	sink.SetStatus("tick 1")
	require.NoError(t, sink.Present(testFrame()))

	glyph := func(x, y int) rune {
		r, _, _, _ := screen.GetContent(x, y)
		return r
	}
	// Four screen columns sample two frame columns.
	assert.Equal(t, '@', glyph(0, 0))
	assert.Equal(t, '@', glyph(1, 0))
	assert.Equal(t, ' ', glyph(2, 0))
	assert.Equal(t, wallRune, glyph(0, 1))
	assert.Equal(t, intensityRamp[5], glyph(3, 1))
	assert.Equal(t, 't', glyph(0, 2))
	assert.Equal(t, 'k', glyph(3, 2))
}

// TestHalfCodec verifies exact values and the special cases of binary16
func TestHalfCodec(t *testing.T) {
	exact := []float32{0, 1, -2, 0.5, 1024, 65504, 1 + 1.0/1024, float32(math.Ldexp(1, -20))}
	for _, v := range exact {
		assert.Equal(t, v, halfToFloat32(halfBits(v)), "value %v", v)
	}
	assert.True(t, math.IsInf(float64(halfToFloat32(halfBits(70000))), 1))
	assert.True(t, math.IsInf(float64(halfToFloat32(halfBits(float32(math.Inf(-1))))), -1))
	assert.True(t, math.IsNaN(float64(halfToFloat32(halfBits(float32(math.NaN()))))))
	assert.Zero(t, halfToFloat32(halfBits(1e-10)))
	assert.InDelta(t, 0.1, halfToFloat32(halfBits(0.1)), 1e-4)
	assert.Equal(t, uint16(0x8000), halfBits(float32(math.Copysign(0, -1))))
}

// TestRecorderRoundTrip verifies that recorded frames read back in order
func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, 2, 2)
	require.NoError(t, err)

	first := testFrame()
	second := wave.NewFrame(2, 2)
	second.Heights[1] = 0.1
	second.Curvature[2] = 0.25
	require.NoError(t, rec.Present(first))
	require.NoError(t, rec.Present(second))
	require.NoError(t, rec.Flush())
	assert.Equal(t, uint64(2), rec.Frames())
	assert.Error(t, rec.Present(wave.NewFrame(3, 2)))

	rd, err := NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	cols, rows := rd.Size()
	require.Equal(t, 2, cols)
	require.Equal(t, 2, rows)

	got := wave.NewFrame(2, 2)
	seq, err := rd.Next(got)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, first.Heights, got.Heights)
	assert.Equal(t, first.Curvature, got.Curvature)
	assert.False(t, got.Solid[2], "obstacles are not recorded")

	seq, err = rd.Next(got)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), seq)
	assert.InDelta(t, 0.1, got.Heights[1], 1e-4)
	assert.Equal(t, float32(0.25), got.Curvature[2])

	_, err = rd.Next(got)
	assert.ErrorIs(t, err, io.EOF)
}

// TestFrameReaderRejectsBadInput verifies header and truncation handling
func TestFrameReaderRejectsBadInput(t *testing.T) {
	_, err := NewFrameReader(bytes.NewReader([]byte("RIFF0000000000000000")))
	assert.ErrorIs(t, err, ErrBadRecording)
	_, err = NewFrameReader(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrBadRecording)

	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, 2, 2)
	require.NoError(t, err)
	require.NoError(t, rec.Present(testFrame()))
	require.NoError(t, rec.Flush())
	truncated := buf.Bytes()[:buf.Len()-3]

	rd, err := NewFrameReader(bytes.NewReader(truncated))
	require.NoError(t, err)
	_, err = rd.Next(wave.NewFrame(2, 2))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	rd, err = NewFrameReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	_, err = rd.Next(wave.NewFrame(1, 1))
	assert.ErrorIs(t, err, ErrBadRecording)
}
