package render

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"AFS/wave"
)

// intensityRamp orders glyphs from empty to dense.
var intensityRamp = []rune(" .:-=+*#%@")

const wallRune = '#'

// TerminalSink draws frames onto a tcell screen, one glyph per screen cell,
// sampling the nearest frame cell when the sizes differ. The last row is
// reserved for a status line.
type TerminalSink struct {
	mu      sync.Mutex
	screen  tcell.Screen
	palette *Palette
	gain    float32
	status  string
}

// NewTerminalSink draws on an initialised screen.
func NewTerminalSink(screen tcell.Screen, pal *Palette, gain float32) *TerminalSink {
	return &TerminalSink{screen: screen, palette: pal, gain: gain}
}

// SetStatus replaces the status line shown under the field.
func (t *TerminalSink) SetStatus(s string) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// Present implements wave.Sink.
func (t *TerminalSink) Present(frame *wave.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	sw, sh := t.screen.Size()
	rows := sh - 1
	if sw <= 0 || rows <= 0 || frame.Cols == 0 || frame.Rows == 0 {
		return nil
	}
	wall := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(WallColor.R), int32(WallColor.G), int32(WallColor.B)))
	for sy := 0; sy < rows; sy++ {
		fy := sy * frame.Rows / rows
		for sx := 0; sx < sw; sx++ {
			fx := sx * frame.Cols / sw
			i := fy*frame.Cols + fx
			if frame.Solid[i] {
				t.screen.SetContent(sx, sy, wallRune, nil, wall)
				continue
			}
			level := magnitude(frame.Heights[i], t.gain)
			glyph := intensityRamp[int(level*float32(len(intensityRamp)-1)+0.5)]
			c := t.palette.At(frame.Curvature[i])
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
			t.screen.SetContent(sx, sy, glyph, nil, style)
		}
	}
	t.drawStatus(sw, sh-1)
	t.screen.Show()
	return nil
}

func (t *TerminalSink) drawStatus(width, y int) {
	runes := []rune(t.status)
	for x := 0; x < width; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		t.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
	}
}
