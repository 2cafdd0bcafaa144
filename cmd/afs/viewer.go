package main

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/urfave/cli"

	"AFS/audio"
	"AFS/render"
)

const (
	defaultTPS               = 60.0
	moveSpeed                = 0.5
	stepDelay                = 60 / 4
	footstepIntensity        = 20
	monitorGain              = 0.02
	audioPlayerBufferLatency = 80 * time.Millisecond
	heightGain               = 0.05
	maxTicksPerFrame         = 64
)

var listenerColor = color.RGBA{255, 0, 0, 255}

// viewer is the ebiten game: it moves the listener body, ticks the
// simulation and draws the latest frame.
type viewer struct {
	*world

	// lx, ly is the listener position in domain cells and forwardX,
	// forwardY its last movement heading.
	lx, ly             float64
	forwardX, forwardY float64

	palette       *render.Palette
	pixels        []byte
	visibility    *render.Visibility
	fovDeg        float64
	debug         bool
	ticksPerFrame int
	stepTimer     int

	lastSimDuration time.Duration

	autoWalk           bool
	autoWalkDeadline   time.Time
	autoWalkRand       *rand.Rand
	autoWalkDirX       float64
	autoWalkDirY       float64
	autoWalkFrameCount int
	stopProfile        func()

	monitor *audio.Monitor
	player  *ebaudio.Player
}

func newViewer(w *world, ticksPerFrame int, debug bool) *viewer {
	v := &viewer{
		world:         w,
		palette:       render.DefaultPalette(),
		pixels:        make([]byte, w.cfg.GridWidth*w.cfg.GridHeight*4),
		debug:         debug,
		ticksPerFrame: max(1, min(ticksPerFrame, maxTicksPerFrame)),
		autoWalkRand:  rand.New(rand.NewSource(time.Now().UnixNano() + 2)),
		forwardY:      -1,
	}
	if b, ok := w.scene.Body(w.listener); ok {
		v.lx = (b.Center.X-w.cfg.Origin.X)/w.cfg.Spacing + float64(w.cfg.Border)
		v.ly = (b.Center.Z-w.cfg.Origin.Z)/w.cfg.Spacing + float64(w.cfg.Border)
	}
	return v
}

// startMonitor plays the centre pressure through the default audio device.
func (v *viewer) startMonitor() {
	ctx := ebaudio.NewContext(audioSampleRate)
	v.monitor = audio.NewMonitor()
	player, err := ctx.NewPlayer(v.monitor)
	if err != nil {
		log.Printf("Audio player creation failed: %v", err)
		v.monitor = nil
		return
	}
	v.player = player
	v.player.SetBufferSize(audioPlayerBufferLatency)
	v.player.Play()
}

// Update moves the listener, fires footsteps and advances the simulation.
func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if v.stopProfile != nil && !v.autoWalk {
		v.stopProfile()
		log.Printf("Scripted walk finished, CPU profile written")
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := v.sim.Reset(); err != nil {
			log.Printf("Obstacle scan after reset failed: %v", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.sim.ApplyCentralImpulse(v.cfg.AudioImpulseMultiplier)
	}
	v.handleDebugControls()

	dx, dy := v.movementVector()
	if dx != 0 || dy != 0 {
		length := math.Hypot(dx, dy)
		v.forwardX, v.forwardY = dx/length, dy/length
		v.moveListener(dx, dy)
		v.stepTimer++
		if v.stepTimer >= stepDelay {
			v.stepTimer = 0
			v.sim.ApplyImpulseAt(int(math.Round(v.lx)), int(math.Round(v.ly)), footstepIntensity)
		}
	} else {
		v.stepTimer = stepDelay
	}

	simStart := time.Now()
	for i := 0; i < v.ticksPerFrame; i++ {
		if err := v.sim.Tick(); err != nil {
			return err
		}
	}
	v.lastSimDuration = time.Since(simStart)

	if v.monitor != nil {
		f := v.sim.Fields()
		v.monitor.SetSample(f.Pressure(f.Width/2, f.Height/2) * monitorGain)
	}
	return nil
}

// moveListener shifts the listener body unless it would enter a wall or
// leave the visible window.
func (v *viewer) moveListener(dx, dy float64) {
	cfg := v.cfg
	lo := float64(cfg.Border + 1)
	nx := math.Max(lo, math.Min(float64(cfg.Border+cfg.GridWidth-2), v.lx+dx))
	ny := math.Max(lo, math.Min(float64(cfg.Border+cfg.GridHeight-2), v.ly+dy))
	pos := v.worldAt(nx, ny)
	blocked, err := v.scene.Probe(pos, listenerRadius, layerWalls)
	if err != nil || blocked {
		return
	}
	if err := v.scene.Move(v.listener, pos); err != nil {
		log.Printf("Moving listener: %v", err)
		return
	}
	v.lx, v.ly = nx, ny
}

func (v *viewer) Draw(screen *ebiten.Image) {
	cx := int(math.Round(v.lx)) - v.cfg.Border
	cy := int(math.Round(v.ly)) - v.cfg.Border
	rad := int(listenerRadius / v.cfg.Spacing)

	frame := v.sim.Frame()
	if err := render.FillPixels(v.pixels, frame, v.palette, heightGain); err == nil {
		if v.visibility != nil {
			// The listener body is solid to the wave but must not block its
			// own view.
			clearance := rad + 1
			opaque := func(x, y int) bool {
				if !frame.Solid[y*frame.Cols+x] {
					return false
				}
				dx, dy := x-cx, y-cy
				return dx*dx+dy*dy > clearance*clearance
			}
			v.visibility.Update(cx, cy, v.forwardX, v.forwardY, v.fovDeg, opaque)
			v.visibility.Occlude(v.pixels)
		}
		screen.WritePixels(v.pixels)
	}

	for y := -rad; y <= rad; y++ {
		for x := -rad; x <= rad; x++ {
			px, py := cx+x, cy+y
			if px >= 0 && px < v.cfg.GridWidth && py >= 0 && py < v.cfg.GridHeight {
				screen.Set(px, py, listenerColor)
			}
		}
	}

	if v.debug {
		tps := math.Max(0, ebiten.ActualTPS())
		simMS := v.lastSimDuration.Seconds() * 1000
		msg := fmt.Sprintf("FPS: %.1f\nTPS: %.1f (%.2fx)\nTicks/frame: %d (+/-)\nSim: %.2f ms\n%s",
			ebiten.ActualFPS(), tps, tps/defaultTPS, v.ticksPerFrame, simMS, statsLine(v.sim))
		ebitenutil.DebugPrint(screen, msg)
	}
}

// Layout reports the visible grid as the logical screen size.
func (v *viewer) Layout(_, _ int) (int, int) { return v.cfg.GridWidth, v.cfg.GridHeight }

func viewAction(c *cli.Context) error {
	w, err := buildWorld(c)
	if err != nil {
		return err
	}
	defer w.sim.Close()

	v := newViewer(w, c.Int("ticks-per-frame"), c.Bool("debug"))
	if c.Bool("occlude-los") {
		v.visibility = render.NewVisibility(w.cfg.GridWidth, w.cfg.GridHeight)
		v.fovDeg = c.Float64("fov-deg")
	}
	if c.Bool("monitor") {
		v.startMonitor()
	}
	if path := c.String("record-pgo"); path != "" {
		stop, err := startCPUProfile(path)
		if err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer stop()
		v.stopProfile = stop
		v.enableAutoWalk(c.Duration("pgo-duration"))
		log.Printf("Recording CPU profile to %s during a %s scripted walk", path, c.Duration("pgo-duration"))
	}

	scale := max(1, c.Int("scale"))
	ebiten.SetWindowSize(w.cfg.GridWidth*scale, w.cfg.GridHeight*scale)
	ebiten.SetWindowTitle("Acoustic Field")
	return ebiten.RunGame(v)
}
