package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"AFS/wave"
)

// worldAt converts fractional domain cell coordinates to a world position.
func (v *viewer) worldAt(x, y float64) wave.Vec3 {
	cfg := v.cfg
	return wave.Vec3{
		X: cfg.Origin.X + (x-float64(cfg.Border))*cfg.Spacing,
		Y: cfg.Origin.Y,
		Z: cfg.Origin.Z + (y-float64(cfg.Border))*cfg.Spacing,
	}
}

// enableAutoWalk schedules scripted movement for a limited duration.
func (v *viewer) enableAutoWalk(duration time.Duration) {
	v.autoWalk = true
	v.autoWalkDeadline = time.Now().Add(duration)
	v.autoWalkFrameCount = 0
}

// movementVector selects either manual or automatic movement direction.
func (v *viewer) movementVector() (float64, float64) {
	if v.autoWalk {
		if time.Now().After(v.autoWalkDeadline) {
			v.autoWalk = false
			return 0, 0
		}
		return v.autoWalkVector()
	}
	return manualMovementVector()
}

// manualMovementVector returns WASD input scaled by moveSpeed.
func manualMovementVector() (float64, float64) {
	dx, dy := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		dy -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		dy += moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		dx -= moveSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		dx += moveSpeed
	}
	if dx != 0 && dy != 0 {
		dx *= 0.7071
		dy *= 0.7071
	}
	return dx, dy
}

// autoWalkVector returns a pseudo-random heading that avoids walls.
func (v *viewer) autoWalkVector() (float64, float64) {
	for attempts := 0; attempts < 5; attempts++ {
		if v.autoWalkFrameCount <= 0 {
			v.randomizeAutoWalkDirection()
		}
		nextX := v.lx + v.autoWalkDirX*moveSpeed
		nextY := v.ly + v.autoWalkDirY*moveSpeed
		if v.walkable(nextX, nextY) {
			v.autoWalkFrameCount--
			return v.autoWalkDirX * moveSpeed, v.autoWalkDirY * moveSpeed
		}
		v.autoWalkFrameCount = 0
	}
	return 0, 0
}

func (v *viewer) walkable(x, y float64) bool {
	cfg := v.cfg
	if x <= float64(cfg.Border+1) || x >= float64(cfg.Border+cfg.GridWidth-2) ||
		y <= float64(cfg.Border+1) || y >= float64(cfg.Border+cfg.GridHeight-2) {
		return false
	}
	blocked, err := v.scene.Probe(v.worldAt(x, y), listenerRadius, layerWalls)
	return err == nil && !blocked
}

// randomizeAutoWalkDirection chooses a new heading for automatic walking.
func (v *viewer) randomizeAutoWalkDirection() {
	if v.autoWalkRand == nil {
		v.autoWalkRand = rand.New(rand.NewSource(time.Now().UnixNano() + 5))
	}
	angle := v.autoWalkRand.Float64() * 2 * math.Pi
	v.autoWalkDirX = math.Cos(angle)
	v.autoWalkDirY = math.Sin(angle)
	v.autoWalkFrameCount = 20 + v.autoWalkRand.Intn(50)
}

// handleDebugControls processes debug overlay hotkeys.
func (v *viewer) handleDebugControls() {
	if !v.debug {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		v.ticksPerFrame = max(1, v.ticksPerFrame-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		v.ticksPerFrame = min(maxTicksPerFrame, v.ticksPerFrame+1)
	}
}
