// Package scene holds the solid occupants of the world and answers the
// sphere overlap queries used to rasterize the obstacle mask.
package scene

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"

	"AFS/wave"
)

const (
	treeDims     = 3
	treeMinNodes = 25
	treeMaxNodes = 50
	// minExtent keeps degenerate query and body rectangles valid for the
	// tree, which rejects zero lengths.
	minExtent = 1e-9
)

// ErrUnknownBody is returned when a body id is not part of the scene.
var ErrUnknownBody = errors.New("scene: unknown body")

// Shape selects the collision volume of a body.
type Shape int

const (
	Sphere Shape = iota
	Box
)

func (s Shape) String() string {
	switch s {
	case Sphere:
		return "sphere"
	case Box:
		return "box"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Body is a solid occupant. Spheres use Radius; boxes are axis aligned and
// use HalfExtents.
type Body struct {
	ID          int
	Shape       Shape
	Center      wave.Vec3
	Radius      float64
	HalfExtents wave.Vec3
	Layer       wave.LayerMask

	bounds rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (b *Body) Bounds() rtreego.Rect { return b.bounds }

func (b *Body) halfExtents() wave.Vec3 {
	if b.Shape == Sphere {
		return wave.Vec3{X: b.Radius, Y: b.Radius, Z: b.Radius}
	}
	return b.HalfExtents
}

func (b *Body) updateBounds() error {
	r, err := boxRect(b.Center, b.halfExtents())
	if err != nil {
		return fmt.Errorf("bounds of %s %d: %w", b.Shape, b.ID, err)
	}
	b.bounds = r
	return nil
}

// overlapsSphere is the fine test run on the candidates the tree returns.
func (b *Body) overlapsSphere(pos wave.Vec3, radius float64) bool {
	switch b.Shape {
	case Sphere:
		dx, dy, dz := pos.X-b.Center.X, pos.Y-b.Center.Y, pos.Z-b.Center.Z
		reach := radius + b.Radius
		return dx*dx+dy*dy+dz*dz <= reach*reach
	case Box:
		dx := axisGap(pos.X, b.Center.X, b.HalfExtents.X)
		dy := axisGap(pos.Y, b.Center.Y, b.HalfExtents.Y)
		dz := axisGap(pos.Z, b.Center.Z, b.HalfExtents.Z)
		return dx*dx+dy*dy+dz*dz <= radius*radius
	}
	return false
}

// axisGap is the distance from p to the slab [c-half, c+half] on one axis.
func axisGap(p, c, half float64) float64 {
	d := math.Abs(p-c) - half
	if d < 0 {
		return 0
	}
	return d
}

func boxRect(center, half wave.Vec3) (rtreego.Rect, error) {
	lengths := []float64{
		math.Max(2*half.X, minExtent),
		math.Max(2*half.Y, minExtent),
		math.Max(2*half.Z, minExtent),
	}
	corner := rtreego.Point{center.X - lengths[0]/2, center.Y - lengths[1]/2, center.Z - lengths[2]/2}
	return rtreego.NewRect(corner, lengths)
}

// Scene indexes bodies in an R-tree. It is safe for concurrent use; probes
// take a read lock so a mask refresh can run while another goroutine waits
// to move bodies.
type Scene struct {
	mu     sync.RWMutex
	tree   *rtreego.Rtree
	bodies map[int]*Body
	nextID int
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		tree:   rtreego.NewTree(treeDims, treeMinNodes, treeMaxNodes),
		bodies: make(map[int]*Body),
	}
}

// AddSphere inserts a sphere and returns its id.
func (s *Scene) AddSphere(center wave.Vec3, radius float64, layer wave.LayerMask) (int, error) {
	if radius < 0 {
		return 0, fmt.Errorf("scene: negative sphere radius %v", radius)
	}
	return s.add(&Body{Shape: Sphere, Center: center, Radius: radius, Layer: layer})
}

// AddBox inserts an axis aligned box and returns its id.
func (s *Scene) AddBox(center, halfExtents wave.Vec3, layer wave.LayerMask) (int, error) {
	if halfExtents.X < 0 || halfExtents.Y < 0 || halfExtents.Z < 0 {
		return 0, fmt.Errorf("scene: negative box extents %+v", halfExtents)
	}
	return s.add(&Body{Shape: Box, Center: center, HalfExtents: halfExtents, Layer: layer})
}

func (s *Scene) add(b *Body) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	if err := b.updateBounds(); err != nil {
		return 0, err
	}
	s.nextID++
	s.bodies[b.ID] = b
	s.tree.Insert(b)
	return b.ID, nil
}

// Move relocates a body. The tree entry is removed before the bounds change
// because deletion looks the body up by its current bounds.
func (s *Scene) Move(id int, center wave.Vec3) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	s.tree.Delete(b)
	prev := b.Center
	b.Center = center
	if err := b.updateBounds(); err != nil {
		b.Center = prev
		_ = b.updateBounds()
		s.tree.Insert(b)
		return err
	}
	s.tree.Insert(b)
	return nil
}

// Remove deletes a body from the scene.
func (s *Scene) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bodies[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	s.tree.Delete(b)
	delete(s.bodies, id)
	return nil
}

// Body returns a copy of the body with the given id.
func (s *Scene) Body(id int) (Body, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bodies[id]
	if !ok {
		return Body{}, false
	}
	return *b, true
}

// Len returns the number of bodies.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bodies)
}

// Probe reports whether any body on one of the given layers overlaps the
// sphere at pos. It implements wave.Prober.
func (s *Scene) Probe(pos wave.Vec3, radius float64, layers wave.LayerMask) (bool, error) {
	if radius < 0 {
		return false, fmt.Errorf("scene: negative probe radius %v", radius)
	}
	query, err := boxRect(pos, wave.Vec3{X: radius, Y: radius, Z: radius})
	if err != nil {
		return false, fmt.Errorf("scene: probe at %+v: %w", pos, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	hit := false
	s.tree.SearchIntersect(query, func(_ []rtreego.Spatial, obj rtreego.Spatial) (refuse, abort bool) {
		b := obj.(*Body)
		if b.Layer&layers == 0 || !b.overlapsSphere(pos, radius) {
			return true, false
		}
		hit = true
		return false, true
	})
	return hit, nil
}
