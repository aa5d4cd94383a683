// Package scene composes cameras, entities and lights into something the
// frame renderer can draw.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/camera"
	"mini-scene/internal/entity"
	"mini-scene/internal/graphics/renderer"
	"mini-scene/internal/light"
	"mini-scene/internal/profiling"
	"mini-scene/internal/registry"
)

// SpinSpeed is the yaw rate of animated entities in radians per second.
const SpinSpeed = 0.5

var ErrNoCamera = errors.New("scene: no such camera")

// Resizer reacts to a new window size. The renderer implements it.
type Resizer interface {
	Resize(width, height int, cams ...*camera.Camera) error
}

// Scene is the mutable world state between frames.
type Scene struct {
	Assets  *registry.Registry
	Lights  *light.List
	Ambient mgl32.Vec3
	Sky     *renderer.Sky

	cameras []*camera.Camera
	active  *camera.Camera

	// animated entities spin every update, static ones never move.
	animated []*entity.Entity
	static   []*entity.Entity
	drawList []*entity.Entity
}

func New(assets *registry.Registry) *Scene {
	return &Scene{
		Assets: assets,
		Lights: &light.List{},
	}
}

// AddCamera appends a camera. The first camera added becomes active.
func (s *Scene) AddCamera(c *camera.Camera) {
	s.cameras = append(s.cameras, c)
	if s.active == nil {
		s.active = c
	}
}

// AddEntity appends an entity that spins around its own Y axis.
func (s *Scene) AddEntity(e *entity.Entity) {
	s.animated = append(s.animated, e)
	s.drawList = nil
}

// AddStatic appends an entity that is drawn but never animated.
func (s *Scene) AddStatic(e *entity.Entity) {
	s.static = append(s.static, e)
	s.drawList = nil
}

func (s *Scene) Cameras() []*camera.Camera    { return s.cameras }
func (s *Scene) ActiveCamera() *camera.Camera { return s.active }
func (s *Scene) Animated() []*entity.Entity   { return s.animated }
func (s *Scene) Static() []*entity.Entity     { return s.static }

// SelectCamera makes camera i the active one.
func (s *Scene) SelectCamera(i int) error {
	if i < 0 || i >= len(s.cameras) {
		return fmt.Errorf("%w: %d of %d", ErrNoCamera, i, len(s.cameras))
	}
	s.active = s.cameras[i]
	return nil
}

// Update advances animation by dt seconds and flies the active camera.
func (s *Scene) Update(dt float32, in camera.Controls) {
	defer profiling.Track("scene.Update")()

	spin := mgl32.Vec3{0, SpinSpeed * dt, 0}
	for _, e := range s.animated {
		e.Transform().Rotate(spin)
	}
	if s.active != nil {
		s.active.Update(dt, in)
	}
}

// Resize hands the new size and every camera, active or not, to r.
func (s *Scene) Resize(r Resizer, width, height int) error {
	return r.Resize(width, height, s.cameras...)
}

// Frame returns the renderer input for the current state. Animated entities
// are drawn before static ones.
func (s *Scene) Frame() *renderer.Frame {
	if s.drawList == nil {
		s.drawList = make([]*entity.Entity, 0, len(s.animated)+len(s.static))
		s.drawList = append(s.drawList, s.animated...)
		s.drawList = append(s.drawList, s.static...)
	}
	return &renderer.Frame{
		Camera:   s.active,
		Entities: s.drawList,
		Assets:   s.Assets,
		Lights:   s.Lights,
		Ambient:  s.Ambient,
		Sky:      s.Sky,
	}
}
