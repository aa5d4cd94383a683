package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/camera"
)

// Shadow describes the orthographic volume rendered into the shadow map.
type Shadow struct {
	// Fallback is used when the list has no directional light.
	Fallback mgl32.Vec3
	Distance float32
	Extent   float32
	Near     float32
	Far      float32
}

// Matrices returns the view and projection of the shadow caster, which is
// the first directional light in l.
func (s Shadow) Matrices(l *List) (view, projection mgl32.Mat4) {
	dir := s.Fallback
	if caster, ok := l.FirstDirectional(); ok && caster.Direction.Len() > 0 {
		dir = caster.Direction
	}
	dir = dir.Normalize()

	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir[1]) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}

	eye := dir.Mul(-s.Distance)
	view = camera.LookToLH(eye, dir, up)
	projection = camera.OrthographicLH(s.Extent, s.Extent, s.Near, s.Far)
	return view, projection
}
