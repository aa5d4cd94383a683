package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// The scene is left-handed: +X right, +Y up, +Z into the screen.
// Matrices below map that space into OpenGL clip space (z in [-1, 1]).

// LookToLH builds a view matrix for an eye at eye looking along dir.
func LookToLH(eye, dir, up mgl32.Vec3) mgl32.Mat4 {
	z := dir.Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// PerspectiveLH builds a perspective projection. fov is the vertical field
// of view in radians. A zero aspect or near == far yields a degenerate
// matrix; callers own validation.
func PerspectiveLH(fov, aspect, near, far float32) mgl32.Mat4 {
	yScale := 1 / math32.Tan(fov/2)
	xScale := yScale / aspect
	depth := far - near

	return mgl32.Mat4{
		xScale, 0, 0, 0,
		0, yScale, 0, 0,
		0, 0, (far + near) / depth, 1,
		0, 0, -2 * far * near / depth, 0,
	}
}

// OrthographicLH builds an orthographic projection of the given width and
// height centred on the view axis.
func OrthographicLH(width, height, near, far float32) mgl32.Mat4 {
	depth := far - near

	return mgl32.Mat4{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, 2 / depth, 0,
		0, 0, -(far + near) / depth, 1,
	}
}
