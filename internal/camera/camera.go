package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/transform"
)

const (
	DefaultNearClip = 0.01
	DefaultFarClip  = 100.0

	fastMultiplier = 5
	slowMultiplier = 0.1

	maxPitch = math32.Pi / 2
)

var worldUp = mgl32.Vec3{0, 1, 0}

// Controls is the input snapshot a camera consumes once per update.
type Controls struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Up       bool
	Down     bool

	Fast bool
	Slow bool

	// Look enables pointer look; LookDX/LookDY are the pointer deltas for
	// this tick in pixels.
	Look   bool
	LookDX float32
	LookDY float32
}

// Camera is a free-flying perspective viewpoint.
type Camera struct {
	transform transform.Transform

	fieldOfView float32
	aspectRatio float32
	nearClip    float32
	farClip     float32

	movementSpeed  float32
	mouseLookSpeed float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

type Option func(*Camera)

func WithNearClip(distance float32) Option {
	return func(c *Camera) { c.nearClip = distance }
}

func WithFarClip(distance float32) Option {
	return func(c *Camera) { c.farClip = distance }
}

// New creates a camera at position. fov is in radians.
func New(position mgl32.Vec3, moveSpeed, lookSpeed, fov, aspect float32, opts ...Option) *Camera {
	c := &Camera{
		transform:      transform.New(),
		fieldOfView:    fov,
		aspectRatio:    aspect,
		nearClip:       DefaultNearClip,
		farClip:        DefaultFarClip,
		movementSpeed:  moveSpeed,
		mouseLookSpeed: lookSpeed,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transform.SetPosition(position)

	c.UpdateViewMatrix()
	c.UpdateProjectionMatrix(aspect)
	return c
}

// Transform returns the camera's own transform. Changes made through it
// show up in the view matrix after the next Update or UpdateViewMatrix.
func (c *Camera) Transform() *transform.Transform { return &c.transform }

func (c *Camera) View() mgl32.Mat4       { return c.view }
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

func (c *Camera) FieldOfView() float32    { return c.fieldOfView }
func (c *Camera) AspectRatio() float32    { return c.aspectRatio }
func (c *Camera) NearClip() float32       { return c.nearClip }
func (c *Camera) FarClip() float32        { return c.farClip }
func (c *Camera) MovementSpeed() float32  { return c.movementSpeed }
func (c *Camera) MouseLookSpeed() float32 { return c.mouseLookSpeed }

func (c *Camera) SetFieldOfView(fov float32) {
	c.fieldOfView = fov
	c.UpdateProjectionMatrix(c.aspectRatio)
}

func (c *Camera) SetNearClip(distance float32) {
	c.nearClip = distance
	c.UpdateProjectionMatrix(c.aspectRatio)
}

func (c *Camera) SetFarClip(distance float32) {
	c.farClip = distance
	c.UpdateProjectionMatrix(c.aspectRatio)
}

func (c *Camera) SetMovementSpeed(speed float32)  { c.movementSpeed = speed }
func (c *Camera) SetMouseLookSpeed(speed float32) { c.mouseLookSpeed = speed }

// Update applies one tick of fly controls and rebuilds the view matrix.
func (c *Camera) Update(dt float32, in Controls) {
	speed := dt * c.movementSpeed
	if in.Fast {
		speed *= fastMultiplier
	}
	if in.Slow {
		speed *= slowMultiplier
	}

	if in.Forward {
		c.transform.MoveRelative(mgl32.Vec3{0, 0, speed})
	}
	if in.Left {
		c.transform.MoveRelative(mgl32.Vec3{-speed, 0, 0})
	}
	if in.Backward {
		c.transform.MoveRelative(mgl32.Vec3{0, 0, -speed})
	}
	if in.Right {
		c.transform.MoveRelative(mgl32.Vec3{speed, 0, 0})
	}
	if in.Down {
		c.transform.MoveRelative(mgl32.Vec3{0, -speed, 0})
	}
	if in.Up {
		c.transform.MoveRelative(mgl32.Vec3{0, speed, 0})
	}

	if in.Look {
		yaw := c.mouseLookSpeed * in.LookDX
		pitch := c.mouseLookSpeed * in.LookDY
		c.transform.Rotate(mgl32.Vec3{pitch, yaw, 0})

		rot := c.transform.PitchYawRoll()
		rot[0] = mgl32.Clamp(rot[0], -maxPitch, maxPitch)
		c.transform.SetRotation(rot)
	}

	c.UpdateViewMatrix()
}

func (c *Camera) UpdateViewMatrix() {
	c.view = LookToLH(c.transform.Position(), c.transform.Forward(), worldUp)
}

// UpdateProjectionMatrix stores aspect and rebuilds the projection. The
// owner must call it whenever the viewport aspect ratio changes.
func (c *Camera) UpdateProjectionMatrix(aspect float32) {
	c.aspectRatio = aspect
	c.projection = PerspectiveLH(c.fieldOfView, c.aspectRatio, c.nearClip, c.farClip)
}
