// Package gpu declares the device-side collaborators the frame renderer
// drives. The OpenGL backend in package graphics implements them; tests use
// recording fakes.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// Mesh is geometry ready to draw. Draw binds its own buffers.
type Mesh interface {
	Draw()
}

// Program is a linked shader program. Setters apply to the program last
// passed to Use. Unknown names are ignored.
type Program interface {
	Use()
	SetMatrix4(name string, m mgl32.Mat4)
	SetVec3(name string, v mgl32.Vec3)
	SetVec4(name string, v mgl32.Vec4)
	SetFloat(name string, v float32)
	SetInt(name string, v int32)
	// SetData uploads raw bytes to the uniform block called name.
	SetData(name string, data []byte)
}

// Texture is anything that can be sampled by a shader.
type Texture interface {
	Size() (width, height int)
}

type Format int

const (
	FormatRGBA8 Format = iota
	FormatDepth24
	// FormatShadowDepth is a depth texture set up for comparison sampling.
	FormatShadowDepth
)

func (f Format) IsDepth() bool {
	return f == FormatDepth24 || f == FormatShadowDepth
}

type TargetDesc struct {
	Label  string
	Width  int
	Height int
	Format Format
}

// Target is a texture the device can render into.
type Target interface {
	Texture
	Format() Format
}

type RasterState int

const (
	RasterDefault RasterState = iota
	// RasterDepthBiased adds slope-scaled depth bias for shadow rendering.
	RasterDepthBiased
	// RasterCullFront culls front faces, used to see the sky from inside.
	RasterCullFront
)

type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

type Sampler int

const (
	SamplerLinearWrap Sampler = iota
	SamplerLinearClamp
	SamplerShadowCompare
)

// Device owns render targets and global pipeline state.
type Device interface {
	NewTarget(desc TargetDesc) (Target, error)
	Destroy(t Target)

	// Backbuffer and BackbufferDepth are the window's own surfaces. They
	// cannot be sampled or destroyed.
	Backbuffer() Target
	BackbufferDepth() Target

	// BindOutputs makes color and depth the current render targets. Either
	// may be nil.
	BindOutputs(color, depth Target)
	ClearColor(t Target, c mgl32.Vec4)
	ClearDepth(t Target, depth float32)
	Viewport(x, y, width, height int)
	SetRaster(s RasterState)
	SetDepthFunc(f DepthFunc)

	BindInput(slot int, tex Texture, s Sampler)
	UnbindInput(slot int)

	// DrawFullscreen draws one triangle covering the viewport.
	DrawFullscreen()
	Present() error
}
