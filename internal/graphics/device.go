package graphics

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/graphics/gpu"
)

// Shadow rasterizer bias, in depth buffer units and slope scale.
const (
	shadowBiasUnits = 1000
	shadowBiasSlope = 1
)

var ErrIncompleteTarget = errors.New("graphics: framebuffer incomplete")

// Swapper presents the default framebuffer. *glfw.Window implements it.
type Swapper interface {
	SwapBuffers()
}

// Target is an offscreen render target, or one of the window surfaces when
// window is set.
type Target struct {
	label  string
	tex    Texture
	format gpu.Format
	window bool
}

func (t *Target) Size() (int, int)         { return t.tex.Size() }
func (t *Target) Format() gpu.Format       { return t.format }
func (t *Target) handle() (uint32, uint32) { return t.tex.handle() }
func (t *Target) String() string           { return t.label }

// glTexture is implemented by every texture this backend creates.
type glTexture interface {
	handle() (target, id uint32)
}

type fboKey struct{ color, depth uint32 }

// Device is the OpenGL implementation of gpu.Device. It must be used from
// the thread that owns the GL context.
type Device struct {
	swapper   Swapper
	back      *Target
	backDepth *Target

	fbos     map[fboKey]uint32
	samplers map[gpu.Sampler]uint32
	bound    map[int]uint32 // slot -> texture target
	emptyVAO uint32
}

// NewDevice sets up global GL state for a window whose framebuffer is
// width x height. gl.Init must already have run.
func NewDevice(swapper Swapper, width, height int) *Device {
	d := &Device{
		swapper:   swapper,
		back:      &Target{label: "backbuffer", format: gpu.FormatRGBA8, window: true},
		backDepth: &Target{label: "backbuffer.depth", format: gpu.FormatDepth24, window: true},
		fbos:      make(map[fboKey]uint32),
		samplers:  make(map[gpu.Sampler]uint32),
		bound:     make(map[int]uint32),
	}
	d.SetWindowSize(width, height)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	// left-handed meshes wind clockwise
	gl.FrontFace(gl.CW)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	gl.GenVertexArrays(1, &d.emptyVAO)
	return d
}

// SetWindowSize records the default framebuffer size after a resize.
func (d *Device) SetWindowSize(width, height int) {
	d.back.tex.width, d.back.tex.height = width, height
	d.backDepth.tex.width, d.backDepth.tex.height = width, height
}

func (d *Device) Backbuffer() gpu.Target      { return d.back }
func (d *Device) BackbufferDepth() gpu.Target { return d.backDepth }

func (d *Device) NewTarget(desc gpu.TargetDesc) (gpu.Target, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("graphics: target %s has size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	t := &Target{
		label:  desc.Label,
		format: desc.Format,
		tex:    Texture{target: gl.TEXTURE_2D, width: desc.Width, height: desc.Height},
	}

	internal, format, xtype := uint32(gl.RGBA8), uint32(gl.RGBA), uint32(gl.UNSIGNED_BYTE)
	if desc.Format.IsDepth() {
		internal, format, xtype = gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT
	}

	gl.GenTextures(1, &t.tex.id)
	gl.BindTexture(gl.TEXTURE_2D, t.tex.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(internal), int32(desc.Width), int32(desc.Height), 0, format, xtype, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	if desc.Format == gpu.FormatShadowDepth {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		t.tex.Delete()
		return nil, fmt.Errorf("graphics: create target %s: gl error 0x%x", desc.Label, code)
	}
	return t, nil
}

// Destroy deletes t and every framebuffer it is attached to.
func (d *Device) Destroy(t gpu.Target) {
	gt, ok := t.(*Target)
	if !ok || gt.window {
		return
	}
	id := gt.tex.id
	for k, fbo := range d.fbos {
		if k.color == id || k.depth == id {
			gl.DeleteFramebuffers(1, &fbo)
			delete(d.fbos, k)
		}
	}
	gt.tex.Delete()
}

func textureID(t gpu.Target) (id uint32, window bool) {
	gt, ok := t.(*Target)
	if !ok || gt == nil {
		return 0, false
	}
	return gt.tex.id, gt.window
}

// BindOutputs binds the framebuffer with color and depth attached. Window
// surfaces always map to the default framebuffer.
func (d *Device) BindOutputs(color, depth gpu.Target) {
	c, cWin := textureID(color)
	z, zWin := textureID(depth)
	if cWin || zWin {
		if (color != nil && !cWin) || (depth != nil && !zWin) {
			log.Printf("graphics: cannot mix window and offscreen targets (%v, %v)", color, depth)
		}
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		return
	}

	fbo, err := d.framebuffer(fboKey{color: c, depth: z})
	if err != nil {
		log.Printf("graphics: bind outputs (%v, %v): %v", color, depth, err)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
}

func (d *Device) framebuffer(k fboKey) (uint32, error) {
	if fbo, ok := d.fbos[k]; ok {
		return fbo, nil
	}
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	if k.color != 0 {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, k.color, 0)
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}
	if k.depth != 0 {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, k.depth, 0)
	}
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.DeleteFramebuffers(1, &fbo)
		return 0, fmt.Errorf("%w: status 0x%x", ErrIncompleteTarget, status)
	}
	d.fbos[k] = fbo
	return fbo, nil
}

// ClearColor clears the color attachment of the bound framebuffer, which
// must hold t.
func (d *Device) ClearColor(t gpu.Target, c mgl32.Vec4) {
	if t == nil {
		return
	}
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// ClearDepth clears the depth attachment of the bound framebuffer, which
// must hold t.
func (d *Device) ClearDepth(t gpu.Target, depth float32) {
	if t == nil {
		return
	}
	gl.DepthMask(true)
	gl.ClearDepth(float64(depth))
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) SetRaster(s gpu.RasterState) {
	switch s {
	case gpu.RasterDepthBiased:
		gl.CullFace(gl.BACK)
		gl.Enable(gl.POLYGON_OFFSET_FILL)
		gl.PolygonOffset(shadowBiasSlope, shadowBiasUnits)
	case gpu.RasterCullFront:
		gl.CullFace(gl.FRONT)
		gl.Disable(gl.POLYGON_OFFSET_FILL)
	default:
		gl.CullFace(gl.BACK)
		gl.Disable(gl.POLYGON_OFFSET_FILL)
	}
}

func (d *Device) SetDepthFunc(f gpu.DepthFunc) {
	if f == gpu.DepthLessEqual {
		gl.DepthFunc(gl.LEQUAL)
		return
	}
	gl.DepthFunc(gl.LESS)
}

func (d *Device) BindInput(slot int, tex gpu.Texture, s gpu.Sampler) {
	gt, ok := tex.(glTexture)
	if !ok {
		log.Printf("graphics: %T is not a GL texture", tex)
		return
	}
	target, id := gt.handle()
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	if prev, ok := d.bound[slot]; ok && prev != target {
		gl.BindTexture(prev, 0)
	}
	gl.BindTexture(target, id)
	gl.BindSampler(uint32(slot), d.sampler(s))
	d.bound[slot] = target
}

func (d *Device) UnbindInput(slot int) {
	target, ok := d.bound[slot]
	if !ok {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(slot))
	gl.BindTexture(target, 0)
	gl.BindSampler(uint32(slot), 0)
	delete(d.bound, slot)
}

func (d *Device) sampler(s gpu.Sampler) uint32 {
	if id, ok := d.samplers[s]; ok {
		return id
	}
	var id uint32
	gl.GenSamplers(1, &id)
	switch s {
	case gpu.SamplerLinearWrap:
		gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		setWrap(id, gl.REPEAT)
	case gpu.SamplerLinearClamp:
		gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		setWrap(id, gl.CLAMP_TO_EDGE)
	case gpu.SamplerShadowCompare:
		gl.SamplerParameteri(id, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.SamplerParameteri(id, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		setWrap(id, gl.CLAMP_TO_BORDER)
		// outside the shadow map counts as lit
		border := [4]float32{1, 1, 1, 1}
		gl.SamplerParameterfv(id, gl.TEXTURE_BORDER_COLOR, &border[0])
		gl.SamplerParameteri(id, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.SamplerParameteri(id, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	}
	d.samplers[s] = id
	return id
}

func setWrap(id uint32, mode int32) {
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_S, mode)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_T, mode)
	gl.SamplerParameteri(id, gl.TEXTURE_WRAP_R, mode)
}

// DrawFullscreen draws a single triangle whose corners the vertex shader
// derives from gl_VertexID, with depth testing and culling off.
func (d *Device) DrawFullscreen() {
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BindVertexArray(d.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.DEPTH_TEST)
}

// Present swaps the window buffers and reports any GL error raised during
// the frame.
func (d *Device) Present() error {
	d.swapper.SwapBuffers()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("graphics: gl error 0x%x", code)
	}
	return nil
}

// Release frees framebuffers, samplers and the fullscreen VAO.
func (d *Device) Release() {
	for k, fbo := range d.fbos {
		gl.DeleteFramebuffers(1, &fbo)
		delete(d.fbos, k)
	}
	for s, id := range d.samplers {
		gl.DeleteSamplers(1, &id)
		delete(d.samplers, s)
	}
	gl.DeleteVertexArrays(1, &d.emptyVAO)
}
