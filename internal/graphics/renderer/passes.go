package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/graphics/gpu"
)

// FrameContext carries per-frame state between passes. All binding goes
// through it so conflicting bindings are caught.
type FrameContext struct {
	Frame *Frame

	dev      gpu.Device
	bind     *bindings
	settings Settings
	programs Programs
	targets  func(Resource) gpu.Target

	mainColor  Resource
	mainDepth  Resource
	mainWidth  int
	mainHeight int
	winWidth   int
	winHeight  int

	lightView       mgl32.Mat4
	lightProjection mgl32.Mat4
	lightData       []byte
	lightCount      int32
}

func (c *FrameContext) Device() gpu.Device { return c.dev }

// Target returns the render target currently backing r, or nil.
func (c *FrameContext) Target(r Resource) gpu.Target { return c.targets(r) }

func (c *FrameContext) BindOutputs(color, depth gpu.Target) error {
	return c.bind.bindOutputs(color, depth)
}

func (c *FrameContext) BindInput(slot int, tex gpu.Texture, s gpu.Sampler) error {
	return c.bind.bindInput(slot, tex, s)
}

// RestoreMain rebinds the main color and depth outputs with their viewport
// and default raster state.
func (c *FrameContext) RestoreMain() error {
	if err := c.bind.bindOutputs(c.Target(c.mainColor), c.Target(c.mainDepth)); err != nil {
		return err
	}
	c.dev.Viewport(0, 0, c.mainWidth, c.mainHeight)
	c.dev.SetRaster(gpu.RasterDefault)
	return nil
}

type clearPass struct {
	color, depth Resource
}

func (p clearPass) Name() string       { return "clear" }
func (p clearPass) Reads() []Resource  { return nil }
func (p clearPass) Writes() []Resource { return []Resource{p.color, p.depth} }

func (p clearPass) Execute(ctx *FrameContext) error {
	if err := ctx.RestoreMain(); err != nil {
		return err
	}
	ctx.dev.ClearColor(ctx.Target(p.color), ctx.settings.Background)
	ctx.dev.ClearDepth(ctx.Target(p.depth), 1)
	return nil
}

type shadowPass struct{}

func (shadowPass) Name() string       { return "shadow" }
func (shadowPass) Reads() []Resource  { return nil }
func (shadowPass) Writes() []Resource { return []Resource{ShadowDepth} }

func (shadowPass) Execute(ctx *FrameContext) error {
	sm := ctx.Target(ShadowDepth)
	if err := ctx.BindOutputs(nil, sm); err != nil {
		return err
	}
	ctx.dev.ClearDepth(sm, 1)
	ctx.dev.SetRaster(gpu.RasterDepthBiased)
	w, h := sm.Size()
	ctx.dev.Viewport(0, 0, w, h)

	prog := ctx.programs.Shadow
	prog.Use()
	prog.SetMatrix4("lightView", ctx.lightView)
	prog.SetMatrix4("lightProjection", ctx.lightProjection)

	err := func() error {
		for _, e := range ctx.Frame.Entities {
			mesh, _, err := ctx.Frame.Assets.Resolve(e.Mesh(), e.Material())
			if err != nil {
				return err
			}
			prog.SetMatrix4("world", e.Transform().WorldMatrix())
			mesh.Draw()
		}
		return nil
	}()

	if rerr := ctx.RestoreMain(); err == nil {
		err = rerr
	}
	return err
}

type colorPass struct {
	shadows      bool
	color, depth Resource
}

func (p colorPass) Name() string { return "color" }

func (p colorPass) Reads() []Resource {
	if p.shadows {
		return []Resource{ShadowDepth}
	}
	return nil
}

func (p colorPass) Writes() []Resource { return []Resource{p.color, p.depth} }

func (p colorPass) Execute(ctx *FrameContext) error {
	f := ctx.Frame
	view := f.Camera.View()
	projection := f.Camera.Projection()
	eye := f.Camera.Transform().Position()

	var shadowsEnabled int32
	if p.shadows {
		if err := ctx.BindInput(shadowSlot, ctx.Target(ShadowDepth), gpu.SamplerShadowCompare); err != nil {
			return err
		}
		shadowsEnabled = 1
	}

	// material slots bound by the previous entity
	bound := 0
	for _, e := range f.Entities {
		mesh, mat, err := f.Assets.Resolve(e.Mesh(), e.Material())
		if err != nil {
			return err
		}
		prog := mat.Program()
		prog.Use()

		prog.SetVec3("ambientColor", f.Ambient)
		prog.SetData("lights", ctx.lightData)
		prog.SetInt("lightCount", ctx.lightCount)
		prog.SetInt("shadowMap", shadowSlot)
		prog.SetInt("shadowsEnabled", shadowsEnabled)

		prog.SetMatrix4("world", e.Transform().WorldMatrix())
		prog.SetMatrix4("worldInverseTranspose", e.Transform().WorldInverseTransposeMatrix())
		prog.SetMatrix4("view", view)
		prog.SetMatrix4("projection", projection)
		prog.SetMatrix4("lightView", ctx.lightView)
		prog.SetMatrix4("lightProjection", ctx.lightProjection)
		prog.SetVec3("cameraPosition", eye)

		mat.SetUniforms(firstMaterialSlot)
		textures := mat.Textures()
		for i, tb := range textures {
			if err := ctx.BindInput(firstMaterialSlot+i, tb.Texture, tb.Sampler); err != nil {
				return err
			}
		}
		for i := len(textures); i < bound; i++ {
			ctx.bind.unbindInput(firstMaterialSlot + i)
		}
		bound = len(textures)
		mesh.Draw()
	}

	if f.Sky != nil {
		return drawSky(ctx, f.Sky, view, projection)
	}
	return nil
}

func drawSky(ctx *FrameContext, sky *Sky, view, projection mgl32.Mat4) error {
	ctx.dev.SetRaster(gpu.RasterCullFront)
	ctx.dev.SetDepthFunc(gpu.DepthLessEqual)

	sky.Program.Use()
	sky.Program.SetMatrix4("view", view)
	sky.Program.SetMatrix4("projection", projection)
	if err := ctx.BindInput(skySlot, sky.Cubemap, gpu.SamplerLinearClamp); err != nil {
		return err
	}
	sky.Program.SetInt("skybox", skySlot)
	sky.Mesh.Draw()

	ctx.dev.SetRaster(gpu.RasterDefault)
	ctx.dev.SetDepthFunc(gpu.DepthLess)
	return nil
}

type postPass struct{}

func (postPass) Name() string       { return "post" }
func (postPass) Reads() []Resource  { return []Resource{SceneColor} }
func (postPass) Writes() []Resource { return []Resource{Backbuffer} }

func (postPass) Execute(ctx *FrameContext) error {
	if err := ctx.BindOutputs(ctx.Target(Backbuffer), nil); err != nil {
		return err
	}
	ctx.dev.Viewport(0, 0, ctx.winWidth, ctx.winHeight)

	src := ctx.Target(SceneColor)
	if err := ctx.BindInput(postSourceSlot, src, gpu.SamplerLinearClamp); err != nil {
		return err
	}

	// blur offsets are in window pixels, whatever the scene target's scale
	prog := ctx.programs.Blur
	prog.Use()
	prog.SetInt("sceneTexture", postSourceSlot)
	prog.SetInt("blurRadius", ctx.settings.BlurRadius)
	prog.SetFloat("pixelWidth", 1/float32(ctx.winWidth))
	prog.SetFloat("pixelHeight", 1/float32(ctx.winHeight))
	ctx.dev.DrawFullscreen()
	return nil
}

type presentPass struct{}

func (presentPass) Name() string       { return "present" }
func (presentPass) Reads() []Resource  { return []Resource{Backbuffer} }
func (presentPass) Writes() []Resource { return nil }

// Execute presents, then unbinds every input before rebinding the main
// outputs. The scene color target is still bound as the post input at this
// point, so the order matters.
func (presentPass) Execute(ctx *FrameContext) error {
	err := ctx.dev.Present()
	ctx.bind.clearInputs()
	if rerr := ctx.RestoreMain(); err == nil {
		err = rerr
	}
	return err
}
