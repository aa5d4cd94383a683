package renderer

import (
	"errors"
	"fmt"
	"log"

	"mini-scene/internal/camera"
	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/light"
	"mini-scene/internal/profiling"
)

var ErrNoCamera = errors.New("renderer: frame has no camera")

// Renderer runs the frame pipeline against a device and owns the
// intermediate render targets.
type Renderer struct {
	dev      gpu.Device
	bind     *bindings
	programs Programs
	settings Settings

	width  int
	height int

	owned    map[Resource]gpu.Target
	pipeline *Pipeline
	frames   uint64
}

// New builds the targets and pipeline for settings at the given window
// size.
func New(dev gpu.Device, programs Programs, settings Settings, width, height int) (*Renderer, error) {
	r := &Renderer{
		dev:      dev,
		bind:     newBindings(dev),
		programs: programs,
		settings: settings,
		width:    width,
		height:   height,
		owned:    make(map[Resource]gpu.Target),
	}
	if err := r.rebuild(); err != nil {
		r.Dispose()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Settings() Settings             { return r.settings }
func (r *Renderer) Pipeline() *Pipeline            { return r.pipeline }
func (r *Renderer) Size() (int, int)               { return r.width, r.height }
func (r *Renderer) FrameCount() uint64             { return r.frames }
func (r *Renderer) Target(res Resource) gpu.Target { return r.target(res) }

// RenderFrame draws and presents one frame.
func (r *Renderer) RenderFrame(f *Frame) error {
	if f.Camera == nil {
		return ErrNoCamera
	}
	lights := f.Lights
	if lights == nil {
		lights = &light.List{}
	}

	ctx := r.newContext(f)
	ctx.lightView, ctx.lightProjection = r.settings.Shadow.Matrices(lights)
	ctx.lightData = lights.Marshal()
	ctx.lightCount = int32(lights.Len())

	for _, p := range r.pipeline.passes {
		stop := profiling.Track("renderer." + p.Name())
		err := p.Execute(ctx)
		stop()
		if err != nil {
			return fmt.Errorf("renderer: %s pass: %w", p.Name(), err)
		}
	}
	r.frames++
	return nil
}

// Resize updates every camera's projection to the new aspect ratio and
// recreates the size-dependent targets. A zero size, as reported for a
// minimized window, is ignored.
func (r *Renderer) Resize(width, height int, cams ...*camera.Camera) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	aspect := float32(width) / float32(height)
	for _, c := range cams {
		c.UpdateProjectionMatrix(aspect)
	}
	if width == r.width && height == r.height {
		return nil
	}
	r.width, r.height = width, height

	if !r.settings.PostProcess {
		return r.restoreMain()
	}
	r.destroy(SceneColor, SceneDepth)
	if err := r.createSceneTargets(); err != nil {
		return err
	}
	return r.restoreMain()
}

// Apply switches to new settings. Targets and the pipeline are rebuilt only
// when a setting they are built from changes. The rest is read per frame.
func (r *Renderer) Apply(s Settings) error {
	old := r.settings
	r.settings = s
	if s.Shadows == old.Shadows && s.ShadowMapSize == old.ShadowMapSize &&
		s.PostProcess == old.PostProcess && s.PostScale == old.PostScale {
		return nil
	}
	return r.rebuild()
}

// Dispose destroys every target the renderer created.
func (r *Renderer) Dispose() {
	r.bind.clearInputs()
	for res := range r.owned {
		r.destroy(res)
	}
}

func (r *Renderer) rebuild() error {
	r.bind.clearInputs()
	for res := range r.owned {
		r.destroy(res)
	}

	if r.settings.Shadows {
		size := r.settings.ShadowMapSize
		t, err := r.dev.NewTarget(gpu.TargetDesc{
			Label:  string(ShadowDepth),
			Width:  size,
			Height: size,
			Format: gpu.FormatShadowDepth,
		})
		if err != nil {
			return fmt.Errorf("renderer: create %s target: %w", ShadowDepth, err)
		}
		r.owned[ShadowDepth] = t
	}
	if r.settings.PostProcess {
		if err := r.createSceneTargets(); err != nil {
			return err
		}
	}

	p, err := NewPipeline(r.passes()...)
	if err != nil {
		return err
	}
	r.pipeline = p
	log.Printf("renderer: pipeline %v at %dx%d", p.Names(), r.width, r.height)
	return r.restoreMain()
}

func (r *Renderer) passes() []Pass {
	color, depth := r.mainResources()
	ps := []Pass{clearPass{color: color, depth: depth}}
	if r.settings.Shadows {
		ps = append(ps, shadowPass{})
	}
	ps = append(ps, colorPass{shadows: r.settings.Shadows, color: color, depth: depth})
	if r.settings.PostProcess {
		ps = append(ps, postPass{})
	}
	return append(ps, presentPass{})
}

func (r *Renderer) mainResources() (color, depth Resource) {
	if r.settings.PostProcess {
		return SceneColor, SceneDepth
	}
	return Backbuffer, BackbufferDepth
}

func (r *Renderer) sceneSize() (int, int) {
	scale := r.settings.PostScale
	if scale <= 0 {
		scale = 1
	}
	w := max(1, int(float32(r.width)*scale))
	h := max(1, int(float32(r.height)*scale))
	return w, h
}

func (r *Renderer) createSceneTargets() error {
	w, h := r.sceneSize()
	for _, d := range []struct {
		res    Resource
		format gpu.Format
	}{
		{SceneColor, gpu.FormatRGBA8},
		{SceneDepth, gpu.FormatDepth24},
	} {
		t, err := r.dev.NewTarget(gpu.TargetDesc{Label: string(d.res), Width: w, Height: h, Format: d.format})
		if err != nil {
			return fmt.Errorf("renderer: create %s target: %w", d.res, err)
		}
		r.owned[d.res] = t
	}
	return nil
}

func (r *Renderer) destroy(res ...Resource) {
	for _, name := range res {
		t, ok := r.owned[name]
		if !ok {
			continue
		}
		r.bind.forget(t)
		r.dev.Destroy(t)
		delete(r.owned, name)
	}
}

func (r *Renderer) target(res Resource) gpu.Target {
	switch res {
	case Backbuffer:
		return r.dev.Backbuffer()
	case BackbufferDepth:
		return r.dev.BackbufferDepth()
	}
	return r.owned[res]
}

func (r *Renderer) mainSize() (int, int) {
	if r.settings.PostProcess {
		return r.sceneSize()
	}
	return r.width, r.height
}

func (r *Renderer) newContext(f *Frame) *FrameContext {
	color, depth := r.mainResources()
	mw, mh := r.mainSize()
	return &FrameContext{
		Frame:      f,
		dev:        r.dev,
		bind:       r.bind,
		settings:   r.settings,
		programs:   r.programs,
		targets:    r.target,
		mainColor:  color,
		mainDepth:  depth,
		mainWidth:  mw,
		mainHeight: mh,
		winWidth:   r.width,
		winHeight:  r.height,
	}
}

func (r *Renderer) restoreMain() error {
	return r.newContext(nil).RestoreMain()
}
