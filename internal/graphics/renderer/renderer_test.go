package renderer

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-scene/internal/camera"
	"mini-scene/internal/entity"
	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/light"
	"mini-scene/internal/material"
	"mini-scene/internal/registry"
)

type fixture struct {
	dev      *fakeDevice
	r        *Renderer
	frame    *Frame
	cams     []*camera.Camera
	assets   *registry.Registry
	material *material.Material
}

var meshNames = []string{"sphere", "cube", "helix", "cylinder", "torus"}

func newFixture(t *testing.T, s Settings) *fixture {
	t.Helper()
	dev := newFakeDevice(1280, 720)
	assets := registry.New()

	mat := material.New("stone", newFakeProgram(dev, "main"), mgl32.Vec3{0.9, 0.8, 0.7}, 0.5)
	mat.AddTexture("albedoMap", &fakeTexture{"albedo"}, gpu.SamplerLinearWrap)
	matID, err := assets.AddMaterial(mat)
	require.NoError(t, err)

	var entities []*entity.Entity
	for i, n := range meshNames {
		id, err := assets.AddMesh(n, &fakeMesh{name: n, dev: dev})
		require.NoError(t, err)
		e := entity.New(id, matID)
		e.Transform().SetPosition(mgl32.Vec3{float32(-6 + 3*i), 0, 0})
		entities = append(entities, e)
	}

	var lights light.List
	for _, x := range []float32{-6, -3, 0, 3, 6} {
		require.NoError(t, lights.Add(light.NewPoint(mgl32.Vec3{x, 5, -5}, mgl32.Vec3{1, 1, 1}, 1, 10)))
	}
	require.NoError(t, lights.Add(light.NewDirectional(mgl32.Vec3{1, -1, 0}, mgl32.Vec3{1, 0.8, 0.5}, 1)))
	lights.Freeze()

	cams := []*camera.Camera{
		camera.New(mgl32.Vec3{0, 0, -10}, 5, 0.01, math.Pi/4, 1280.0/720.0),
		camera.New(mgl32.Vec3{40, 0, -50}, 5, 0.01, 1.2, 1280.0/720.0),
		camera.New(mgl32.Vec3{0, 10, -30}, 5, 0.01, math.Pi/2, 1280.0/720.0),
	}

	skyID, err := assets.AddMesh("skycube", &fakeMesh{name: "sky", dev: dev})
	require.NoError(t, err)

	r, err := New(dev, Programs{
		Shadow: newFakeProgram(dev, "shadow"),
		Blur:   newFakeProgram(dev, "blur"),
	}, s, 1280, 720)
	require.NoError(t, err)

	return &fixture{
		dev:      dev,
		r:        r,
		cams:     cams,
		assets:   assets,
		material: mat,
		frame: &Frame{
			Camera:   cams[0],
			Entities: entities,
			Assets:   assets,
			Lights:   &lights,
			Ambient:  mgl32.Vec3{0.1, 0.1, 0.15},
			Sky: &Sky{
				Mesh:    assets.Mesh(skyID),
				Program: newFakeProgram(dev, "sky"),
				Cubemap: &fakeTexture{"skybox"},
			},
		},
	}
}

func TestPipelinePasses(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		want   []string
	}{
		{"all", func(*Settings) {}, []string{"clear", "shadow", "color", "post", "present"}},
		{"no shadows", func(s *Settings) { s.Shadows = false }, []string{"clear", "color", "post", "present"}},
		{"no post", func(s *Settings) { s.PostProcess = false }, []string{"clear", "shadow", "color", "present"}},
		{"bare", func(s *Settings) { s.Shadows, s.PostProcess = false, false }, []string{"clear", "color", "present"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			f := newFixture(t, s)
			assert.Equal(t, tt.want, f.r.Pipeline().Names())
			require.NoError(t, f.r.RenderFrame(f.frame))
			assert.Equal(t, 1, f.dev.presents)
		})
	}
}

type stubPass struct {
	name          string
	reads, writes []Resource
}

func (p stubPass) Name() string                { return p.name }
func (p stubPass) Reads() []Resource           { return p.reads }
func (p stubPass) Writes() []Resource          { return p.writes }
func (p stubPass) Execute(*FrameContext) error { return nil }

func TestNewPipelineValidation(t *testing.T) {
	_, err := NewPipeline(
		stubPass{name: "post", reads: []Resource{SceneColor}, writes: []Resource{Backbuffer}},
		stubPass{name: "color", writes: []Resource{SceneColor}},
	)
	assert.ErrorIs(t, err, ErrUnsatisfiedInput)

	_, err = NewPipeline(
		stubPass{name: "color", writes: []Resource{SceneColor}},
		stubPass{name: "feedback", reads: []Resource{SceneColor}, writes: []Resource{SceneColor}},
	)
	assert.ErrorIs(t, err, ErrReadWriteConflict)

	p, err := NewPipeline(
		stubPass{name: "color", writes: []Resource{SceneColor}},
		stubPass{name: "post", reads: []Resource{SceneColor}, writes: []Resource{Backbuffer}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "post"}, p.Names())
}

func TestShadowPassRestoresBeforeColor(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	require.NoError(t, f.r.RenderFrame(f.frame))

	shadow := f.dev.drawsBy("shadow")
	require.Len(t, shadow, len(meshNames))
	for _, d := range shadow {
		assert.Equal(t, "-", d.color)
		assert.Equal(t, "shadow.depth", d.depth)
		assert.Equal(t, [4]int{0, 0, 2048, 2048}, d.viewport)
		assert.Equal(t, gpu.RasterDepthBiased, d.raster)
	}

	main := f.dev.drawsBy("main")
	require.NotEmpty(t, main)
	first := main[0]
	assert.Equal(t, "scene.color", first.color)
	assert.Equal(t, "scene.depth", first.depth)
	assert.Equal(t, [4]int{0, 0, 1280, 720}, first.viewport)
	assert.Equal(t, gpu.RasterDefault, first.raster)
}

func TestEntitiesDrawnInListOrder(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	require.NoError(t, f.r.RenderFrame(f.frame))

	var got []string
	for _, d := range f.dev.drawsBy("main") {
		got = append(got, d.mesh)
	}
	assert.Equal(t, meshNames, got)
}

func TestColorPassUniforms(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	e := f.frame.Entities[1]
	e.Transform().SetScale(mgl32.Vec3{2, 2, 2})
	require.NoError(t, f.r.RenderFrame(f.frame))

	d := f.dev.drawsBy("main")[1]
	u := d.uniforms
	assert.Equal(t, e.Transform().WorldMatrix(), u["world"])
	assert.Equal(t, e.Transform().WorldInverseTransposeMatrix(), u["worldInverseTranspose"])
	assert.Equal(t, f.cams[0].View(), u["view"])
	assert.Equal(t, f.cams[0].Projection(), u["projection"])
	assert.Equal(t, mgl32.Vec3{0, 0, -10}, u["cameraPosition"])
	assert.Equal(t, mgl32.Vec3{0.1, 0.1, 0.15}, u["ambientColor"])
	assert.Equal(t, int32(6), u["lightCount"])
	assert.Equal(t, f.frame.Lights.Marshal(), u["lights"])
	assert.Equal(t, int32(shadowSlot), u["shadowMap"])
	assert.Equal(t, int32(1), u["shadowsEnabled"])
	assert.Equal(t, mgl32.Vec3{0.9, 0.8, 0.7}, u["colorTint"])
	assert.Equal(t, float32(0.5), u["roughness"])
	assert.Equal(t, int32(firstMaterialSlot), u["albedoMap"])

	view, proj := DefaultSettings().Shadow.Matrices(f.frame.Lights)
	assert.Equal(t, view, u["lightView"])
	assert.Equal(t, proj, u["lightProjection"])
}

func TestSkyDrawnLastThenStatesReset(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	require.NoError(t, f.r.RenderFrame(f.frame))

	sky := f.dev.drawsBy("sky")
	require.Len(t, sky, 1)
	assert.Equal(t, gpu.RasterCullFront, sky[0].raster)
	assert.Equal(t, gpu.DepthLessEqual, sky[0].depthFunc)
	assert.Equal(t, "scene.color", sky[0].color)

	drawSky := f.dev.indexOf("draw sky")
	lastMain := f.dev.indexOf("draw torus")
	require.Greater(t, drawSky, lastMain)
	assert.Equal(t, "raster 0", f.dev.events[drawSky+1])
	assert.Equal(t, "depth func 0", f.dev.events[drawSky+2])
}

func TestPostProcessPass(t *testing.T) {
	s := DefaultSettings()
	s.BlurRadius = 3
	f := newFixture(t, s)
	require.NoError(t, f.r.RenderFrame(f.frame))

	post := f.dev.drawsBy("blur")
	require.Len(t, post, 1)
	d := post[0]
	assert.Equal(t, "fullscreen", d.mesh)
	assert.Equal(t, "backbuffer", d.color)
	assert.Equal(t, [4]int{0, 0, 1280, 720}, d.viewport)
	assert.Equal(t, int32(3), d.uniforms["blurRadius"])
	assert.Equal(t, int32(postSourceSlot), d.uniforms["sceneTexture"])
	assert.InDelta(t, 1.0/1280, d.uniforms["pixelWidth"], 1e-9)
	assert.InDelta(t, 1.0/720, d.uniforms["pixelHeight"], 1e-9)

	in := f.dev.indexOf("input 0 scene.color")
	assert.True(t, in >= 0 && in < f.dev.indexOf("draw fullscreen"))
}

func TestPresentClearsInputsBeforeRebinding(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	require.NoError(t, f.r.RenderFrame(f.frame))

	present := f.dev.indexOf("present")
	require.GreaterOrEqual(t, present, 0)
	tail := f.dev.events[present+1:]
	assert.Equal(t, []string{"unbind 0", "unbind 1", "outputs scene.color scene.depth"}, tail[:3])
	assert.Empty(t, f.dev.inputs)

	// the next frame starts from a clean binding state
	require.NoError(t, f.r.RenderFrame(f.frame))
	assert.Equal(t, 2, f.dev.presents)
	assert.Equal(t, uint64(2), f.r.FrameCount())
}

func TestResizeRecreatesTargets(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	require.NoError(t, f.r.RenderFrame(f.frame))

	oldColor := f.r.Target(SceneColor).(*fakeTarget)
	oldDepth := f.r.Target(SceneDepth).(*fakeTarget)
	oldShadow := f.r.Target(ShadowDepth).(*fakeTarget)
	// stale aspect, as left behind by a camera created for another window
	for _, c := range f.cams {
		c.UpdateProjectionMatrix(1)
	}

	require.NoError(t, f.r.Resize(1920, 1080, f.cams...))

	for _, c := range f.cams {
		assert.InDelta(t, 1920.0/1080.0, c.AspectRatio(), 1e-6)
		want := camera.PerspectiveLH(c.FieldOfView(), float32(1920)/float32(1080), c.NearClip(), c.FarClip())
		assert.Equal(t, want, c.Projection())
	}

	assert.True(t, oldColor.destroyed)
	assert.True(t, oldDepth.destroyed)
	assert.False(t, oldShadow.destroyed, "shadow map does not depend on window size")

	for _, res := range []Resource{SceneColor, SceneDepth} {
		w, h := f.r.Target(res).Size()
		assert.Equal(t, [2]int{1920, 1080}, [2]int{w, h}, "%s", res)
	}
	assert.Same(t, oldShadow, f.r.Target(ShadowDepth))

	require.NoError(t, f.r.RenderFrame(f.frame))
	main := f.dev.drawsBy("main")
	assert.Equal(t, [4]int{0, 0, 1920, 1080}, main[len(main)-1].viewport)
}

func TestResizeChangesAspectTerm(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	before := make([]float32, len(f.cams))
	for i, c := range f.cams {
		before[i] = c.Projection().At(0, 0)
	}

	require.NoError(t, f.r.Resize(1000, 1000, f.cams...))

	for i, c := range f.cams {
		got := c.Projection().At(0, 0)
		assert.NotEqual(t, before[i], got, "camera %d", i)
		assert.InDelta(t, c.Projection().At(1, 1), got, 1e-6, "square window: x and y scale match")
	}
}

func TestResizeIgnoresZero(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	before := f.cams[0].Projection()
	events := len(f.dev.events)

	require.NoError(t, f.r.Resize(0, 0, f.cams...))
	assert.Equal(t, before, f.cams[0].Projection())
	assert.Len(t, f.dev.events, events)
	w, h := f.r.Size()
	assert.Equal(t, 1280, w)
	assert.Equal(t, 720, h)
}

func TestPostScale(t *testing.T) {
	s := DefaultSettings()
	s.PostScale = 0.5
	f := newFixture(t, s)
	require.NoError(t, f.r.RenderFrame(f.frame))

	w, h := f.r.Target(SceneColor).Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 360, h)
	d := f.dev.drawsBy("blur")[0]
	assert.InDelta(t, 1.0/1280, d.uniforms["pixelWidth"], 1e-9, "texel size follows the window")
	assert.InDelta(t, 1.0/720, d.uniforms["pixelHeight"], 1e-9)
	assert.Equal(t, [4]int{0, 0, 1280, 720}, d.viewport)
	assert.Equal(t, [4]int{0, 0, 640, 360}, f.dev.drawsBy("main")[0].viewport)
}

func TestApplyRebuilds(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	color := f.r.Target(SceneColor).(*fakeTarget)

	s := DefaultSettings()
	s.PostProcess = false
	require.NoError(t, f.r.Apply(s))

	assert.True(t, color.destroyed)
	assert.Nil(t, f.r.Target(SceneColor))
	assert.Equal(t, []string{"clear", "shadow", "color", "present"}, f.r.Pipeline().Names())

	require.NoError(t, f.r.RenderFrame(f.frame))
	assert.Equal(t, "backbuffer", f.dev.drawsBy("main")[0].color)
	assert.Equal(t, "backbuffer.depth", f.dev.drawsBy("main")[0].depth)
}

func TestApplyKeepsTargetsForPerFrameSettings(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	created := len(f.dev.created)
	pipeline := f.r.Pipeline()
	color := f.r.Target(SceneColor).(*fakeTarget)

	s := DefaultSettings()
	s.BlurRadius = 7
	s.Background = mgl32.Vec4{1, 0, 0, 1}
	s.Shadow.Distance *= 2
	require.NoError(t, f.r.Apply(s))

	assert.Len(t, f.dev.created, created)
	assert.False(t, color.destroyed)
	assert.Same(t, pipeline, f.r.Pipeline())

	require.NoError(t, f.r.RenderFrame(f.frame))
	assert.Equal(t, int32(7), f.dev.drawsBy("blur")[0].uniforms["blurRadius"])

	s.ShadowMapSize = 512
	require.NoError(t, f.r.Apply(s))
	assert.Len(t, f.dev.created, created+3)
	w, h := f.r.Target(ShadowDepth).Size()
	assert.Equal(t, [2]int{512, 512}, [2]int{w, h})
}

func TestColorPassUnbindsStaleMaterialSlots(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	for _, name := range []string{"roughnessMap", "metalnessMap", "normalMap"} {
		f.material.AddTexture(name, &fakeTexture{name}, gpu.SamplerLinearWrap)
	}
	plain := material.New("plain", f.material.Program(), mgl32.Vec3{1, 1, 1}, 0.5)
	plain.AddTexture("albedoMap", &fakeTexture{"plain.albedo"}, gpu.SamplerLinearWrap)
	plain.AddTexture("roughnessMap", &fakeTexture{"plain.roughness"}, gpu.SamplerLinearWrap)
	plainID, err := f.assets.AddMaterial(plain)
	require.NoError(t, err)

	last := f.frame.Entities[len(f.frame.Entities)-1]
	f.frame.Entities = append(f.frame.Entities, entity.New(last.Mesh(), plainID))
	f.frame.Sky = nil
	require.NoError(t, f.r.RenderFrame(f.frame))

	// the final entity draws twice: with the four-map material, then the plain one
	var draws []int
	for i, e := range f.dev.events {
		if e == "draw torus" {
			draws = append(draws, i)
		}
	}
	require.Len(t, draws, 2)
	between := f.dev.events[draws[0]:draws[1]]
	assert.Contains(t, between, "unbind 3")
	assert.Contains(t, between, "unbind 4")
	assert.NotContains(t, between, "unbind 2")
	assert.Contains(t, between, "input 2 plain.roughness")
}

func TestTargetCreationFailure(t *testing.T) {
	dev := newFakeDevice(800, 600)
	dev.failTarget = string(SceneColor)

	_, err := New(dev, Programs{}, DefaultSettings(), 800, 600)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scene.color")
	for _, c := range dev.created {
		assert.True(t, c.destroyed, "%s leaked", c.label)
	}
}

func TestBindingTracker(t *testing.T) {
	dev := newFakeDevice(10, 10)
	b := newBindings(dev)
	target := &fakeTarget{label: "scene.color"}
	depth := &fakeTarget{label: "scene.depth"}

	require.NoError(t, b.bindOutputs(target, depth))
	assert.ErrorIs(t, b.bindInput(0, target, gpu.SamplerLinearClamp), ErrBindingConflict)
	assert.ErrorIs(t, b.bindInput(3, depth, gpu.SamplerLinearClamp), ErrBindingConflict)

	require.NoError(t, b.bindOutputs(dev.back, nil))
	require.NoError(t, b.bindInput(0, target, gpu.SamplerLinearClamp))
	assert.ErrorIs(t, b.bindOutputs(target, nil), ErrBindingConflict)

	b.clearInputs()
	assert.NoError(t, b.bindOutputs(target, depth))
}

func TestMaterialSamplingOutputFails(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	f.material.AddTexture("albedoMap", f.r.Target(SceneColor), gpu.SamplerLinearWrap)

	err := f.r.RenderFrame(f.frame)
	assert.ErrorIs(t, err, ErrBindingConflict)
	assert.Contains(t, err.Error(), "color pass")
}

func TestUnknownMeshHandle(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	f.frame.Entities = append(f.frame.Entities, entity.New(99, 1))

	err := f.r.RenderFrame(f.frame)
	assert.ErrorIs(t, err, registry.ErrUnknownHandle)
	assert.Contains(t, err.Error(), "shadow pass")
}

func TestFrameWithoutCamera(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	f.frame.Camera = nil
	assert.ErrorIs(t, f.r.RenderFrame(f.frame), ErrNoCamera)
}

func TestFrameWithoutLightsOrSky(t *testing.T) {
	f := newFixture(t, DefaultSettings())
	f.frame.Lights = nil
	f.frame.Sky = nil
	require.NoError(t, f.r.RenderFrame(f.frame))

	assert.Empty(t, f.dev.drawsBy("sky"))
	assert.Equal(t, int32(0), f.dev.drawsBy("main")[0].uniforms["lightCount"])
}
