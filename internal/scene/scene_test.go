package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-scene/internal/camera"
	"mini-scene/internal/config"
	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/light"
	"mini-scene/internal/material"
)

type nopMesh struct{ name string }

func (nopMesh) Draw() {}

type nopProgram struct{}

func (nopProgram) Use()                          {}
func (nopProgram) SetMatrix4(string, mgl32.Mat4) {}
func (nopProgram) SetVec3(string, mgl32.Vec3)    {}
func (nopProgram) SetVec4(string, mgl32.Vec4)    {}
func (nopProgram) SetFloat(string, float32)      {}
func (nopProgram) SetInt(string, int32)          {}
func (nopProgram) SetData(string, []byte)        {}

type recordingResizer struct {
	width, height int
	cams          []*camera.Camera
}

func (r *recordingResizer) Resize(w, h int, cams ...*camera.Camera) error {
	r.width, r.height, r.cams = w, h, cams
	return nil
}

func demoAssets() DemoAssets {
	a := DemoAssets{Meshes: map[string]gpu.Mesh{FloorMesh: &nopMesh{FloorMesh}}}
	for _, name := range DemoMeshes {
		a.Meshes[name] = &nopMesh{name}
		a.Materials = append(a.Materials, material.New(name, nopProgram{}, mgl32.Vec3{1, 1, 1}, 0.95))
	}
	a.Floor = material.New("floor", nopProgram{}, mgl32.Vec3{1, 1, 1}, 0.95)
	return a
}

func newDemo(t *testing.T) *Scene {
	t.Helper()
	s, err := NewDemo(demoAssets(), config.Default().Camera, 16.0/9.0)
	require.NoError(t, err)
	return s
}

func TestDemoLayout(t *testing.T) {
	s := newDemo(t)

	cams := s.Cameras()
	require.Len(t, cams, 3)
	assert.Same(t, cams[0], s.ActiveCamera())
	assert.Equal(t, mgl32.Vec3{0, 0, -10}, cams[0].Transform().Position())
	assert.Equal(t, mgl32.Vec3{40, 0, -50}, cams[1].Transform().Position())
	assert.Equal(t, mgl32.Vec3{0, 10, -30}, cams[2].Transform().Position())
	assert.InDelta(t, math32.Pi/4, cams[0].FieldOfView(), 1e-6)
	assert.InDelta(t, 1.2, cams[1].FieldOfView(), 1e-6)
	assert.InDelta(t, math32.Pi/2, cams[2].FieldOfView(), 1e-6)

	require.Len(t, s.Animated(), len(DemoMeshes))
	for i, e := range s.Animated() {
		mesh, mat, err := s.Assets.Resolve(e.Mesh(), e.Material())
		require.NoError(t, err)
		assert.Equal(t, DemoMeshes[i], mesh.(*nopMesh).name)
		assert.Equal(t, DemoMeshes[i], mat.Name())
		assert.Equal(t, float32((i-2)*3), e.Transform().Position().X())
	}
	require.Len(t, s.Static(), 1)
	assert.Less(t, s.Static()[0].Transform().Position().Y(), float32(0))
}

func TestDemoLightsKeepOrderAndFreeze(t *testing.T) {
	s := newDemo(t)
	require.Equal(t, 6, s.Lights.Len())
	assert.True(t, s.Lights.Frozen())

	for i := 0; i < 5; i++ {
		l := s.Lights.At(i)
		assert.Equal(t, light.Point, l.Kind, "light %d", i)
		assert.Equal(t, float32(10), l.Range)
		assert.Equal(t, float32((i-2)*3), l.Position.X())
	}
	sun := s.Lights.At(5)
	assert.Equal(t, light.Directional, sun.Kind)
	assert.Equal(t, mgl32.Vec3{1, 0.8, 0.5}, sun.Color)

	assert.ErrorIs(t, s.Lights.Add(light.NewPoint(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1, 1)), light.ErrFrozen)
}

func TestNewDemoMissingAssets(t *testing.T) {
	a := demoAssets()
	delete(a.Meshes, "helix")
	_, err := NewDemo(a, config.Default().Camera, 1)
	assert.ErrorIs(t, err, ErrMissingAsset)

	a = demoAssets()
	a.Materials = a.Materials[:2]
	_, err = NewDemo(a, config.Default().Camera, 1)
	assert.ErrorIs(t, err, ErrMissingAsset)

	a = demoAssets()
	a.Floor = nil
	delete(a.Meshes, FloorMesh)
	s, err := NewDemo(a, config.Default().Camera, 1)
	require.NoError(t, err)
	assert.Empty(t, s.Static())
}

func TestUpdateSpinsAnimatedOnly(t *testing.T) {
	s := newDemo(t)
	s.Update(2, camera.Controls{})
	s.Update(2, camera.Controls{})

	for _, e := range s.Animated() {
		assert.InDelta(t, 2*SpinSpeed*2, e.Transform().PitchYawRoll().Y(), 1e-5)
	}
	assert.Equal(t, mgl32.Vec3{}, s.Static()[0].Transform().PitchYawRoll())
}

func TestUpdateMovesActiveCameraOnly(t *testing.T) {
	s := newDemo(t)
	require.NoError(t, s.SelectCamera(2))

	before := make([]mgl32.Vec3, len(s.Cameras()))
	for i, c := range s.Cameras() {
		before[i] = c.Transform().Position()
	}
	s.Update(1, camera.Controls{Forward: true})

	for i, c := range s.Cameras() {
		moved := c.Transform().Position() != before[i]
		assert.Equal(t, i == 2, moved, "camera %d", i)
	}
}

func TestSelectCamera(t *testing.T) {
	s := newDemo(t)
	require.NoError(t, s.SelectCamera(1))
	assert.Same(t, s.Cameras()[1], s.Frame().Camera)

	assert.ErrorIs(t, s.SelectCamera(3), ErrNoCamera)
	assert.ErrorIs(t, s.SelectCamera(-1), ErrNoCamera)
	assert.Same(t, s.Cameras()[1], s.ActiveCamera())
}

func TestResizePassesEveryCamera(t *testing.T) {
	s := newDemo(t)
	r := &recordingResizer{}
	require.NoError(t, s.Resize(r, 1920, 1080))
	assert.Equal(t, 1920, r.width)
	assert.Equal(t, 1080, r.height)
	assert.Equal(t, s.Cameras(), r.cams)
}

func TestFrameContents(t *testing.T) {
	s := newDemo(t)
	s.Ambient = mgl32.Vec3{0.1, 0.2, 0.3}
	f := s.Frame()

	assert.Same(t, s.ActiveCamera(), f.Camera)
	assert.Same(t, s.Lights, f.Lights)
	assert.Same(t, s.Assets, f.Assets)
	assert.Equal(t, s.Ambient, f.Ambient)
	require.Len(t, f.Entities, len(DemoMeshes)+1)
	assert.Same(t, s.Static()[0], f.Entities[len(f.Entities)-1])
}

func TestEmptySceneFrameHasNoCamera(t *testing.T) {
	s := New(nil)
	s.Update(1, camera.Controls{Forward: true})
	assert.Nil(t, s.Frame().Camera)
	assert.Empty(t, s.Frame().Entities)
}
