package scene

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/camera"
	"mini-scene/internal/config"
	"mini-scene/internal/entity"
	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/graphics/renderer"
	"mini-scene/internal/light"
	"mini-scene/internal/material"
	"mini-scene/internal/registry"
)

// Mesh names the demo layout expects, in entity order. FloorMesh is the
// ground plane.
var DemoMeshes = []string{"sphere", "cube", "helix", "cylinder", "torus"}

const FloorMesh = "floor"

const (
	entitySpacing = 3
	floorHeight   = -1.5
)

var ErrMissingAsset = errors.New("scene: missing demo asset")

// DemoAssets are the GPU resources NewDemo arranges. Materials[i] is used by
// the entity on DemoMeshes[i].
type DemoAssets struct {
	Meshes    map[string]gpu.Mesh
	Materials []*material.Material
	Floor     *material.Material
	Sky       *renderer.Sky
}

type cameraSpot struct {
	position mgl32.Vec3
	fov      float32
}

var demoCameras = []cameraSpot{
	{mgl32.Vec3{0, 0, -10}, math32.Pi / 4},
	{mgl32.Vec3{40, 0, -50}, 1.2},
	{mgl32.Vec3{0, 10, -30}, math32.Pi / 2},
}

// DemoLights returns five point lights alternating in front of and behind
// the entity row, followed by one warm directional light.
func DemoLights() []light.Light {
	white := mgl32.Vec3{1, 1, 1}
	lights := make([]light.Light, 0, 6)
	for i := 0; i < 5; i++ {
		z := float32(-5)
		if i%2 == 1 {
			z = 5
		}
		x := float32((i - 2) * entitySpacing)
		lights = append(lights, light.NewPoint(mgl32.Vec3{x, 5, z}, white, 1, 10))
	}
	sun := mgl32.Vec3{0.4, -1, 0.6}.Normalize()
	lights = append(lights, light.NewDirectional(sun, mgl32.Vec3{1, 0.8, 0.5}, 1))
	return lights
}

// NewDemo builds the demo scene: three cameras, a row of spinning shapes
// over a floor, and a frozen light list.
func NewDemo(assets DemoAssets, cam config.CameraSettings, aspect float32) (*Scene, error) {
	if len(assets.Materials) < len(DemoMeshes) {
		return nil, fmt.Errorf("%w: %d materials for %d meshes", ErrMissingAsset, len(assets.Materials), len(DemoMeshes))
	}

	reg := registry.New()
	s := New(reg)
	s.Sky = assets.Sky

	for _, spot := range demoCameras {
		s.AddCamera(camera.New(spot.position, cam.MoveSpeed, cam.LookSpeed, spot.fov, aspect,
			camera.WithNearClip(cam.NearClip),
			camera.WithFarClip(cam.FarClip),
		))
	}

	for i, name := range DemoMeshes {
		meshID, err := addMesh(reg, assets.Meshes, name)
		if err != nil {
			return nil, err
		}
		matID, err := reg.AddMaterial(assets.Materials[i])
		if err != nil {
			return nil, err
		}
		e := entity.New(meshID, matID)
		e.Transform().SetPosition(mgl32.Vec3{float32((i - 2) * entitySpacing), 0, 0})
		s.AddEntity(e)
	}

	if assets.Floor != nil {
		meshID, err := addMesh(reg, assets.Meshes, FloorMesh)
		if err != nil {
			return nil, err
		}
		matID, err := reg.AddMaterial(assets.Floor)
		if err != nil {
			return nil, err
		}
		floor := entity.New(meshID, matID)
		floor.Transform().SetPosition(mgl32.Vec3{0, floorHeight, 0})
		s.AddStatic(floor)
	}

	if err := s.Lights.Add(DemoLights()...); err != nil {
		return nil, err
	}
	s.Lights.Freeze()
	return s, nil
}

func addMesh(reg *registry.Registry, meshes map[string]gpu.Mesh, name string) (registry.MeshID, error) {
	m, ok := meshes[name]
	if !ok || m == nil {
		return 0, fmt.Errorf("%w: mesh %q", ErrMissingAsset, name)
	}
	return reg.AddMesh(name, m)
}
