package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/camera"
	"mini-scene/internal/entity"
	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/light"
	"mini-scene/internal/registry"
)

// Sky is drawn after all entities, from the inside of its mesh.
type Sky struct {
	Mesh    gpu.Mesh
	Program gpu.Program
	Cubemap gpu.Texture
}

// Frame is everything one RenderFrame call reads. Entities are drawn in
// slice order.
type Frame struct {
	Camera   *camera.Camera
	Entities []*entity.Entity
	Assets   *registry.Registry
	Lights   *light.List
	Ambient  mgl32.Vec3
	Sky      *Sky
}

// Programs are the renderer's own shader programs. Entity programs come
// from their materials.
type Programs struct {
	Shadow gpu.Program
	Blur   gpu.Program
}

type Settings struct {
	Background mgl32.Vec4

	Shadows       bool
	ShadowMapSize int
	Shadow        light.Shadow

	PostProcess bool
	// PostScale sizes the intermediate color target relative to the window.
	PostScale  float32
	BlurRadius int32
}

// DefaultSettings returns the demo defaults.
func DefaultSettings() Settings {
	return Settings{
		Background:    mgl32.Vec4{0.4, 0.6, 0.75, 1},
		Shadows:       true,
		ShadowMapSize: 2048,
		Shadow: light.Shadow{
			Fallback: mgl32.Vec3{0, -1, 1},
			Distance: 20,
			Extent:   40,
			Near:     0.1,
			Far:      60,
		},
		PostProcess: true,
		PostScale:   1,
		BlurRadius:  0,
	}
}

// Texture slots used by the built-in passes. Material textures start at
// firstMaterialSlot.
const (
	shadowSlot        = 0
	postSourceSlot    = 0
	skySlot           = 1
	firstMaterialSlot = 1
)
