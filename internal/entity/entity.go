package entity

import (
	"mini-scene/internal/registry"
	"mini-scene/internal/transform"
)

// Entity is one drawable object: shared geometry and material plus a
// transform of its own.
type Entity struct {
	mesh      registry.MeshID
	material  registry.MaterialID
	transform transform.Transform
}

func New(mesh registry.MeshID, material registry.MaterialID) *Entity {
	return &Entity{
		mesh:      mesh,
		material:  material,
		transform: transform.New(),
	}
}

func (e *Entity) Mesh() registry.MeshID         { return e.mesh }
func (e *Entity) Material() registry.MaterialID { return e.material }

func (e *Entity) SetMaterial(m registry.MaterialID) { e.material = m }

// Transform returns the entity's transform for in-place mutation.
func (e *Entity) Transform() *transform.Transform { return &e.transform }
