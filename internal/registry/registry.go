package registry

import (
	"errors"
	"fmt"

	"mini-scene/internal/graphics/gpu"
	"mini-scene/internal/material"
)

// MeshID and MaterialID are stable handles into a Registry. The zero value
// is never issued.
type (
	MeshID     uint32
	MaterialID uint32
)

var (
	ErrDuplicateName = errors.New("registry: duplicate name")
	ErrUnknownHandle = errors.New("registry: unknown handle")
)

// Registry owns the meshes and materials a scene draws with. Entities refer
// to them by handle so many entities can share one asset.
type Registry struct {
	meshes        []gpu.Mesh
	meshNames     []string
	meshByName    map[string]MeshID
	materials     []*material.Material
	materialNames map[string]MaterialID
}

func New() *Registry {
	return &Registry{
		meshByName:    make(map[string]MeshID),
		materialNames: make(map[string]MaterialID),
	}
}

func (r *Registry) AddMesh(name string, m gpu.Mesh) (MeshID, error) {
	if _, exists := r.meshByName[name]; exists {
		return 0, fmt.Errorf("%w: mesh %q", ErrDuplicateName, name)
	}
	r.meshes = append(r.meshes, m)
	r.meshNames = append(r.meshNames, name)
	id := MeshID(len(r.meshes))
	r.meshByName[name] = id
	return id, nil
}

// Mesh returns the mesh for id, or nil if id was not issued by r.
func (r *Registry) Mesh(id MeshID) gpu.Mesh {
	if id == 0 || int(id) > len(r.meshes) {
		return nil
	}
	return r.meshes[id-1]
}

func (r *Registry) MeshByName(name string) (MeshID, bool) {
	id, ok := r.meshByName[name]
	return id, ok
}

// MeshNames lists mesh names in registration order.
func (r *Registry) MeshNames() []string { return r.meshNames }

func (r *Registry) AddMaterial(m *material.Material) (MaterialID, error) {
	if _, exists := r.materialNames[m.Name()]; exists {
		return 0, fmt.Errorf("%w: material %q", ErrDuplicateName, m.Name())
	}
	r.materials = append(r.materials, m)
	id := MaterialID(len(r.materials))
	r.materialNames[m.Name()] = id
	return id, nil
}

// Material returns the material for id, or nil if id was not issued by r.
func (r *Registry) Material(id MaterialID) *material.Material {
	if id == 0 || int(id) > len(r.materials) {
		return nil
	}
	return r.materials[id-1]
}

func (r *Registry) MaterialByName(name string) (MaterialID, bool) {
	id, ok := r.materialNames[name]
	return id, ok
}

// Resolve looks up both handles at once.
func (r *Registry) Resolve(mesh MeshID, mat MaterialID) (gpu.Mesh, *material.Material, error) {
	m := r.Mesh(mesh)
	if m == nil {
		return nil, nil, fmt.Errorf("%w: mesh %d", ErrUnknownHandle, mesh)
	}
	mt := r.Material(mat)
	if mt == nil {
		return nil, nil, fmt.Errorf("%w: material %d", ErrUnknownHandle, mat)
	}
	return m, mt, nil
}
