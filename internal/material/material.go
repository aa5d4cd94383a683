package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"mini-scene/internal/graphics/gpu"
)

// TextureBinding is a texture the material binds under a sampler uniform
// name.
type TextureBinding struct {
	Name    string
	Texture gpu.Texture
	Sampler gpu.Sampler
}

// Material groups a shader program with the values it draws with. A single
// material is usually shared by many entities.
type Material struct {
	name      string
	program   gpu.Program
	colorTint mgl32.Vec3
	roughness float32
	textures  []TextureBinding
}

func New(name string, program gpu.Program, colorTint mgl32.Vec3, roughness float32) *Material {
	return &Material{
		name:      name,
		program:   program,
		colorTint: colorTint,
		roughness: roughness,
	}
}

func (m *Material) Name() string               { return m.name }
func (m *Material) Program() gpu.Program       { return m.program }
func (m *Material) ColorTint() mgl32.Vec3      { return m.colorTint }
func (m *Material) Roughness() float32         { return m.roughness }
func (m *Material) Textures() []TextureBinding { return m.textures }

func (m *Material) SetProgram(p gpu.Program)       { m.program = p }
func (m *Material) SetColorTint(tint mgl32.Vec3)   { m.colorTint = tint }
func (m *Material) SetRoughness(roughness float32) { m.roughness = roughness }

// AddTexture appends a texture. Textures are bound in the order they were
// added. Adding a name twice replaces the earlier texture in place.
func (m *Material) AddTexture(name string, tex gpu.Texture, s gpu.Sampler) {
	for i := range m.textures {
		if m.textures[i].Name == name {
			m.textures[i].Texture = tex
			m.textures[i].Sampler = s
			return
		}
	}
	m.textures = append(m.textures, TextureBinding{Name: name, Texture: tex, Sampler: s})
}

// SetUniforms writes the material values into its program. Texture i is
// expected on slot firstSlot+i.
func (m *Material) SetUniforms(firstSlot int) {
	m.program.SetVec3("colorTint", m.colorTint)
	m.program.SetFloat("roughness", m.roughness)
	for i, tb := range m.textures {
		m.program.SetInt(tb.Name, int32(firstSlot+i))
	}
}
