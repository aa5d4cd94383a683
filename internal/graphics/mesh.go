package graphics

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"mini-scene/internal/meshing"
)

// Vertex attribute locations shared by every mesh shader.
const (
	attribPosition = 0
	attribNormal   = 1
	attribUV       = 2
	attribTangent  = 3
)

// Mesh is indexed geometry resident on the GPU. It implements gpu.Mesh.
type Mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

// NewMesh uploads g.
func NewMesh(g *meshing.Geometry) *Mesh {
	m := &Mesh{indexCount: int32(len(g.Indices))}
	verts := g.Interleave()

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(g.Indices)*4, gl.Ptr(g.Indices), gl.STATIC_DRAW)

	stride := int32(meshing.FloatsPerVertex * 4)
	gl.EnableVertexAttribArray(attribPosition)
	gl.VertexAttribPointerWithOffset(attribPosition, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(attribNormal)
	gl.VertexAttribPointerWithOffset(attribNormal, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(attribUV)
	gl.VertexAttribPointerWithOffset(attribUV, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(attribTangent)
	gl.VertexAttribPointerWithOffset(attribTangent, 3, gl.FLOAT, false, stride, 8*4)

	gl.BindVertexArray(0)
	return m
}

func (m *Mesh) Draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, nil)
}

func (m *Mesh) IndexCount() int { return int(m.indexCount) }

// Delete frees the buffers.
func (m *Mesh) Delete() {
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}
