package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the shared vertex format of every mesh the renderer draws.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec3
}

// FloatsPerVertex is the interleaved stride of Vertex in float32s:
// position(3) normal(3) uv(2) tangent(3).
const FloatsPerVertex = 11

// Geometry is an indexed triangle list. Front faces wind clockwise when
// seen from outside, matching the renderer's left-handed convention.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Interleave packs the vertices for upload.
func (g *Geometry) Interleave() []float32 {
	out := make([]float32, 0, len(g.Vertices)*FloatsPerVertex)
	for _, v := range g.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
			v.Tangent[0], v.Tangent[1], v.Tangent[2],
		)
	}
	return out
}

func (g *Geometry) TriangleCount() int { return len(g.Indices) / 3 }

// Bounds returns the axis-aligned box enclosing every vertex.
func (g *Geometry) Bounds() (lo, hi mgl32.Vec3) {
	if len(g.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = g.Vertices[0].Position, g.Vertices[0].Position
	for _, v := range g.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}

// CalculateTangents derives per-vertex tangents from positions and UVs,
// for meshes loaded without them.
func (g *Geometry) CalculateTangents() {
	acc := make([]mgl32.Vec3, len(g.Vertices))
	for t := 0; t+2 < len(g.Indices); t += 3 {
		i0, i1, i2 := g.Indices[t], g.Indices[t+1], g.Indices[t+2]
		v0, v1, v2 := g.Vertices[i0], g.Vertices[i1], g.Vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.UV[0]-v0.UV[0], v1.UV[1]-v0.UV[1]
		du2, dv2 := v2.UV[0]-v0.UV[0], v2.UV[1]-v0.UV[1]

		det := du1*dv2 - du2*dv1
		if det == 0 {
			continue
		}
		r := 1 / det
		tan := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)
		acc[i0] = acc[i0].Add(tan)
		acc[i1] = acc[i1].Add(tan)
		acc[i2] = acc[i2].Add(tan)
	}

	// Gram-Schmidt against the normal
	for i := range g.Vertices {
		n := g.Vertices[i].Normal
		t := acc[i].Sub(n.Mul(n.Dot(acc[i])))
		if t.Len() < 1e-6 {
			t = anyPerpendicular(n)
		}
		g.Vertices[i].Tangent = t.Normalize()
	}
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if n[0] > 0.9 || n[0] < -0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis)))
}
