package meshing

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const twoPi = 2 * math32.Pi

// cubeFaces lists each face normal with its u (tangent) and v axes.
var cubeFaces = [6]struct{ n, u, v mgl32.Vec3 }{
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
}

// Cube builds an axis-aligned cube centered on the origin with 24 vertices,
// so every face gets its own normals and UVs.
func Cube(size float32) *Geometry {
	h := size / 2
	g := &Geometry{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range cubeFaces {
		c := f.n.Mul(h)
		u, v := f.u.Mul(h), f.v.Mul(h)
		base := uint32(len(g.Vertices))
		corners := [4]struct {
			p  mgl32.Vec3
			uv mgl32.Vec2
		}{
			{c.Sub(u).Add(v), mgl32.Vec2{0, 0}},
			{c.Add(u).Add(v), mgl32.Vec2{1, 0}},
			{c.Add(u).Sub(v), mgl32.Vec2{1, 1}},
			{c.Sub(u).Sub(v), mgl32.Vec2{0, 1}},
		}
		for _, k := range corners {
			g.Vertices = append(g.Vertices, Vertex{Position: k.p, Normal: f.n, UV: k.uv, Tangent: f.u})
		}
		g.addTriangle(base, base+1, base+2)
		g.addTriangle(base, base+2, base+3)
	}
	return g
}

// Sphere builds a UV sphere. slices run around Y and stacks from pole to
// pole.
func Sphere(radius float32, slices, stacks int) *Geometry {
	slices, stacks = max(slices, 3), max(stacks, 2)
	return grid(slices, stacks, func(u, v float32) Vertex {
		phi := u * twoPi
		theta := v * math32.Pi
		st, ct := sincos(theta)
		sp, cp := sincos(phi)
		n := mgl32.Vec3{st * cp, ct, st * sp}
		return Vertex{
			Position: n.Mul(radius),
			Normal:   n,
			UV:       mgl32.Vec2{u, v},
			Tangent:  mgl32.Vec3{-sp, 0, cp},
		}
	})
}

// Cylinder builds a capped cylinder standing on Y, centered on the origin.
func Cylinder(radius, height float32, slices int) *Geometry {
	slices = max(slices, 3)
	half := height / 2
	g := grid(slices, 1, func(u, v float32) Vertex {
		sp, cp := sincos(u * twoPi)
		return Vertex{
			Position: mgl32.Vec3{radius * cp, half - v*height, radius * sp},
			Normal:   mgl32.Vec3{cp, 0, sp},
			UV:       mgl32.Vec2{u, v},
			Tangent:  mgl32.Vec3{-sp, 0, cp},
		}
	})
	g.addCap(radius, half, slices, 1)
	g.addCap(radius, -half, slices, -1)
	return g
}

func (g *Geometry) addCap(radius, y float32, slices int, side float32) {
	n := mgl32.Vec3{0, side, 0}
	center := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, Vertex{
		Position: mgl32.Vec3{0, y, 0},
		Normal:   n,
		UV:       mgl32.Vec2{0.5, 0.5},
		Tangent:  mgl32.Vec3{1, 0, 0},
	})
	for j := 0; j <= slices; j++ {
		sp, cp := sincos(float32(j) / float32(slices) * twoPi)
		g.Vertices = append(g.Vertices, Vertex{
			Position: mgl32.Vec3{radius * cp, y, radius * sp},
			Normal:   n,
			UV:       mgl32.Vec2{0.5 + cp/2, 0.5 + sp/2},
			Tangent:  mgl32.Vec3{1, 0, 0},
		})
	}
	for j := uint32(0); j < uint32(slices); j++ {
		g.addTriangle(center, center+1+j, center+2+j)
	}
}

// Torus builds a ring around Y. rings subdivide the major circle and sides
// the tube.
func Torus(major, minor float32, rings, sides int) *Geometry {
	rings, sides = max(rings, 3), max(sides, 3)
	return grid(rings, sides, func(u, v float32) Vertex {
		st, ct := sincos(u * twoPi)
		sp, cp := sincos(v * twoPi)
		n := mgl32.Vec3{cp * ct, sp, cp * st}
		ring := major + minor*cp
		return Vertex{
			Position: mgl32.Vec3{ring * ct, minor * sp, ring * st},
			Normal:   n,
			UV:       mgl32.Vec2{u, v},
			Tangent:  mgl32.Vec3{-st, 0, ct},
		}
	})
}

// HelixParams describes a coiled tube centered on the origin.
type HelixParams struct {
	Radius      float32 // coil radius
	TubeRadius  float32
	Pitch       float32 // rise per turn
	Turns       float32
	Segments    int // along the coil
	TubeSegment int // around the tube
}

func DefaultHelix() HelixParams {
	return HelixParams{Radius: 0.35, TubeRadius: 0.12, Pitch: 0.4, Turns: 2.5, Segments: 96, TubeSegment: 12}
}

// Helix sweeps a circle along a helical curve. The ends are left open.
func Helix(p HelixParams) *Geometry {
	segs, sides := max(p.Segments, 3), max(p.TubeSegment, 3)
	span := p.Turns * twoPi
	rise := p.Pitch / twoPi
	offset := p.Pitch * p.Turns / 2

	return grid(segs, sides, func(u, v float32) Vertex {
		t := u * span
		st, ct := sincos(t)
		center := mgl32.Vec3{p.Radius * ct, rise*t - offset, p.Radius * st}
		tangent := mgl32.Vec3{-p.Radius * st, rise, p.Radius * ct}.Normalize()
		normal := mgl32.Vec3{-ct, 0, -st}
		binormal := tangent.Cross(normal)

		sp, cp := sincos(v * twoPi)
		n := normal.Mul(cp).Add(binormal.Mul(sp))
		return Vertex{
			Position: center.Add(n.Mul(p.TubeRadius)),
			Normal:   n,
			UV:       mgl32.Vec2{u * p.Turns, v},
			Tangent:  tangent,
		}
	})
}

// Plane builds a flat square facing +Y with its texture repeated tiles
// times along each side.
func Plane(size float32, tiles int) *Geometry {
	half := size / 2
	rep := float32(max(tiles, 1))
	return grid(1, 1, func(u, v float32) Vertex {
		return Vertex{
			Position: mgl32.Vec3{-half + u*size, 0, half - v*size},
			Normal:   mgl32.Vec3{0, 1, 0},
			UV:       mgl32.Vec2{u * rep, v * rep},
			Tangent:  mgl32.Vec3{1, 0, 0},
		}
	})
}

// grid samples f over a (cols+1) x (rows+1) lattice of u, v in [0, 1] and
// stitches the quads into triangles.
func grid(cols, rows int, f func(u, v float32) Vertex) *Geometry {
	stride := uint32(cols + 1)
	g := &Geometry{
		Vertices: make([]Vertex, 0, (cols+1)*(rows+1)),
		Indices:  make([]uint32, 0, cols*rows*6),
	}
	for i := 0; i <= rows; i++ {
		v := float32(i) / float32(rows)
		for j := 0; j <= cols; j++ {
			g.Vertices = append(g.Vertices, f(float32(j)/float32(cols), v))
		}
	}
	for i := uint32(0); i < uint32(rows); i++ {
		for j := uint32(0); j < uint32(cols); j++ {
			v00 := i*stride + j
			v01 := v00 + 1
			v10 := v00 + stride
			v11 := v10 + 1
			g.addQuad(v00, v01, v11, v10)
		}
	}
	return g
}

// addQuad splits a quad into two triangles sharing one orientation, picked
// from whichever half is not collapsed at a pole.
func (g *Geometry) addQuad(a, b, c, d uint32) {
	n := g.faceCross(a, b, d)
	if n.Len() < 1e-9 {
		n = g.faceCross(b, c, d)
	}
	if n.Dot(g.normalSum(a, b, c, d)) < 0 {
		g.Indices = append(g.Indices, a, d, b, b, d, c)
		return
	}
	g.Indices = append(g.Indices, a, b, d, b, c, d)
}

// addTriangle appends a, b, c wound clockwise as seen from the side its
// vertex normals point to.
func (g *Geometry) addTriangle(a, b, c uint32) {
	if g.faceCross(a, b, c).Dot(g.normalSum(a, b, c)) < 0 {
		b, c = c, b
	}
	g.Indices = append(g.Indices, a, b, c)
}

// faceCross is positive along the normal of a front face.
func (g *Geometry) faceCross(a, b, c uint32) mgl32.Vec3 {
	pa := g.Vertices[a].Position
	return g.Vertices[b].Position.Sub(pa).Cross(g.Vertices[c].Position.Sub(pa))
}

func (g *Geometry) normalSum(idx ...uint32) mgl32.Vec3 {
	var n mgl32.Vec3
	for _, i := range idx {
		n = n.Add(g.Vertices[i].Normal)
	}
	return n
}

func sincos(x float32) (float32, float32) { return math32.Sin(x), math32.Cos(x) }
