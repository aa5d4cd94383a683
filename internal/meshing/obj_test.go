package meshing

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// A unit quad facing +Z in a right-handed file, counter-clockwise.
const quadOBJ = `# quad
o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestLoadOBJQuad(t *testing.T) {
	g, err := LoadOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Vertices) != 4 {
		t.Fatalf("got %d vertices, want 4 shared corners", len(g.Vertices))
	}
	if g.TriangleCount() != 2 {
		t.Fatalf("got %d triangles, want 2", g.TriangleCount())
	}
	for _, v := range g.Vertices {
		if v.Normal != (mgl32.Vec3{0, 0, -1}) {
			t.Fatalf("normal not mirrored: %v", v.Normal)
		}
	}
	// v is flipped
	if g.Vertices[0].UV != (mgl32.Vec2{0, 1}) {
		t.Fatalf("uv: got %v, want (0,1)", g.Vertices[0].UV)
	}
	checkWinding(t, "quad", g)
}

func TestLoadOBJWithoutNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	g, err := LoadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	// counter-clockwise in a right-handed file faces +Z, which mirrors to -Z
	if n := g.Vertices[0].Normal; n.Z() > -0.999 {
		t.Fatalf("flat normal: got %v, want (0,0,-1)", n)
	}
	checkWinding(t, "flat", g)
}

func TestLoadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	g, err := LoadOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if g.TriangleCount() != 1 {
		t.Fatalf("got %d triangles, want 1", g.TriangleCount())
	}
}

func TestLoadOBJErrors(t *testing.T) {
	cases := map[string]string{
		"index out of range": "v 0 0 0\nf 1 2 3\n",
		"zero index":         "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"short face":         "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad float":          "v 0 x 0\n",
	}
	for name, src := range cases {
		if _, err := LoadOBJ(strings.NewReader(src)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}

	_, err := LoadOBJ(strings.NewReader("v 0 0 0\n"))
	if !errors.Is(err, ErrEmptyMesh) {
		t.Fatalf("no faces: got %v, want ErrEmptyMesh", err)
	}
}

func TestCalculateTangentsFollowsU(t *testing.T) {
	g, err := LoadOBJ(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range g.Vertices {
		if v.Tangent.Sub(mgl32.Vec3{1, 0, 0}).Len() > 1e-5 {
			t.Fatalf("vertex %d tangent: got %v, want +X", i, v.Tangent)
		}
	}
}
