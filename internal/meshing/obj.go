package meshing

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

var ErrEmptyMesh = errors.New("meshing: obj has no faces")

// LoadOBJFile reads a Wavefront OBJ file from disk.
func LoadOBJFile(path string) (*Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := LoadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// objKey identifies one v/vt/vn corner. Missing parts are -1.
type objKey struct{ v, vt, vn int }

type objDecoder struct {
	positions []mgl32.Vec3
	uvs       []mgl32.Vec2
	normals   []mgl32.Vec3

	geom *Geometry
	seen map[objKey]uint32
	line int
}

// LoadOBJ parses the position, texcoord, normal and face records of an OBJ
// stream and converts them to the left-handed convention: z and the v
// texture coordinate are flipped. Polygons are fanned into triangles.
// Files without normals get flat face normals. Tangents are always derived.
func LoadOBJ(r io.Reader) (*Geometry, error) {
	dec := &objDecoder{
		geom: &Geometry{},
		seen: make(map[objKey]uint32),
	}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		dec.line++
		if err := dec.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("obj line %d: %w", dec.line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(dec.geom.Indices) == 0 {
		return nil, ErrEmptyMesh
	}
	dec.geom.CalculateTangents()
	return dec.geom, nil
}

func (d *objDecoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		p, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		d.positions = append(d.positions, mgl32.Vec3{p[0], p[1], -p[2]})
	case "vt":
		p, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		d.uvs = append(d.uvs, mgl32.Vec2{p[0], 1 - p[1]})
	case "vn":
		p, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		d.normals = append(d.normals, mgl32.Vec3{p[0], p[1], -p[2]})
	case "f":
		return d.parseFace(fields[1:])
	}
	// o, g, s, usemtl and mtllib carry nothing a single mesh needs
	return nil
}

func (d *objDecoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return errors.New("face with fewer than 3 corners")
	}
	keys := make([]objKey, len(fields))
	for i, f := range fields {
		k, err := d.parseCorner(f)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	// Mirroring z reverses handedness, so each fan triangle is emitted in
	// reverse order to stay front facing.
	for i := 1; i+1 < len(keys); i++ {
		d.addTriangle(keys[0], keys[i+1], keys[i])
	}
	return nil
}

func (d *objDecoder) parseCorner(f string) (objKey, error) {
	parts := strings.Split(f, "/")
	k := objKey{v: -1, vt: -1, vn: -1}
	var err error
	if k.v, err = resolveIndex(parts[0], len(d.positions)); err != nil {
		return k, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if k.vt, err = resolveIndex(parts[1], len(d.uvs)); err != nil {
			return k, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if k.vn, err = resolveIndex(parts[2], len(d.normals)); err != nil {
			return k, err
		}
	}
	return k, nil
}

func (d *objDecoder) addTriangle(a, b, c objKey) {
	if a.vn < 0 || b.vn < 0 || c.vn < 0 {
		d.addFlatTriangle(a, b, c)
		return
	}
	g := d.geom
	g.Indices = append(g.Indices, d.vertex(a), d.vertex(b), d.vertex(c))
}

// addFlatTriangle gives each corner its own vertex carrying the face
// normal, since shared vertices would smear it across faces.
func (d *objDecoder) addFlatTriangle(a, b, c objKey) {
	g := d.geom
	p0, p1, p2 := d.positions[a.v], d.positions[b.v], d.positions[c.v]
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	if n.Len() > 0 {
		n = n.Normalize()
	}
	for _, k := range [3]objKey{a, b, c} {
		v := Vertex{Position: d.positions[k.v], Normal: n}
		if k.vt >= 0 {
			v.UV = d.uvs[k.vt]
		}
		g.Indices = append(g.Indices, uint32(len(g.Vertices)))
		g.Vertices = append(g.Vertices, v)
	}
}

func (d *objDecoder) vertex(k objKey) uint32 {
	if i, ok := d.seen[k]; ok {
		return i
	}
	v := Vertex{Position: d.positions[k.v], Normal: d.normals[k.vn].Normalize()}
	if k.vt >= 0 {
		v.UV = d.uvs[k.vt]
	}
	i := uint32(len(d.geom.Vertices))
	d.geom.Vertices = append(d.geom.Vertices, v)
	d.seen[k] = i
	return i
}

// resolveIndex turns a 1-based or negative relative OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n += count
	default:
		return 0, errors.New("index 0 is not valid")
	}
	if n < 0 || n >= count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return n, nil
}

func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("want %d values, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
