package asset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Vertex is a single mesh vertex
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Model is a triangle list with an optional material library reference
type Model struct {
	Name        string
	Vertices    []Vertex
	MaterialLib string // Path of the mtllib named in the file, relative to the model
}

// Bounds returns the axis-aligned extent of the model
func (m *Model) Bounds() (lo, hi mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}

// Quad builds a two-triangle model from four corners in winding order
func Quad(name string, v1, v2, v3, v4 mgl32.Vec3) *Model {
	normal := v2.Sub(v1).Cross(v3.Sub(v1))
	a := Vertex{Position: v1, Normal: normal, UV: mgl32.Vec2{0, 0}}
	b := Vertex{Position: v2, Normal: normal, UV: mgl32.Vec2{0, 1}}
	c := Vertex{Position: v3, Normal: normal, UV: mgl32.Vec2{1, 1}}
	d := Vertex{Position: v4, Normal: normal, UV: mgl32.Vec2{1, 0}}
	return &Model{
		Name:     name,
		Vertices: []Vertex{a, b, c, c, d, a},
	}
}

// Cube builds a unit cube centred on the origin out of six quads
func Cube(name string) *Model {
	p := func(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x, y, z} }
	faces := []*Model{
		Quad("", p(-1, -1, 1), p(-1, 1, 1), p(1, 1, 1), p(1, -1, 1)),
		Quad("", p(1, -1, -1), p(1, 1, -1), p(-1, 1, -1), p(-1, -1, -1)),
		Quad("", p(-1, -1, -1), p(-1, 1, -1), p(-1, 1, 1), p(-1, -1, 1)),
		Quad("", p(1, -1, 1), p(1, 1, 1), p(1, 1, -1), p(1, -1, -1)),
		Quad("", p(-1, 1, 1), p(-1, 1, -1), p(1, 1, -1), p(1, 1, 1)),
		Quad("", p(-1, -1, -1), p(-1, -1, 1), p(1, -1, 1), p(1, -1, -1)),
	}
	m := &Model{Name: name}
	for _, f := range faces {
		m.Vertices = append(m.Vertices, f.Vertices...)
	}
	return m
}

// loadOBJ reads positions, normals, texture coordinates and polygon faces
// Polygons are fanned into triangles
func loadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open %s", path)
	}
	defer f.Close()

	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
		model     = &Model{Name: path}
	)

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: bad vertex", path, line)
			}
			positions = append(positions, mgl32.Vec3{v[0], v[1], v[2]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: bad normal", path, line)
			}
			normals = append(normals, mgl32.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: bad texture coordinate", path, line)
			}
			uvs = append(uvs, mgl32.Vec2{v[0], v[1]})
		case "f":
			if len(fields) < 4 {
				return nil, errors.Errorf("%s:%d: face needs at least 3 vertices", path, line)
			}
			poly := make([]Vertex, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				v, err := resolveFaceVertex(ref, positions, normals, uvs)
				if err != nil {
					return nil, errors.Wrapf(err, "%s:%d", path, line)
				}
				poly = append(poly, v)
			}
			for i := 1; i+1 < len(poly); i++ {
				model.Vertices = append(model.Vertices, poly[0], poly[i], poly[i+1])
			}
		case "mtllib":
			if len(fields) > 1 {
				model.MaterialLib = fields[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "couldn't read from %s", path)
	}
	return model, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, errors.Errorf("expected %d numbers, found %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// resolveFaceVertex decodes "p", "p/t", "p//n" or "p/t/n" with 1-based or negative indices
func resolveFaceVertex(ref string, positions, normals []mgl32.Vec3, uvs []mgl32.Vec2) (Vertex, error) {
	var v Vertex
	parts := strings.Split(ref, "/")

	pi, err := objIndex(parts[0], len(positions))
	if err != nil {
		return v, errors.Wrapf(err, "face vertex %q", ref)
	}
	v.Position = positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := objIndex(parts[1], len(uvs))
		if err != nil {
			return v, errors.Wrapf(err, "face texture coordinate %q", ref)
		}
		v.UV = uvs[ti]
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := objIndex(parts[2], len(normals))
		if err != nil {
			return v, errors.Wrapf(err, "face normal %q", ref)
		}
		v.Normal = normals[ni]
	}
	return v, nil
}

func objIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, errors.Errorf("index %s out of range (%d defined)", s, n)
	}
	return i, nil
}
