package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Primitive is a built-in mesh shape.
type Primitive int

const (
	Plane Primitive = iota
	Cube
)

func (p Primitive) String() string {
	switch p {
	case Plane:
		return "plane"
	case Cube:
		return "cube"
	default:
		return fmt.Sprintf("Primitive(%d)", int(p))
	}
}

// Identifier returns the cache key shared by every load of p.
func (p Primitive) Identifier() string {
	return "primitive:" + p.String()
}

// ParsePrimitive maps a primitive name back to its value.
func ParsePrimitive(name string) (Primitive, error) {
	switch name {
	case "plane":
		return Plane, nil
	case "cube":
		return Cube, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPrimitive, name)
}

// Load builds the mesh data of p.
func Load(p Primitive) (*Data, error) {
	var d *Data
	switch p {
	case Plane:
		d = plane()
	case Cube:
		d = cube()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPrimitive, int(p))
	}
	d.UniqueID = p.Identifier()
	return d, nil
}

// unit plane facing +Z
func plane() *Data {
	d := &Data{Name: "plane"}
	AddQuad(
		mgl32.Vec3{-0.5, -0.5, 0},
		mgl32.Vec3{-0.5, 0.5, 0},
		mgl32.Vec3{0.5, 0.5, 0},
		mgl32.Vec3{0.5, -0.5, 0},
		d,
	)
	return d
}

// unit cube centred on the origin
func cube() *Data {
	d := &Data{Name: "cube"}
	// top, bottom, left, right, front, back
	faces := [6][4]mgl32.Vec3{
		{{-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, -0.5, 0.5}},
		{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}},
		{{-0.5, 0.5, -0.5}, {-0.5, 0.5, 0.5}, {-0.5, -0.5, 0.5}, {-0.5, -0.5, -0.5}},
		{{0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}},
		{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}},
		{{0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}},
	}
	for _, f := range faces {
		AddQuad(f[0], f[1], f[2], f[3], d)
	}
	return d
}

var quadUVs = [6]mgl32.Vec2{
	{0, 0}, {0, 1}, {1, 1},
	{0, 0}, {1, 1}, {1, 0},
}

// AddQuad appends two triangles (a,b,c) and (a,c,d) with a flat normal
// and tangent frame. Vertices are expected clockwise for the front face.
func AddQuad(a, b, c, d mgl32.Vec3, m *Data) {
	pos := [6]mgl32.Vec3{a, b, c, a, c, d}
	ab := b.Sub(a)
	ac := c.Sub(a)
	normal := ac.Cross(ab).Normalize()
	tangent, bitangent := TriangleTangents(ab, ac, quadUVs[1].Sub(quadUVs[0]), quadUVs[2].Sub(quadUVs[0]))

	base := uint32(len(m.Positions))
	for i := range pos {
		m.Positions = append(m.Positions, pos[i])
		m.Normals = append(m.Normals, normal)
		m.UVs = append(m.UVs, quadUVs[i])
		m.Tangents = append(m.Tangents, tangent)
		m.Bitangents = append(m.Bitangents, bitangent)
		m.Indices = append(m.Indices, base+uint32(i))
	}
}
