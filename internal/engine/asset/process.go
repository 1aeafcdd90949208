package asset

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/mesh"
)

// Process applies post-processing flags to every mesh of s in place.
func Process(s *Scene, flags Flags) {
	for i := range s.Meshes {
		m := &s.Meshes[i]
		if flags&FlagTriangulate != 0 {
			triangulate(m)
		}
		if flags&FlagGenNormals != 0 && len(m.Normals) == 0 && trianglesOnly(m) {
			d := m.MeshData("")
			mesh.GenerateFlatNormals(d)
			m.Normals = d.Normals
		}
		if flags&FlagCalcTangentSpace != 0 && len(m.Tangents) == 0 && canGenerateTangents(m) {
			d := m.MeshData("")
			mesh.GenerateTangents(d)
			m.Tangents, m.Bitangents = d.Tangents, d.Bitangents
		}
	}
}

// triangulate replaces each polygon with a triangle fan. Points and
// lines are kept so validation still reports them.
func triangulate(m *Mesh) {
	out := make([][]uint32, 0, len(m.Faces))
	for _, f := range m.Faces {
		if len(f) <= 3 {
			out = append(out, f)
			continue
		}
		for i := 1; i+1 < len(f); i++ {
			out = append(out, []uint32{f[0], f[i], f[i+1]})
		}
	}
	m.Faces = out
}

func trianglesOnly(m *Mesh) bool {
	for _, f := range m.Faces {
		if len(f) != 3 {
			return false
		}
		for _, idx := range f {
			if int(idx) >= len(m.Positions) {
				return false
			}
		}
	}
	return len(m.Positions) > 0
}

func canGenerateTangents(m *Mesh) bool {
	return trianglesOnly(m) &&
		len(m.UVChannels) == 1 &&
		m.UVChannels[0].Components == 2 &&
		len(m.UVChannels[0].Coords) == len(m.Positions)
}

// identity is used for nodes without an explicit transform.
var identity = mgl32.Ident4()
