package asset

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/mesh"
)

// FromMeshData converts engine mesh data into an asset mesh using
// material index mat.
func FromMeshData(d *mesh.Data, mat int) Mesh {
	m := Mesh{
		Name:          d.Name,
		MaterialIndex: mat,
		Positions:     d.Positions,
		Normals:       d.Normals,
		Tangents:      d.Tangents,
		Bitangents:    d.Bitangents,
	}
	uv := UVChannel{Components: 2, Coords: make([]mgl32.Vec3, len(d.UVs))}
	for i, c := range d.UVs {
		uv.Coords[i] = c.Vec3(0)
	}
	m.UVChannels = []UVChannel{uv}
	for i := 0; i+2 < len(d.Indices); i += 3 {
		m.Faces = append(m.Faces, []uint32{d.Indices[i], d.Indices[i+1], d.Indices[i+2]})
	}
	return m
}

// Chest builds a small three-node scene: a body with a lid and a lock,
// using two materials. Texture paths are inline colors so the scene has
// no file dependencies.
func Chest() *Scene {
	cube, _ := mesh.Load(mesh.Cube)
	plane, _ := mesh.Load(mesh.Plane)

	body := FromMeshData(cube, 0)
	body.Name = "body"
	lid := FromMeshData(cube, 0)
	lid.Name = "lid"
	lock := FromMeshData(plane, 1)
	lock.Name = "lock"

	return &Scene{
		Root: &Node{
			Name:      "Chest",
			Transform: mgl32.Scale3D(1, 0.6, 0.6),
			Meshes:    []int{0},
			Children: []*Node{{
				Name:      "Lid",
				Transform: mgl32.Translate3D(0, 0, 0.6).Mul4(mgl32.Scale3D(1, 1, 0.2)),
				Meshes:    []int{1},
				Children: []*Node{{
					Name:      "Lock",
					Transform: mgl32.Translate3D(0, -0.51, 0).Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(90))).Mul4(mgl32.Scale3D(0.2, 0.2, 1)),
					Meshes:    []int{2},
				}},
			}},
		},
		Meshes: []Mesh{body, lid, lock},
		Materials: []Material{
			{Name: "wood", Textures: map[TextureSlot]string{SlotDiffuse: "color(0.45,0.3,0.15,1)"}},
			{Name: "brass", Textures: map[TextureSlot]string{
				SlotDiffuse:  "color(0.8,0.65,0.2,1)",
				SlotSpecular: "color(1,1,1,1)",
			}},
		},
	}
}
