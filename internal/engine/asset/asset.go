// Package asset defines the parsed form of imported scene files and the
// importer that produces it.
//
// A parsed Scene is a tree of nodes referencing meshes and materials by
// index, mirroring the layout of common interchange formats. The engine
// requires fully prepared meshes: triangles only, one two-component UV
// channel, normals and a tangent frame. Validate enforces this before a
// scene is handed to the scene graph.
package asset

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/mesh"
)

// TextureSlot names a material texture channel.
type TextureSlot string

const (
	SlotDiffuse   TextureSlot = "diffuse"
	SlotSpecular  TextureSlot = "specular"
	SlotEmissive  TextureSlot = "emissive"
	SlotNormals   TextureSlot = "normals"
	SlotShininess TextureSlot = "shininess"
	SlotLightmap  TextureSlot = "lightmap"
)

// Scene is a parsed asset file.
type Scene struct {
	Path      string
	Root      *Node
	Meshes    []Mesh
	Materials []Material
}

// Node is one node of the asset hierarchy. Transform is the node's
// transform relative to its parent.
type Node struct {
	Name      string
	Transform mgl32.Mat4
	Meshes    []int
	Children  []*Node
}

// Mesh is a mesh as stored in the asset.
type Mesh struct {
	Name          string
	MaterialIndex int
	Positions     []mgl32.Vec3
	Normals       []mgl32.Vec3
	UVChannels    []UVChannel
	Tangents      []mgl32.Vec3
	Bitangents    []mgl32.Vec3
	Colors        [][]mgl32.Vec4
	Faces         [][]uint32
}

// UVChannel holds one set of texture coordinates. Components is 2 for
// ordinary UVs and 3 for UVW coordinates.
type UVChannel struct {
	Components int
	Coords     []mgl32.Vec3
}

// Material is a material as stored in the asset: texture paths by slot.
type Material struct {
	Name     string
	Textures map[TextureSlot]string
}

// Texture returns the texture path for slot, or "".
func (m *Material) Texture(slot TextureSlot) string {
	return m.Textures[slot]
}

// Walk visits n and its descendants depth-first, pre-order.
func (n *Node) Walk(fn func(n *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// NodeCount returns the number of nodes in the hierarchy.
func (s *Scene) NodeCount() int {
	if s.Root == nil {
		return 0
	}
	n := 0
	s.Root.Walk(func(*Node, int) { n++ })
	return n
}

// MeshData converts a validated mesh into uploadable mesh data.
func (m *Mesh) MeshData(uniqueID string) *mesh.Data {
	d := &mesh.Data{
		Name:       m.Name,
		UniqueID:   uniqueID,
		Positions:  m.Positions,
		Normals:    m.Normals,
		Tangents:   m.Tangents,
		Bitangents: m.Bitangents,
		Indices:    make([]uint32, 0, len(m.Faces)*3),
	}
	if len(m.UVChannels) > 0 {
		d.UVs = make([]mgl32.Vec2, len(m.UVChannels[0].Coords))
		for i, uv := range m.UVChannels[0].Coords {
			d.UVs[i] = uv.Vec2()
		}
	}
	for _, f := range m.Faces {
		d.Indices = append(d.Indices, f...)
	}
	return d
}
