// Package gpu defines the GPU resource layer the engine draws through.
//
// Device implementations own GPU objects; the engine only holds the opaque
// IDs they return. Headless is a recording implementation that validates
// inputs exactly like a real device but never touches a GPU.
package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/lighting"
	"github.com/Faultbox/warg/internal/engine/mesh"
)

// Opaque GPU object identifiers. Zero means "none".
type (
	MeshID    uint32
	TextureID uint32
	ProgramID uint32
)

var (
	ErrUnknownObject    = errors.New("unknown gpu object")
	ErrTooManyInstances = errors.New("instance count exceeds device capacity")
	ErrShaderCompile    = errors.New("shader compilation failed")
)

// Texture slots bound for each draw, in binding order.
const (
	SlotAlbedo = iota
	SlotSpecular
	SlotNormal
	SlotEmissive
	SlotRoughness
	SlotMetalness
	SlotAmbientOcclusion
	NumSlots
)

// DrawCall is one instanced draw: a mesh drawn len(Models) times with one
// program, texture set and light set.
type DrawCall struct {
	Mesh            MeshID
	Program         ProgramID
	Textures        [NumSlots]TextureID
	UVScale         mgl32.Vec2
	BackfaceCulling bool
	Lights          *lighting.Set
	Models          []mgl32.Mat4
	MVPs            []mgl32.Mat4
}

// Stats counts device activity.
type Stats struct {
	Meshes    int
	Textures  int
	Programs  int
	DrawCalls int
	Instances int
	Triangles int
}

// Device uploads mesh, texture and shader resources and issues draws.
type Device interface {
	UploadMesh(d *mesh.Data) (MeshID, error)
	LoadTexture(path string) (TextureID, error)
	CompileProgram(vertexPath, fragmentPath string) (ProgramID, error)

	DestroyMesh(id MeshID)
	DestroyTexture(id TextureID)
	DestroyProgram(id ProgramID)

	// DrawInstanced submits one draw. len(c.Models) must equal len(c.MVPs)
	// and not exceed MaxInstances.
	DrawInstanced(c DrawCall) error
	// MaxInstances is the largest instance count one draw accepts.
	MaxInstances() int

	Stats() Stats
	// ResetFrameStats clears the per-frame counters (draws, instances, triangles).
	ResetFrameStats()
}
