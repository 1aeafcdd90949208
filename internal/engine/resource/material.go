// Package resource turns mesh data and material descriptors into shared
// GPU resources.
package resource

import (
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/texture"
)

// MaterialDescriptor names the textures and shaders of a material. Empty
// texture paths mean "no texture"; empty shader paths select the
// library's default program.
type MaterialDescriptor struct {
	Albedo           string
	Roughness        string
	Specular         string
	Metalness        string
	Tangent          string
	Normal           string
	AmbientOcclusion string
	Emissive         string
	VertexShader     string
	FragmentShader   string
	UVScale          mgl32.Vec2
	BackfaceCulling  bool
}

// DefaultDescriptor returns a descriptor with unit UV scale and culling on.
func DefaultDescriptor() MaterialDescriptor {
	return MaterialDescriptor{UVScale: mgl32.Vec2{1, 1}, BackfaceCulling: true}
}

// Override copies every non-empty texture path of o over d. Shader paths,
// UV scale and culling always come from o.
func (d MaterialDescriptor) Override(o MaterialDescriptor) MaterialDescriptor {
	for _, f := range []struct{ dst, src *string }{
		{&d.Albedo, &o.Albedo},
		{&d.Roughness, &o.Roughness},
		{&d.Specular, &o.Specular},
		{&d.Metalness, &o.Metalness},
		{&d.Tangent, &o.Tangent},
		{&d.Normal, &o.Normal},
		{&d.AmbientOcclusion, &o.AmbientOcclusion},
		{&d.Emissive, &o.Emissive},
	} {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
	d.VertexShader = o.VertexShader
	d.FragmentShader = o.FragmentShader
	d.UVScale = o.UVScale
	d.BackfaceCulling = o.BackfaceCulling
	return d
}

// DescriptorFromAsset builds the descriptor of an imported material.
// Texture file names are relative to the asset's directory.
func DescriptorFromAsset(m *asset.Material, assetDir, vertexShader, fragmentShader string) MaterialDescriptor {
	d := DefaultDescriptor()
	d.VertexShader = vertexShader
	d.FragmentShader = fragmentShader
	rel := func(slot asset.TextureSlot) string {
		p := m.Texture(slot)
		if p == "" || texture.IsColor(p) || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(assetDir, p)
	}
	d.Albedo = rel(asset.SlotDiffuse)
	d.Specular = rel(asset.SlotSpecular)
	d.Emissive = rel(asset.SlotEmissive)
	d.Normal = rel(asset.SlotNormals)
	d.Roughness = rel(asset.SlotShininess)
	d.AmbientOcclusion = rel(asset.SlotLightmap)
	return d
}

// texturePaths lists the descriptor's textures in gpu slot order.
func (d *MaterialDescriptor) texturePaths() [gpu.NumSlots]string {
	var p [gpu.NumSlots]string
	p[gpu.SlotAlbedo] = d.Albedo
	p[gpu.SlotSpecular] = d.Specular
	p[gpu.SlotNormal] = d.Normal
	p[gpu.SlotEmissive] = d.Emissive
	p[gpu.SlotRoughness] = d.Roughness
	p[gpu.SlotMetalness] = d.Metalness
	p[gpu.SlotAmbientOcclusion] = d.AmbientOcclusion
	return p
}

// Material is a loaded material: GPU textures plus a shader program.
type Material struct {
	Descriptor MaterialDescriptor
	Textures   [gpu.NumSlots]gpu.TextureID
	Program    gpu.ProgramID

	texKeys    [gpu.NumSlots]string
	programKey programKey
}

// Apply fills the material part of a draw call.
func (m *Material) Apply(c *gpu.DrawCall) {
	c.Program = m.Program
	c.Textures = m.Textures
	c.UVScale = m.Descriptor.UVScale
	c.BackfaceCulling = m.Descriptor.BackfaceCulling
}

// Mesh is a mesh uploaded to the GPU.
type Mesh struct {
	Name       string
	UniqueID   string
	GPU        gpu.MeshID
	IndexCount int
}
