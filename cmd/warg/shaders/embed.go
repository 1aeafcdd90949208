// Package shaders provides the GLSL sources the bench writes out when the
// configured shader directory has none.
package shaders

import _ "embed"

// VertexShader transforms instanced geometry.
//
//go:embed vertex_shader.vert
var VertexShader string

// FragmentShader shades with the entity's light set.
//
//go:embed fragment_shader.frag
var FragmentShader string

// EmissiveShader draws unlit albedo plus emissive.
//
//go:embed emissive.frag
var EmissiveShader string

// Files maps default shader file names to their sources.
var Files = map[string]string{
	"vertex_shader.vert":   VertexShader,
	"fragment_shader.frag": FragmentShader,
	"emissive.frag":        EmissiveShader,
}
