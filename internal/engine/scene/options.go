package scene

import (
	"github.com/Faultbox/warg/internal/engine/asset"
)

// Option configures a Graph.
type Option func(*Graph)

// WithImportFlags sets the post-processing flags used for imports.
func WithImportFlags(f asset.Flags) Option {
	return func(g *Graph) { g.flags = f }
}

// WithCapacity pre-sizes the node, mesh and material pools.
func WithCapacity(nodes, meshes, materials int) Option {
	return func(g *Graph) {
		g.nodeCap, g.meshCap, g.materialCap = nodes, meshes, materials
	}
}

// WithParseCache shares a parse cache between graphs. By default every
// graph owns its own.
func WithParseCache(c *asset.Cache) Option {
	return func(g *Graph) { g.parsed = c }
}
