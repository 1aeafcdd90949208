// Package scene implements the scene graph: a tree of nodes stored in
// append-only pools, the caches that let repeated imports share meshes and
// materials, and the traversal that flattens the tree into render entities.
//
// Construction (Add*) is single-writer and must not run concurrently with
// a traversal. Traversals only read the pools.
package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/lighting"
	"github.com/Faultbox/warg/internal/engine/mesh"
	"github.com/Faultbox/warg/internal/engine/pool"
	"github.com/Faultbox/warg/internal/engine/resource"
	"github.com/Faultbox/warg/internal/logger"
)

// RootName is the name of every graph's root node.
const RootName = "SCENE_GRAPH_ROOT"

// Graph is a scene graph and the resource pools its nodes reference.
type Graph struct {
	nodes     *pool.Pool[Node]
	meshes    *pool.Pool[resource.Mesh]
	materials *pool.Pool[resource.Material]
	root      NodeHandle

	// Lights is the light set attached to every emitted render entity.
	Lights lighting.Set

	lib      *resource.Library
	importer asset.Importer
	parsed   *asset.Cache
	ownCache bool
	shaded   map[ImportKey]BaseIndices
	flags    asset.Flags

	shadedHits   int
	shadedMisses int

	nodeCap, meshCap, materialCap int
	lastSize                      atomic.Int64

	log *zap.Logger
}

// New creates a graph holding only the root node. Meshes and materials are
// loaded through lib; imported assets are parsed by importer.
func New(lib *resource.Library, importer asset.Importer, opts ...Option) *Graph {
	g := &Graph{
		lib:         lib,
		importer:    importer,
		shaded:      make(map[ImportKey]BaseIndices),
		flags:       asset.DefaultFlags,
		nodeCap:     1000,
		meshCap:     256,
		materialCap: 256,
		log:         logger.Named("scene"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.parsed == nil {
		g.parsed = asset.NewCache(importer)
		g.ownCache = true
	}
	g.nodes = pool.New[Node](g.nodeCap)
	g.meshes = pool.New[resource.Mesh](g.meshCap)
	g.materials = pool.New[resource.Material](g.materialCap)

	root := newNode(RootName, NodeHandle{}, nil)
	root.children = make([]NodeHandle, 0, g.nodeCap)
	g.root = g.nodes.Add(root)
	return g
}

// Root returns the root node handle.
func (g *Graph) Root() NodeHandle { return g.root }

// Node resolves h. The pointer is invalidated by the next Add* call.
// Panics if h is not a node of this graph.
func (g *Graph) Node(h NodeHandle) *Node { return g.nodes.MustGet(h) }

// NodeExists reports whether h is a node of this graph.
func (g *Graph) NodeExists(h NodeHandle) bool { return g.nodes.Contains(h) }

// NodeCount returns the number of nodes including the root.
func (g *Graph) NodeCount() int { return g.nodes.Len() }

// Mesh resolves a mesh handle.
func (g *Graph) Mesh(h MeshHandle) *resource.Mesh { return g.meshes.MustGet(h) }

// Material resolves a material handle.
func (g *Graph) Material(h MaterialHandle) *resource.Material { return g.materials.MustGet(h) }

// MeshCount returns the size of the mesh pool.
func (g *Graph) MeshCount() int { return g.meshes.Len() }

// MaterialCount returns the size of the material pool.
func (g *Graph) MaterialCount() int { return g.materials.Len() }

// AddPrimitive attaches a new node drawing a built-in primitive.
func (g *Graph) AddPrimitive(p mesh.Primitive, name string, desc resource.MaterialDescriptor, parent NodeHandle, importBasis *mgl32.Mat4) (NodeHandle, error) {
	g.mustExist("scene.AddPrimitive", parent)
	data, err := mesh.Load(p)
	if err != nil {
		return NodeHandle{}, err
	}
	return g.addSingle(data, desc, name, parent, importBasis)
}

// AddMesh attaches a new node drawing data with a material built from
// desc. The mesh and material get their own pool entries; the import
// caches are not consulted.
func (g *Graph) AddMesh(data *mesh.Data, desc resource.MaterialDescriptor, name string, parent NodeHandle, importBasis *mgl32.Mat4) (NodeHandle, error) {
	g.mustExist("scene.AddMesh", parent)
	return g.addSingle(data, desc, name, parent, importBasis)
}

func (g *Graph) addSingle(data *mesh.Data, desc resource.MaterialDescriptor, name string, parent NodeHandle, importBasis *mgl32.Mat4) (NodeHandle, error) {
	m, err := g.lib.Mesh(data)
	if err != nil {
		return NodeHandle{}, err
	}
	mat, err := g.lib.Material(desc)
	if err != nil {
		g.lib.ReleaseMesh(m)
		return NodeHandle{}, err
	}

	n := newNode(name, parent, importBasis)
	n.parts = []Part{{Mesh: g.meshes.Add(m), Material: g.materials.Add(mat)}}
	return g.attach(n), nil
}

// attach appends n to the node pool and links it under its parent.
func (g *Graph) attach(n Node) NodeHandle {
	parent := n.parent
	h := g.nodes.Add(n)
	p := g.nodes.MustGet(parent)
	p.children = append(p.children, h)
	return h
}

func (g *Graph) mustExist(op string, h NodeHandle) {
	invariant.Check(g.nodes.Contains(h), op, "parent %s does not exist", h)
}

// Walk visits every node depth-first, pre-order, starting at the root.
// fn must not add nodes.
func (g *Graph) Walk(fn func(h NodeHandle, n *Node, depth int)) {
	g.walk(g.root, 0, fn)
}

func (g *Graph) walk(h NodeHandle, depth int, fn func(NodeHandle, *Node, int)) {
	n := g.nodes.MustGet(h)
	fn(h, n, depth)
	for _, c := range n.children {
		g.walk(c, depth+1, fn)
	}
}

// Close releases every mesh and material reference held by the pools and
// drops the import caches. A parse cache passed with WithParseCache is left
// intact. The graph must not be used afterwards.
func (g *Graph) Close() {
	g.meshes.Each(func(_ MeshHandle, m *resource.Mesh) bool {
		g.lib.ReleaseMesh(*m)
		return true
	})
	g.materials.Each(func(_ MaterialHandle, m *resource.Material) bool {
		g.lib.ReleaseMaterial(*m)
		return true
	})
	if g.ownCache {
		g.parsed.Clear()
	}
	clear(g.shaded)
}
