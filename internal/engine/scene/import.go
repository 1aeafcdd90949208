package scene

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/resource"
)

// ImportKey identifies one shaded import: an asset combined with a shader
// pair.
type ImportKey struct {
	Path           string
	VertexShader   string
	FragmentShader string
}

// BaseIndices locate an import's first mesh and first material in the
// graph pools. Asset-local indices are offsets from these.
type BaseIndices struct {
	FirstMesh     uint32
	FirstMaterial uint32
}

// ImportStats reports the hit rates of both import caches.
type ImportStats struct {
	ShadedHits   int
	ShadedMisses int
	ParseHits    int
	ParseMisses  int
	Parsed       int
}

// ImportStats returns the current cache statistics.
func (g *Graph) ImportStats() ImportStats {
	hits, misses := g.parsed.Stats()
	return ImportStats{
		ShadedHits:   g.shadedHits,
		ShadedMisses: g.shadedMisses,
		ParseHits:    hits,
		ParseMisses:  misses,
		Parsed:       g.parsed.Len(),
	}
}

// AddImportedAsset mirrors the node tree of the asset at path under
// parent and returns the handle of the new subtree's top node.
//
// The asset file is parsed once per graph. Its meshes and materials are
// loaded once per shader pair; later imports with the same pair reuse the
// pool entries. importBasis applies to every mirrored node's own parts.
func (g *Graph) AddImportedAsset(path string, importBasis *mgl32.Mat4, parent NodeHandle, vertexShader, fragmentShader string) (NodeHandle, error) {
	g.mustExist("scene.AddImportedAsset", parent)

	s, err := g.parsed.Load(path, g.flags)
	if err != nil {
		return NodeHandle{}, fmt.Errorf("import %s: %w", path, err)
	}
	if s.Root == nil {
		return NodeHandle{}, fmt.Errorf("import %s: %w", path, asset.ErrNoRoot)
	}

	key := ImportKey{Path: s.Path, VertexShader: vertexShader, FragmentShader: fragmentShader}
	base, ok := g.shaded[key]
	if ok {
		g.shadedHits++
	} else {
		g.shadedMisses++
		base, err = g.loadShaded(s, vertexShader, fragmentShader)
		if err != nil {
			return NodeHandle{}, fmt.Errorf("import %s: %w", path, err)
		}
		g.shaded[key] = base
	}

	top := newNode(fmt.Sprintf("ROOT FOR: %s %s", path, s.Root.Name), parent, importBasis)
	top.basis = s.Root.Transform
	top.parts = g.parts(s, s.Root, base)
	h := g.attach(top)
	for _, c := range s.Root.Children {
		g.mirror(s, c, h, base, importBasis)
	}

	g.log.Debug("imported asset",
		zap.String("path", path),
		zap.Bool("cached", ok),
		zap.Uint32("first_mesh", base.FirstMesh),
		zap.Uint32("first_material", base.FirstMaterial),
	)
	return h, nil
}

// loadShaded loads every mesh and material of s and appends them to the
// pools. Nothing is appended unless all loads succeed.
func (g *Graph) loadShaded(s *asset.Scene, vertexShader, fragmentShader string) (base BaseIndices, err error) {
	meshes := make([]resource.Mesh, 0, len(s.Meshes))
	materials := make([]resource.Material, 0, len(s.Materials))
	defer func() {
		if err == nil {
			return
		}
		for _, m := range meshes {
			g.lib.ReleaseMesh(m)
		}
		for _, m := range materials {
			g.lib.ReleaseMaterial(m)
		}
	}()

	for i := range s.Meshes {
		uid := fmt.Sprintf("%s#%d", s.Path, i)
		m, err := g.lib.Mesh(s.Meshes[i].MeshData(uid))
		if err != nil {
			return base, err
		}
		meshes = append(meshes, m)
	}
	dir := filepath.Dir(s.Path)
	for i := range s.Materials {
		desc := resource.DescriptorFromAsset(&s.Materials[i], dir, vertexShader, fragmentShader)
		m, err := g.lib.Material(desc)
		if err != nil {
			return base, fmt.Errorf("material %d (%s): %w", i, s.Materials[i].Name, err)
		}
		materials = append(materials, m)
	}

	base = BaseIndices{
		FirstMesh:     uint32(g.meshes.Len()),
		FirstMaterial: uint32(g.materials.Len()),
	}
	for _, m := range meshes {
		g.meshes.Add(m)
	}
	for _, m := range materials {
		g.materials.Add(m)
	}
	return base, nil
}

// mirror copies the asset node n and its descendants under parent.
func (g *Graph) mirror(s *asset.Scene, n *asset.Node, parent NodeHandle, base BaseIndices, importBasis *mgl32.Mat4) {
	node := newNode(n.Name, parent, importBasis)
	node.basis = n.Transform
	node.parts = g.parts(s, n, base)
	h := g.attach(node)
	for _, c := range n.Children {
		g.mirror(s, c, h, base, importBasis)
	}
}

func (g *Graph) parts(s *asset.Scene, n *asset.Node, base BaseIndices) []Part {
	if len(n.Meshes) == 0 {
		return nil
	}
	parts := make([]Part, 0, len(n.Meshes))
	for _, idx := range n.Meshes {
		invariant.Check(idx >= 0 && idx < len(s.Meshes), "scene.AddImportedAsset",
			"node %q references mesh %d of %d", n.Name, idx, len(s.Meshes))
		mh, err := g.meshes.HandleAt(base.FirstMesh + uint32(idx))
		if err != nil {
			invariant.Fail("scene.AddImportedAsset", "mesh %d: %v", idx, err)
		}
		matIdx := s.Meshes[idx].MaterialIndex
		mat, err := g.materials.HandleAt(base.FirstMaterial + uint32(matIdx))
		if err != nil {
			invariant.Fail("scene.AddImportedAsset", "material %d: %v", matIdx, err)
		}
		parts = append(parts, Part{Mesh: mh, Material: mat})
	}
	return parts
}
