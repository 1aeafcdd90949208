package scene

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/lighting"
)

// DefaultWorkers is the partition count used when none is configured.
const DefaultWorkers = 4

// RenderEntity is one drawable produced by a traversal.
type RenderEntity struct {
	Mesh      MeshHandle
	Material  MaterialHandle
	Lights    *lighting.Set
	Transform mgl32.Mat4
}

// Strategy selects how traversal workers accumulate entities.
type Strategy int

const (
	// LocalMerge gives every worker a private list, merged under one
	// lock acquisition per worker.
	LocalMerge Strategy = iota
	// SharedAccumulator appends every entity to the shared list under
	// the lock. It contends heavily and is kept for comparison only.
	SharedAccumulator
	// SingleThreaded walks the whole graph on the calling goroutine.
	SingleThreaded
)

func (s Strategy) String() string {
	switch s {
	case LocalMerge:
		return "local_merge"
	case SharedAccumulator:
		return "shared_accumulator"
	case SingleThreaded:
		return "single"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name as written in configuration.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range []Strategy{LocalMerge, SharedAccumulator, SingleThreaded} {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown traversal strategy %q", name)
}

// TraversalConfig selects a traversal driver.
type TraversalConfig struct {
	Workers  int
	Strategy Strategy
}

// Visit runs the traversal selected by cfg.
func (g *Graph) Visit(cfg TraversalConfig) []RenderEntity {
	if cfg.Strategy == SingleThreaded {
		return g.VisitSingleThreaded()
	}
	return g.VisitConcurrent(cfg.Workers, cfg.Strategy)
}

// VisitSingleThreaded flattens the graph in depth-first order.
func (g *Graph) VisitSingleThreaded() []RenderEntity {
	lights := g.Lights
	root := g.checkRoot()

	out := make([]RenderEntity, 0, g.capacityHint())
	emit := func(e RenderEntity) { out = append(out, e) }
	stack := root.Local()
	for _, c := range root.children {
		g.visit(c, g.root, stack, &lights, emit)
	}
	g.lastSize.Store(int64(len(out)))
	return out
}

// VisitConcurrent flattens the graph with the root's children split into
// workers contiguous ranges of equal size. Each full range runs on its own
// goroutine; the remainder is walked on the calling goroutine. Entity
// order is unspecified.
//
// A broken invariant found by any worker is re-raised on the calling
// goroutine after all workers have finished.
func (g *Graph) VisitConcurrent(workers int, strategy Strategy) []RenderEntity {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	invariant.Check(strategy == LocalMerge || strategy == SharedAccumulator,
		"scene.VisitConcurrent", "strategy %s is not concurrent", strategy)

	lights := g.Lights
	root := g.checkRoot()
	stack := root.Local()
	children := root.children

	var (
		mu  sync.Mutex
		out = make([]RenderEntity, 0, g.capacityHint())
	)
	walk := func(handles []NodeHandle) {
		if strategy == SharedAccumulator {
			emit := func(e RenderEntity) {
				mu.Lock()
				out = append(out, e)
				mu.Unlock()
			}
			for _, c := range handles {
				g.visit(c, g.root, stack, &lights, emit)
			}
			return
		}
		var local []RenderEntity
		emit := func(e RenderEntity) { local = append(local, e) }
		for _, c := range handles {
			g.visit(c, g.root, stack, &lights, emit)
		}
		mu.Lock()
		out = append(out, local...)
		mu.Unlock()
	}

	per := len(children) / workers
	var eg errgroup.Group
	if per > 0 {
		for i := 0; i < workers; i++ {
			part := children[i*per : (i+1)*per]
			eg.Go(func() (err error) {
				defer invariant.Recover(&err)
				walk(part)
				return nil
			})
		}
	}
	callerErr := func() (err error) {
		defer invariant.Recover(&err)
		walk(children[workers*per:])
		return nil
	}()

	err := eg.Wait()
	if callerErr != nil {
		err = callerErr
	}
	if err != nil {
		panic(err)
	}
	g.lastSize.Store(int64(len(out)))
	return out
}

// visit emits the parts of h and recurses into its children. m is the
// parent's stack matrix.
func (g *Graph) visit(h, parent NodeHandle, m mgl32.Mat4, lights *lighting.Set, emit func(RenderEntity)) {
	n := g.nodes.MustGet(h)
	invariant.Check(n.parent == parent, "scene.Visit",
		"node %q has parent %s, reached from %s", n.Name, n.parent, parent)

	stack := m.Mul4(n.Local())
	if len(n.parts) > 0 {
		final := stack.Mul4(n.importBasis)
		for _, p := range n.parts {
			invariant.Check(g.meshes.Contains(p.Mesh), "scene.Visit", "node %q: mesh %s out of range", n.Name, p.Mesh)
			invariant.Check(g.materials.Contains(p.Material), "scene.Visit", "node %q: material %s out of range", n.Name, p.Material)
			emit(RenderEntity{Mesh: p.Mesh, Material: p.Material, Lights: lights, Transform: final})
		}
	}
	for _, c := range n.children {
		g.visit(c, h, stack, lights, emit)
	}
}

// checkRoot asserts that the root carries no transform of its own.
func (g *Graph) checkRoot() *Node {
	root := g.nodes.MustGet(g.root)
	const op = "scene.Visit"
	invariant.Check(root.Name == RootName, op, "root is named %q", root.Name)
	invariant.Check(root.IsRoot(), op, "root has parent %s", root.parent)
	invariant.Check(root.Position == mgl32.Vec3{}, op, "root position is %v", root.Position)
	invariant.Check(root.Orientation == mgl32.Vec3{}, op, "root orientation is %v", root.Orientation)
	invariant.Check(root.importBasis == mgl32.Ident4(), op, "root import basis is not identity")
	return root
}

func (g *Graph) capacityHint() int {
	return int(float64(g.lastSize.Load()) * 1.5)
}
