package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/resource"
	"github.com/Faultbox/warg/internal/engine/scene"
)

var errUsage = errors.New("usage")

func runInspect(cfg *config.Config, args []string) (err error) {
	defer invariant.Recover(&err)

	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	vs := fs.String("vs", "", "Vertex shader (default from config)")
	frag := fs.String("fs", "", "Fragment shader (default from config)")
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: warg inspect [-vs shader] [-fs shader] <asset>")
		return errUsage
	}
	path := fs.Arg(0)

	e, err := newEnv(cfg)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.provideBenchFiles(cfg); err != nil {
		return err
	}

	lib := resource.NewLibrary(gpu.NewHeadless(cfg.Scene.MaxInstances), e.textures, e.shaders)
	lib.DefaultVertexShader = cfg.Bench.VertexShader
	lib.DefaultFragmentShader = cfg.Bench.FragmentShader
	defer lib.Close()

	g := scene.New(lib, asset.NewYAMLImporter(e.models), scene.WithImportFlags(e.flags))
	defer g.Close()
	if _, err := g.AddImportedAsset(path, nil, g.Root(), *vs, *frag); err != nil {
		return err
	}

	fmt.Printf("Asset:     %s\n", path)
	fmt.Printf("Nodes:     %d\n", g.NodeCount()-1)
	fmt.Printf("Meshes:    %d\n", g.MeshCount())
	fmt.Printf("Materials: %d\n", g.MaterialCount())
	fmt.Println()
	fmt.Println("Hierarchy:")
	g.Walk(func(h scene.NodeHandle, n *scene.Node, depth int) {
		if n.IsRoot() {
			return
		}
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), n.Name)
		for _, p := range n.Parts() {
			m := g.Mesh(p.Mesh)
			mat := g.Material(p.Material)
			fmt.Printf("%s  - mesh %-16s %6d tris  albedo %s\n",
				strings.Repeat("  ", depth), m.Name, m.IndexCount/3, orNone(mat.Descriptor.Albedo))
		}
	})
	return nil
}

func runValidate(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: warg validate <asset>...")
		return errUsage
	}
	e, err := newEnv(cfg)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.provideBenchFiles(cfg); err != nil {
		return err
	}

	lib := resource.NewLibrary(gpu.NewHeadless(cfg.Scene.MaxInstances), e.textures, e.shaders)
	lib.DefaultVertexShader = cfg.Bench.VertexShader
	lib.DefaultFragmentShader = cfg.Bench.FragmentShader
	defer lib.Close()

	parsed := asset.NewCache(asset.NewYAMLImporter(e.models))
	failed := 0
	for _, path := range args {
		g := scene.New(lib, asset.NewYAMLImporter(e.models),
			scene.WithImportFlags(e.flags), scene.WithParseCache(parsed))
		err := validateOne(g, path)
		if err != nil {
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
		} else {
			fmt.Printf("ok   %s (%d nodes, %d meshes, %d materials)\n",
				path, g.NodeCount()-1, g.MeshCount(), g.MaterialCount())
		}
		g.Close()
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d assets failed validation", failed, len(args))
	}
	return nil
}

// validateOne imports path into g. Invariant violations are reported as
// errors so one bad asset does not stop the run.
func validateOne(g *scene.Graph, path string) (err error) {
	defer invariant.Recover(&err)
	top, err := g.AddImportedAsset(path, nil, g.Root(), "", "")
	if err != nil {
		return err
	}
	if !g.NodeExists(top) || g.Node(top).Parent() != g.Root() {
		return fmt.Errorf("%s: imported hierarchy is not attached to the root", path)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
