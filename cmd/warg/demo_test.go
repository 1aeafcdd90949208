package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/batch"
	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/resource"
	"github.com/Faultbox/warg/internal/engine/scene"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Assets.ModelDir = filepath.Join(dir, "models")
	cfg.Assets.TextureDir = filepath.Join(dir, "textures")
	cfg.Assets.ShaderDir = filepath.Join(dir, "shaders")
	cfg.Bench.Grid = 4
	return cfg
}

func TestProvideBenchFiles(t *testing.T) {
	cfg := testConfig(t)
	e, err := newEnv(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.provideBenchFiles(cfg); err != nil {
		t.Fatalf("provideBenchFiles: %v", err)
	}
	scratch := e.scratch
	for _, name := range []string{cfg.Bench.VertexShader, cfg.Bench.FragmentShader, "emissive.frag"} {
		if _, err := e.shaders.Resolve(name); err != nil {
			t.Errorf("shader %s not provided: %v", name, err)
		}
	}
	if _, err := asset.NewYAMLImporter(e.models).Import(cfg.Bench.Asset, e.flags); err != nil {
		t.Errorf("bench asset not importable: %v", err)
	}

	e.close()
	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Error("scratch dir not removed")
	}
}

func TestDemoFrame(t *testing.T) {
	cfg := testConfig(t)
	e, err := newEnv(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer e.close()
	if err := e.provideBenchFiles(cfg); err != nil {
		t.Fatal(err)
	}

	dev := gpu.NewHeadless(cfg.Scene.MaxInstances)
	lib := resource.NewLibrary(dev, e.textures, e.shaders)
	lib.DefaultVertexShader = cfg.Bench.VertexShader
	lib.DefaultFragmentShader = cfg.Bench.FragmentShader
	g := scene.New(lib, asset.NewYAMLImporter(e.models), scene.WithImportFlags(e.flags))
	defer g.Close()

	d, err := buildDemo(g, cfg)
	if err != nil {
		t.Fatalf("buildDemo: %v", err)
	}
	if len(d.placements) != 16 {
		t.Fatalf("expected 16 placements, got %d", len(d.placements))
	}
	if st := g.ImportStats(); st.ShadedMisses != 1 || st.ShadedHits != 15 {
		t.Errorf("placements not deduplicated: %+v", st)
	}
	d.update(1.5)
	if g.Lights.Count != 3 {
		t.Errorf("expected 3 lights, got %d", g.Lights.Count)
	}

	// 6 primitives plus 3 meshes per chest
	const entities = 6 + 16*3
	for _, s := range []scene.Strategy{scene.SingleThreaded, scene.LocalMerge, scene.SharedAccumulator} {
		es := g.Visit(scene.TraversalConfig{Workers: 4, Strategy: s})
		if len(es) != entities {
			t.Errorf("%s: expected %d entities, got %d", s, entities, len(es))
		}
	}

	es := g.VisitSingleThreaded()
	instances := batch.New(cfg.Scene.MaxInstances, batch.PolicyReject).Build(es, mgl32.Ident4())
	// every primitive has its own pool entries; the chests share three
	if len(instances) != 6+3 {
		t.Errorf("expected 9 buckets, got %d", len(instances))
	}
	if err := batch.Submit(dev, batch.DrawCalls(instances, g)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if dev.Stats().Instances != entities {
		t.Errorf("expected %d instances drawn, got %d", entities, dev.Stats().Instances)
	}
}
