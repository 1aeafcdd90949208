package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/batch"
	"github.com/Faultbox/warg/internal/engine/camera"
	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/resource"
	"github.com/Faultbox/warg/internal/engine/scene"
	"github.com/Faultbox/warg/internal/engine/timer"
	"github.com/Faultbox/warg/internal/logger"
)

const frameStep = float32(1.0 / 60.0)

func runBench(cfg *config.Config) (err error) {
	defer invariant.Recover(&err)
	log := logger.Named("bench")

	strategy, err := scene.ParseStrategy(cfg.Scene.Strategy)
	if err != nil {
		return err
	}
	policy, err := batch.ParsePolicy(cfg.Scene.Overflow)
	if err != nil {
		return err
	}

	e, err := newEnv(cfg)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.provideBenchFiles(cfg); err != nil {
		return err
	}

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.close()

	lib := resource.NewLibrary(be.dev, e.textures, e.shaders)
	lib.DefaultVertexShader = cfg.Bench.VertexShader
	lib.DefaultFragmentShader = cfg.Bench.FragmentShader
	defer lib.Close()

	build := timer.New(1)
	build.Start()
	g := scene.New(lib, asset.NewYAMLImporter(e.models), scene.WithImportFlags(e.flags))
	defer g.Close()
	d, err := buildDemo(g, cfg)
	if err != nil {
		return err
	}
	build.Stop()

	imp := g.ImportStats()
	log.Info("scene built",
		zap.Int("nodes", g.NodeCount()),
		zap.Int("meshes", g.MeshCount()),
		zap.Int("materials", g.MaterialCount()),
		zap.Int("shaded_hits", imp.ShadedHits),
		zap.Int("shaded_misses", imp.ShadedMisses),
		zap.Int("parsed", imp.Parsed),
		zap.Duration("took", build.Last()),
	)

	cam := camera.New(mgl32.Vec3{3.3, 2.3, 1.4}, mgl32.Vec3{}, cfg.Graphics.VFov, 1, cfg.Graphics.Near, cfg.Graphics.Far)
	orbit := camera.NewOrbit(mgl32.Vec3{}, d.extent)
	orbit.Fit(mgl32.Vec3{-d.extent, -d.extent, 0}, mgl32.Vec3{d.extent, d.extent, 4})

	maxInstances := min(cfg.Scene.MaxInstances, be.dev.MaxInstances())
	batcher := batch.New(maxInstances, policy)
	traversal := scene.TraversalConfig{Workers: cfg.Scene.Workers, Strategy: strategy}

	samples := max(cfg.Bench.Frames, 1)
	var (
		frameT    = timer.New(samples)
		traverseT = timer.New(samples)
		batchT    = timer.New(samples)
		drawT     = timer.New(samples)

		entities, buckets int
	)

	log.Info("running bench",
		zap.Int("frames", cfg.Bench.Frames),
		zap.Stringer("strategy", strategy),
		zap.Int("workers", cfg.Scene.Workers),
		zap.Stringer("overflow", policy),
		zap.Int("max_instances", maxInstances),
		zap.String("backend", cfg.Graphics.Backend),
	)

	manual := false
	for frame := 0; frame < cfg.Bench.Frames; frame++ {
		in := be.poll()
		if in.Quit {
			log.Info("stopped by user", zap.Int("frame", frame))
			break
		}
		if in.Active() {
			orbit.Drag(in.DragX, in.DragY)
			orbit.Zoom(in.Wheel)
			manual = true
		}

		t := float32(frame) * frameStep
		frameT.Start()

		d.update(t)
		if !manual {
			orbit.Yaw = t * 0.1
		}
		orbit.Apply(cam)
		w, h := be.beginFrame()
		cam.Resize(w, h)

		traverseT.Start()
		es := g.Visit(traversal)
		traverseT.Stop()

		batchT.Start()
		instances := batcher.Build(es, cam.ViewProjection())
		batchT.Stop()

		drawT.Start()
		be.dev.ResetFrameStats()
		if err := batch.Submit(be.dev, batch.DrawCalls(instances, g)); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		drawT.Stop()

		entities, buckets = len(es), len(instances)
		be.endFrame()
		frameT.Stop()

		log.Debug("frame",
			zap.Int("frame", frame),
			zap.Int("entities", entities),
			zap.Int("buckets", buckets),
			zap.Duration("took", frameT.Last()),
		)
	}

	st := be.dev.Stats()
	log.Info("bench finished",
		zap.Int("entities", entities),
		zap.Int("buckets", buckets),
		zap.Int("draw_calls", st.DrawCalls),
		zap.Int("instances", st.Instances),
		zap.Int("triangles", st.Triangles),
		frameT.Field("frame"),
		traverseT.Field("traverse"),
		batchT.Field("batch"),
		drawT.Field("draw"),
	)

	for _, r := range []struct {
		name string
		t    *timer.Timer
	}{
		{"frame", frameT},
		{"traverse", traverseT},
		{"batch", batchT},
		{"draw", drawT},
	} {
		fmt.Printf("%s (%s)\n%s\n", r.name, strategy, r.t.Report())
	}
	return nil
}
