package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/config"
	"github.com/Faultbox/warg/internal/engine/lighting"
	"github.com/Faultbox/warg/internal/engine/mesh"
	"github.com/Faultbox/warg/internal/engine/resource"
	"github.com/Faultbox/warg/internal/engine/scene"
)

// demo is the bench scene: a ground plane, an orbiting star, planet and
// moon, a grid of imported assets and two lamp markers.
type demo struct {
	g *scene.Graph

	ground             scene.NodeHandle
	star, planet, moon scene.NodeHandle
	lamp, spotMarker   scene.NodeHandle
	placements         []scene.NodeHandle

	extent float32
}

func buildDemo(g *scene.Graph, cfg *config.Config) (*demo, error) {
	d := &demo{g: g}
	root := g.Root()
	vs, fs := cfg.Bench.VertexShader, cfg.Bench.FragmentShader

	ground := resource.DefaultDescriptor()
	ground.Albedo = "color(0.32,0.36,0.28,1)"
	ground.VertexShader, ground.FragmentShader = vs, fs
	ground.UVScale = mgl32.Vec2{30, 30}

	crate := resource.DefaultDescriptor()
	crate.Albedo = "color(0.6,0.45,0.3,1)"
	crate.Emissive = "color(0.08,0.04,0,1)"
	crate.VertexShader, crate.FragmentShader = vs, fs
	crate.UVScale = mgl32.Vec2{2, 2}

	lamp := crate.Override(resource.MaterialDescriptor{
		Albedo:          "color(1,1,1,1)",
		Emissive:        "color(1,0,1,1)",
		VertexShader:    vs,
		FragmentShader:  "emissive.frag",
		UVScale:         mgl32.Vec2{1, 1},
		BackfaceCulling: true,
	})

	var err error
	if d.ground, err = g.AddPrimitive(mesh.Plane, "ground", ground, root, nil); err != nil {
		return nil, err
	}
	if d.star, err = g.AddPrimitive(mesh.Cube, "star", crate, root, nil); err != nil {
		return nil, err
	}
	if d.planet, err = g.AddPrimitive(mesh.Cube, "planet", crate, d.star, nil); err != nil {
		return nil, err
	}
	if d.moon, err = g.AddPrimitive(mesh.Cube, "moon", crate, d.planet, nil); err != nil {
		return nil, err
	}
	if d.lamp, err = g.AddPrimitive(mesh.Cube, "lamp", lamp, root, nil); err != nil {
		return nil, err
	}
	if d.spotMarker, err = g.AddPrimitive(mesh.Cube, "spot marker", lamp, root, nil); err != nil {
		return nil, err
	}

	n := cfg.Bench.Grid
	for y := -n / 2; y < n-n/2; y++ {
		for x := -n / 2; x < n-n/2; x++ {
			basis := mgl32.Translate3D(float32(x), float32(y), 0).Mul4(mgl32.Scale3D(0.25, 0.25, 0.25))
			h, err := g.AddImportedAsset(cfg.Bench.Asset, &basis, root, vs, fs)
			if err != nil {
				return nil, err
			}
			d.placements = append(d.placements, h)
		}
	}
	d.extent = max(float32(n)/2, 10)

	gn := g.Node(d.ground)
	gn.Scale = mgl32.Vec3{4 * d.extent, 4 * d.extent, 1}
	return d, nil
}

// update animates the scene to time t in seconds and rebuilds the light set.
func (d *demo) update(t float32) {
	g := d.g
	sin := func(v float32) float32 { return float32(math.Sin(float64(v))) }
	cos := func(v float32) float32 { return float32(math.Cos(float64(v))) }

	star := g.Node(d.star)
	star.Scale = mgl32.Vec3{0.85, 0.85, 0.85}
	star.Position = mgl32.Vec3{10 * cos(t/10), 0, 3.25}

	planet := g.Node(d.planet)
	planet.Scale = mgl32.Vec3{0.35, 0.35, 0.35}
	planet.Position = mgl32.Vec3{cos(t / 5), sin(t / 5), 0}.Mul(4)
	planet.Orientation = mgl32.Vec3{0, 0, t}

	moon := g.Node(d.moon)
	moon.Scale = mgl32.Vec3{0.25, 0.25, 0.25}
	moon.Position = mgl32.Vec3{cos(t / 0.75), sin(t / 0.75), 0}.Mul(1.5)
	moon.Orientation = mgl32.Vec3{0, 0, t / 0.1}

	spotPos := mgl32.Vec3{7 * cos(t*0.72), 7 * sin(t*0.72), 6.25}
	lampPos := mgl32.Vec3{3 * cos(t*0.12), 3 * sin(t*0.03), 0.5}
	g.Node(d.spotMarker).Position = spotPos
	g.Node(d.spotMarker).Scale = mgl32.Vec3{0.2, 0.2, 0.2}
	g.Node(d.lamp).Position = lampPos
	g.Node(d.lamp).Scale = mgl32.Vec3{0.1, 0.1, 0.1}

	ls := &g.Lights
	ls.Clear()
	green := lighting.Point(mgl32.Vec3{-3, 3, 1.5}, mgl32.Vec3{0.1, 1, 0.1}.Mul(1.1), 0.22, 0.2)
	green.Ambient = 0.015
	ls.Add(green)
	ls.Add(lighting.Light{
		Position:    spotPos,
		Direction:   mgl32.Vec3{0, 0, -1},
		Color:       mgl32.Vec3{0.8, 1, 0.8}.Mul(320),
		Attenuation: mgl32.Vec3{1, 0, 0},
		Ambient:     0.01,
		ConeAngle:   0.11,
		Type:        lighting.Spot,
	})
	magenta := lighting.Point(lampPos, mgl32.Vec3{1, 0.05, 1.05}.Mul(51), 0.7, 1.8)
	magenta.Ambient = 0.0026
	ls.Add(magenta)

	day := mgl32.Clamp(sin(t/3), -1, 1)/2 + 0.5
	ls.AdditionalAmbient = mgl32.Vec3{0.76, 0.76, 0.76}.Mul(day)
}
