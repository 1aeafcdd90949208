package batch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/assets"
	"github.com/Faultbox/warg/internal/engine/asset"
	"github.com/Faultbox/warg/internal/engine/gpu"
	"github.com/Faultbox/warg/internal/engine/invariant"
	"github.com/Faultbox/warg/internal/engine/lighting"
	"github.com/Faultbox/warg/internal/engine/mesh"
	"github.com/Faultbox/warg/internal/engine/pool"
	"github.com/Faultbox/warg/internal/engine/resource"
	"github.com/Faultbox/warg/internal/engine/scene"
)

type handles struct {
	meshes    []scene.MeshHandle
	materials []scene.MaterialHandle
}

func newHandles(n int) handles {
	mp := pool.New[resource.Mesh](n)
	tp := pool.New[resource.Material](n)
	var h handles
	for i := 0; i < n; i++ {
		h.meshes = append(h.meshes, mp.Add(resource.Mesh{}))
		h.materials = append(h.materials, tp.Add(resource.Material{}))
	}
	return h
}

func entity(m scene.MeshHandle, mat scene.MaterialHandle, lights *lighting.Set, x float32) scene.RenderEntity {
	return scene.RenderEntity{Mesh: m, Material: mat, Lights: lights, Transform: mgl32.Translate3D(x, 0, 0)}
}

func mustPanicViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		var v *invariant.Violation
		if !ok || !errors.As(err, &v) {
			t.Fatalf("expected *invariant.Violation panic, got %v", r)
		}
	}()
	fn()
}

func TestInstanceGrouping(t *testing.T) {
	h := newHandles(4)
	lights := &lighting.Set{}
	a, b := h.meshes[0], h.materials[1]
	c, d := h.meshes[2], h.materials[3]

	entities := []scene.RenderEntity{
		entity(a, b, lights, 0),
		entity(c, d, lights, 1),
		entity(a, b, lights, 2),
		entity(a, b, lights, 3),
		entity(c, d, lights, 4),
	}
	out := New(0, PolicyReject).Build(entities, mgl32.Ident4())

	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	tests := []struct {
		mesh  scene.MeshHandle
		mat   scene.MaterialHandle
		count int
		xs    []float32
	}{
		{a, b, 3, []float32{0, 2, 3}},
		{c, d, 2, []float32{1, 4}},
	}
	for i, tt := range tests {
		in := out[i]
		if in.Mesh != tt.mesh || in.Material != tt.mat {
			t.Errorf("bucket %d: wrong identity", i)
		}
		if in.Len() != tt.count || len(in.MVPs) != tt.count {
			t.Errorf("bucket %d: expected %d instances, got %d/%d", i, tt.count, len(in.Models), len(in.MVPs))
		}
		for j, x := range tt.xs {
			if in.Models[j].Col(3).X() != x {
				t.Errorf("bucket %d instance %d: expected x=%v, got %v", i, j, x, in.Models[j].Col(3).X())
			}
		}
	}
}

func TestMVP(t *testing.T) {
	h := newHandles(1)
	viewProj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100).Mul4(mgl32.Translate3D(0, 0, -5))
	e := entity(h.meshes[0], h.materials[0], nil, 2)

	out := New(10, PolicyReject).Build([]scene.RenderEntity{e}, viewProj)
	if !out[0].MVPs[0].ApproxEqualThreshold(viewProj.Mul4(e.Transform), 1e-5) {
		t.Error("mvp is not viewProj * model")
	}
}

func TestIdentityNotStructure(t *testing.T) {
	h := newHandles(2)
	entities := []scene.RenderEntity{
		entity(h.meshes[0], h.materials[0], nil, 0),
		entity(h.meshes[1], h.materials[0], nil, 0),
		entity(h.meshes[0], h.materials[1], nil, 0),
	}
	if got := len(New(10, PolicyReject).Build(entities, mgl32.Ident4())); got != 3 {
		t.Errorf("expected 3 buckets, got %d", got)
	}
}

func TestLightSetInvariant(t *testing.T) {
	h := newHandles(1)
	sun := &lighting.Set{}
	sun.Add(lighting.Sun(0, 45, mgl32.Vec3{1, 1, 1}, 0.1))
	dark := &lighting.Set{}

	b := New(10, PolicyReject)
	b.Add(entity(h.meshes[0], h.materials[0], sun, 0), mgl32.Ident4())
	mustPanicViolation(t, func() {
		b.Add(entity(h.meshes[0], h.materials[0], dark, 1), mgl32.Ident4())
	})

	copied := *sun
	b.Add(entity(h.meshes[0], h.materials[0], &copied, 2), mgl32.Ident4())
	if b.Instances()[0].Len() != 2 {
		t.Error("equal light sets at different addresses were not grouped")
	}
}

func TestCapacityBoundary(t *testing.T) {
	h := newHandles(1)
	fill := func(n int) []scene.RenderEntity {
		es := make([]scene.RenderEntity, n)
		for i := range es {
			es[i] = entity(h.meshes[0], h.materials[0], nil, float32(i))
		}
		return es
	}

	t.Run("exactly max", func(t *testing.T) {
		out := New(DefaultMaxInstances, PolicyReject).Build(fill(DefaultMaxInstances), mgl32.Ident4())
		if len(out) != 1 || out[0].Len() != DefaultMaxInstances {
			t.Errorf("expected one full bucket, got %d buckets", len(out))
		}
	})
	t.Run("reject", func(t *testing.T) {
		b := New(DefaultMaxInstances, PolicyReject)
		mustPanicViolation(t, func() { b.Build(fill(DefaultMaxInstances+1), mgl32.Ident4()) })
	})
	t.Run("split", func(t *testing.T) {
		out := New(DefaultMaxInstances, PolicySplit).Build(fill(2*DefaultMaxInstances+1), mgl32.Ident4())
		if len(out) != 3 {
			t.Fatalf("expected 3 buckets, got %d", len(out))
		}
		for i, expect := range []int{DefaultMaxInstances, DefaultMaxInstances, 1} {
			if out[i].Len() != expect {
				t.Errorf("bucket %d: expected %d, got %d", i, expect, out[i].Len())
			}
		}
		if out[2].Models[0].Col(3).X() != float32(2*DefaultMaxInstances) {
			t.Error("overflow bucket does not hold the last entity")
		}
	})
}

func TestBuildResets(t *testing.T) {
	h := newHandles(1)
	b := New(10, PolicyReject)
	es := []scene.RenderEntity{entity(h.meshes[0], h.materials[0], nil, 0)}

	b.Build(es, mgl32.Ident4())
	out := b.Build(es, mgl32.Ident4())
	if len(out) != 1 || out[0].Len() != 1 {
		t.Errorf("Build did not reset previous frame: %d buckets", len(out))
	}
	b.Reset()
	if len(b.Instances()) != 0 {
		t.Error("Reset left buckets behind")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		expect  Policy
		wantErr bool
	}{
		{"reject", PolicyReject, false},
		{"split", PolicySplit, false},
		{"grow", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.expect {
			t.Errorf("ParsePolicy(%q) = %s, want %s", tt.in, got, tt.expect)
		}
	}
}

func TestDrawCallsSubmit(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"basic.vert", "basic.frag"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("void main() {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	dev := gpu.NewHeadless(DefaultMaxInstances)
	files := assets.NewManager(dir)
	lib := resource.NewLibrary(dev, files, files)
	lib.DefaultVertexShader = "basic.vert"
	lib.DefaultFragmentShader = "basic.frag"
	g := scene.New(lib, asset.NewYAMLImporter(files))

	desc := resource.DefaultDescriptor()
	desc.Albedo = "color(1,0,0,1)"
	for i := 0; i < 5; i++ {
		p := mesh.Cube
		if i%2 == 1 {
			p = mesh.Plane
		}
		if _, err := g.AddPrimitive(p, "prim", desc, g.Root(), nil); err != nil {
			t.Fatalf("AddPrimitive: %v", err)
		}
	}

	es := g.VisitSingleThreaded()
	instances := New(DefaultMaxInstances, PolicyReject).Build(es, mgl32.Ident4())
	// each AddPrimitive creates its own pool entries, so nothing groups
	if len(instances) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(instances))
	}

	calls := DrawCalls(instances, g)
	for i, c := range calls {
		if c.Mesh != g.Mesh(instances[i].Mesh).GPU || c.Program == 0 || c.Textures[gpu.SlotAlbedo] == 0 {
			t.Errorf("call %d not resolved: %+v", i, c)
		}
	}
	if err := Submit(dev, calls); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	st := dev.Stats()
	if st.DrawCalls != 5 || st.Instances != 5 {
		t.Errorf("expected 5 draws of 1 instance, got %+v", st)
	}
	if st.Triangles != 3*12+2*2 {
		t.Errorf("unexpected triangle count %d", st.Triangles)
	}
}
