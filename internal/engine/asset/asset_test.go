package asset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/warg/internal/assets"
)

func writeScene(t *testing.T, dir, name string, s *Scene) {
	t.Helper()
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestImportChest(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "chest.yaml", Chest())

	im := NewYAMLImporter(assets.NewManager(dir))
	s, err := im.Import("chest.yaml", DefaultFlags)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if s.Path != filepath.Join(dir, "chest.yaml") {
		t.Errorf("expected resolved path, got %s", s.Path)
	}
	if s.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", s.NodeCount())
	}
	if len(s.Meshes) != 3 || len(s.Materials) != 2 {
		t.Errorf("expected 3 meshes and 2 materials, got %d/%d", len(s.Meshes), len(s.Materials))
	}
	if s.Root.Name != "Chest" {
		t.Errorf("expected root Chest, got %s", s.Root.Name)
	}
	if !s.Root.Transform.ApproxEqualThreshold(mgl32.Scale3D(1, 0.6, 0.6), 1e-5) {
		t.Errorf("root transform not preserved: %v", s.Root.Transform)
	}
	lid := s.Root.Children[0]
	if lid.Name != "Lid" || len(lid.Children) != 1 || lid.Children[0].Meshes[0] != 2 {
		t.Errorf("unexpected lid subtree %+v", lid)
	}
	if got := s.Materials[1].Texture(SlotSpecular); got != "color(1,1,1,1)" {
		t.Errorf("unexpected specular texture %q", got)
	}

	d := s.Meshes[0].MeshData("chest#0")
	if err := d.Validate(); err != nil {
		t.Errorf("converted mesh data invalid: %v", err)
	}
	if d.TriangleCount() != 12 {
		t.Errorf("expected 12 triangles, got %d", d.TriangleCount())
	}
}

func TestImportMissingFile(t *testing.T) {
	im := NewYAMLImporter(assets.NewManager(t.TempDir()))
	if _, err := im.Import("nope.yaml", DefaultFlags); !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("expected assets.ErrNotFound, got %v", err)
	}
}

func TestImportMalformed(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"syntax.yaml":    "root: [unterminated",
		"transform.yaml": "root: {name: r, transform: [1, 2, 3]}",
		"vector.yaml":    "root: {name: r}\nmeshes:\n  - {name: m, positions: [[1, 2]]}",
	}
	im := NewYAMLImporter(assets.NewManager(dir))
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := im.Import(name, DefaultFlags); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestValidatePreconditions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
		want   error
	}{
		{"valid", func(*Scene) {}, nil},
		{"no root", func(s *Scene) { s.Root = nil }, ErrNoRoot},
		{"no positions", func(s *Scene) { s.Meshes[0].Positions = nil }, ErrMissingPositions},
		{"no normals", func(s *Scene) { s.Meshes[0].Normals = nil }, ErrMissingNormals},
		{"two uv channels", func(s *Scene) {
			s.Meshes[0].UVChannels = append(s.Meshes[0].UVChannels, s.Meshes[0].UVChannels[0])
		}, ErrUVChannels},
		{"uvw coordinates", func(s *Scene) { s.Meshes[0].UVChannels[0].Components = 3 }, ErrUVComponents},
		{"no tangents", func(s *Scene) { s.Meshes[0].Tangents = nil }, ErrMissingTangents},
		{"vertex colors", func(s *Scene) {
			s.Meshes[0].Colors = [][]mgl32.Vec4{make([]mgl32.Vec4, len(s.Meshes[0].Positions))}
		}, ErrVertexColors},
		{"quad face", func(s *Scene) { s.Meshes[0].Faces[0] = []uint32{0, 1, 2, 3} }, ErrNotTriangulated},
		{"short normals", func(s *Scene) { s.Meshes[0].Normals = s.Meshes[0].Normals[:2] }, ErrAttributeLength},
		{"bad material", func(s *Scene) { s.Meshes[0].MaterialIndex = 5 }, ErrIndexRange},
		{"bad node mesh", func(s *Scene) { s.Root.Meshes = []int{9} }, ErrIndexRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Chest()
			tt.mutate(s)
			err := Validate(s)
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProcessFlags(t *testing.T) {
	quad := func() *Scene {
		return &Scene{
			Root: &Node{Name: "root", Transform: mgl32.Ident4(), Meshes: []int{0}},
			Meshes: []Mesh{{
				Name:      "quad",
				Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
				UVChannels: []UVChannel{{Components: 2, Coords: []mgl32.Vec3{
					{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
				}}},
				Faces: [][]uint32{{0, 1, 2, 3}},
			}},
			Materials: []Material{{Name: "m"}},
		}
	}

	t.Run("all flags", func(t *testing.T) {
		s := quad()
		Process(s, DefaultFlags)
		if err := Validate(s); err != nil {
			t.Fatalf("processed scene should validate: %v", err)
		}
		if len(s.Meshes[0].Faces) != 2 {
			t.Errorf("expected 2 triangles, got %d", len(s.Meshes[0].Faces))
		}
		if !s.Meshes[0].Tangents[0].ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5) {
			t.Errorf("unexpected tangent %v", s.Meshes[0].Tangents[0])
		}
		if !s.Meshes[0].Normals[0].ApproxEqualThreshold(mgl32.Vec3{0, 0, 1}, 1e-5) {
			t.Errorf("unexpected normal %v", s.Meshes[0].Normals[0])
		}
	})

	t.Run("no triangulate", func(t *testing.T) {
		s := quad()
		Process(s, FlagCalcTangentSpace|FlagGenNormals)
		if err := Validate(s); !errors.Is(err, ErrMissingNormals) {
			t.Errorf("expected ErrMissingNormals for untriangulated quad, got %v", err)
		}
	})

	t.Run("no tangents", func(t *testing.T) {
		s := quad()
		Process(s, FlagTriangulate|FlagGenNormals)
		if err := Validate(s); !errors.Is(err, ErrMissingTangents) {
			t.Errorf("expected ErrMissingTangents, got %v", err)
		}
	})
}

func TestParseFlags(t *testing.T) {
	f, err := ParseFlags([]string{"triangulate", "CALC_TANGENT_SPACE"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if f != FlagTriangulate|FlagCalcTangentSpace {
		t.Errorf("unexpected flags %s", f)
	}
	if f.String() != "triangulate|calc_tangent_space" {
		t.Errorf("unexpected String %q", f.String())
	}
	if Flags(0).String() != "none" {
		t.Errorf("expected none, got %q", Flags(0).String())
	}
	if _, err := ParseFlags([]string{"optimize"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

type countingImporter struct {
	calls  int
	fail   bool
	mutate func(*Scene)
}

func (c *countingImporter) Import(path string, flags Flags) (*Scene, error) {
	c.calls++
	if c.fail {
		return nil, assets.ErrNotFound
	}
	s := Chest()
	s.Path = path
	if c.mutate != nil {
		c.mutate(s)
	}
	return s, nil
}

func TestCacheParsesOnce(t *testing.T) {
	im := &countingImporter{}
	c := NewCache(im)

	a, err := c.Load(`models\chest.yaml`, DefaultFlags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b, err := c.Load("models/chest.yaml", DefaultFlags)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a != b {
		t.Error("expected the same parsed scene for equivalent paths")
	}
	if im.calls != 1 {
		t.Errorf("expected 1 import, got %d", im.calls)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", hits, misses)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	im := &countingImporter{fail: true}
	c := NewCache(im)
	for i := 0; i < 2; i++ {
		if _, err := c.Load("broken.yaml", DefaultFlags); err == nil {
			t.Fatal("expected error")
		}
	}
	if im.calls != 2 {
		t.Errorf("expected failed imports to be retried, got %d calls", im.calls)
	}
}

func TestCacheValidatesImportedScenes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
		want   error
	}{
		{"vertex colors", func(s *Scene) {
			s.Meshes[0].Colors = [][]mgl32.Vec4{make([]mgl32.Vec4, len(s.Meshes[0].Positions))}
		}, ErrVertexColors},
		{"two uv channels", func(s *Scene) {
			s.Meshes[1].UVChannels = append(s.Meshes[1].UVChannels, s.Meshes[1].UVChannels[0])
		}, ErrUVChannels},
		{"no normals", func(s *Scene) { s.Meshes[2].Normals = nil }, ErrMissingNormals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache(&countingImporter{mutate: tt.mutate})
			if _, err := c.Load("chest.yaml", DefaultFlags); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if c.Len() != 0 {
				t.Error("rejected scene was cached")
			}
		})
	}
}
