package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`models\\chest\\chest.yaml`, "models/chest/chest.yaml"},
		{`models\chest.yaml`, "models/chest.yaml"},
		{"models/./chest/../chest.yaml", "models/chest.yaml"},
		{"  chest.yaml ", "chest.yaml"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := filepath.ToSlash(NormalizePath(tt.in)); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolvePriority(t *testing.T) {
	low := t.TempDir()
	high := t.TempDir()
	for _, dir := range []string{low, high} {
		if err := os.WriteFile(filepath.Join(dir, "chest.yaml"), []byte(dir), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(low, "only_low.yaml"), []byte("low"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(low, high)

	got, err := m.Resolve("chest.yaml")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != filepath.Join(high, "chest.yaml") {
		t.Errorf("expected last root to win, got %s", got)
	}
	if _, err := m.Resolve("only_low.yaml"); err != nil {
		t.Errorf("expected fallback to first root: %v", err)
	}
	if _, err := m.Resolve("missing.yaml"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := m.Resolve(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty path, got %v", err)
	}
}

func TestLoadCaches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shader.vert")
	if err := os.WriteFile(path, []byte("void main() {}"), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir)
	for i := 0; i < 3; i++ {
		data, err := m.Load("shader.vert")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if string(data) != "void main() {}" {
			t.Errorf("unexpected contents %q", data)
		}
	}
	hits, misses := m.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d/%d", hits, misses)
	}

	m.Close()
	if hits, misses := m.Stats(); hits != 0 || misses != 0 {
		t.Errorf("expected stats reset, got %d/%d", hits, misses)
	}
}

func TestLoadAbsolute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abs.yaml")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	m := NewManager()
	if _, err := m.Load(path); err != nil {
		t.Errorf("absolute path should load without roots: %v", err)
	}
}
