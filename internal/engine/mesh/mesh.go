// Package mesh provides CPU-side mesh data, built-in primitives and
// tangent-space generation.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrEmpty            = errors.New("mesh has no positions")
	ErrAttributeLength  = errors.New("vertex attribute length mismatch")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrNotTriangles     = errors.New("index count is not a multiple of 3")
	ErrNoIndices        = errors.New("mesh has no indices")
	ErrUnknownPrimitive = errors.New("unknown primitive")
)

// Data holds the vertex attributes of one mesh, ready for GPU upload.
//
// Two Data values with the same UniqueID are assumed to hold identical
// attributes; GPU resource caches key on it.
type Data struct {
	Name       string
	UniqueID   string
	Positions  []mgl32.Vec3
	Normals    []mgl32.Vec3
	UVs        []mgl32.Vec2
	Tangents   []mgl32.Vec3
	Bitangents []mgl32.Vec3
	Indices    []uint32
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// VertexCount returns the number of vertices.
func (d *Data) VertexCount() int { return len(d.Positions) }

// TriangleCount returns the number of indexed triangles.
func (d *Data) TriangleCount() int { return len(d.Indices) / 3 }

// Validate checks that every attribute stream matches the position count
// and every index addresses a vertex.
func (d *Data) Validate() error {
	n := len(d.Positions)
	if n == 0 {
		return fmt.Errorf("%s: %w", d.Name, ErrEmpty)
	}
	streams := []struct {
		name string
		len  int
	}{
		{"normals", len(d.Normals)},
		{"uvs", len(d.UVs)},
		{"tangents", len(d.Tangents)},
		{"bitangents", len(d.Bitangents)},
	}
	for _, s := range streams {
		if s.len != n {
			return fmt.Errorf("%s: %w: %d %s for %d positions", d.Name, ErrAttributeLength, s.len, s.name, n)
		}
	}
	if len(d.Indices) == 0 {
		return fmt.Errorf("%s: %w", d.Name, ErrNoIndices)
	}
	if len(d.Indices)%3 != 0 {
		return fmt.Errorf("%s: %w: %d", d.Name, ErrNotTriangles, len(d.Indices))
	}
	for _, idx := range d.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%s: %w: %d >= %d", d.Name, ErrIndexOutOfRange, idx, n)
		}
	}
	return nil
}

// Bounds returns the bounding box of all positions.
func (d *Data) Bounds() Bounds {
	b := Bounds{
		Min: mgl32.Vec3{1e10, 1e10, 1e10},
		Max: mgl32.Vec3{-1e10, -1e10, -1e10},
	}
	for _, p := range d.Positions {
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], p[i])
			b.Max[i] = max(b.Max[i], p[i])
		}
	}
	return b
}

// Center returns the midpoint of the box.
func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box on each axis.
func (b Bounds) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}
