package asset

import (
	"errors"
	"fmt"
)

// Import precondition failures.
var (
	ErrNoRoot           = errors.New("scene has no root node")
	ErrMissingPositions = errors.New("mesh has no positions")
	ErrMissingNormals   = errors.New("mesh has no normals")
	ErrUVChannels       = errors.New("mesh must have exactly one uv channel")
	ErrUVComponents     = errors.New("uv channel must have two components")
	ErrMissingTangents  = errors.New("mesh has no tangents and bitangents")
	ErrVertexColors     = errors.New("vertex colors are not supported")
	ErrNotTriangulated  = errors.New("mesh has non-triangle faces")
	ErrAttributeLength  = errors.New("vertex attribute length mismatch")
	ErrIndexRange       = errors.New("index out of range")
)

// Validate checks that every mesh meets the engine's import requirements
// and every index in the scene refers to an existing element.
func Validate(s *Scene) error {
	if s.Root == nil {
		return ErrNoRoot
	}
	for i := range s.Meshes {
		if err := validateMesh(&s.Meshes[i], len(s.Materials)); err != nil {
			return fmt.Errorf("%s: mesh %d (%s): %w", s.Path, i, s.Meshes[i].Name, err)
		}
	}
	var err error
	s.Root.Walk(func(n *Node, _ int) {
		if err != nil {
			return
		}
		for _, mi := range n.Meshes {
			if mi < 0 || mi >= len(s.Meshes) {
				err = fmt.Errorf("%s: node %s: %w: mesh %d of %d", s.Path, n.Name, ErrIndexRange, mi, len(s.Meshes))
				return
			}
		}
	})
	return err
}

func validateMesh(m *Mesh, materials int) error {
	n := len(m.Positions)
	switch {
	case n == 0:
		return ErrMissingPositions
	case len(m.Normals) == 0:
		return ErrMissingNormals
	case len(m.UVChannels) != 1:
		return fmt.Errorf("%w: has %d", ErrUVChannels, len(m.UVChannels))
	case m.UVChannels[0].Components != 2:
		return fmt.Errorf("%w: has %d", ErrUVComponents, m.UVChannels[0].Components)
	case len(m.Tangents) == 0 || len(m.Bitangents) == 0:
		return ErrMissingTangents
	case len(m.Colors) > 0:
		return ErrVertexColors
	}
	for name, l := range map[string]int{
		"normals":    len(m.Normals),
		"uvs":        len(m.UVChannels[0].Coords),
		"tangents":   len(m.Tangents),
		"bitangents": len(m.Bitangents),
	} {
		if l != n {
			return fmt.Errorf("%w: %d %s for %d positions", ErrAttributeLength, l, name, n)
		}
	}
	for fi, f := range m.Faces {
		if len(f) != 3 {
			return fmt.Errorf("%w: face %d has %d indices", ErrNotTriangulated, fi, len(f))
		}
		for _, idx := range f {
			if int(idx) >= n {
				return fmt.Errorf("%w: face %d index %d >= %d", ErrIndexRange, fi, idx, n)
			}
		}
	}
	if m.MaterialIndex < 0 || m.MaterialIndex >= materials {
		return fmt.Errorf("%w: material %d of %d", ErrIndexRange, m.MaterialIndex, materials)
	}
	return nil
}
