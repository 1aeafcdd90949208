package asset

import (
	"fmt"
	"strings"
)

// Flags select post-processing applied after parsing.
type Flags uint32

const (
	// FlagTriangulate splits polygons into triangle fans.
	FlagTriangulate Flags = 1 << iota
	// FlagCalcTangentSpace generates tangents and bitangents from UVs
	// when the asset has none.
	FlagCalcTangentSpace
	// FlagGenNormals generates flat normals when the asset has none.
	FlagGenNormals
)

// DefaultFlags is the post-processing applied to imported scenes.
const DefaultFlags = FlagTriangulate | FlagCalcTangentSpace | FlagGenNormals

var flagNames = []struct {
	name string
	flag Flags
}{
	{"triangulate", FlagTriangulate},
	{"calc_tangent_space", FlagCalcTangentSpace},
	{"gen_normals", FlagGenNormals},
}

// ParseFlags combines flag names as used in configuration files.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
	for _, n := range names {
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(strings.TrimSpace(n), fn.name) {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown import flag %q", n)
		}
	}
	return f, nil
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
