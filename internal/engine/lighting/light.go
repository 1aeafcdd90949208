// Package lighting provides the fixed-capacity light sets attached to
// render entities.
package lighting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the maximum number of lights in a Set.
const MaxLights = 10

// Type selects how a light is evaluated by shaders.
type Type int32

const (
	Parallel Type = iota
	Omni
	Spot
)

func (t Type) String() string {
	switch t {
	case Parallel:
		return "parallel"
	case Omni:
		return "omni"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// Light is a single light source. All fields are comparable so Light
// values can be compared with ==.
type Light struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	Color       mgl32.Vec3
	Attenuation mgl32.Vec3 // constant, linear, quadratic
	Ambient     float32
	ConeAngle   float32 // radians, spot lights only
	Type        Type
}

// Set is the ordered collection of lights affecting an entity.
// Only the first Count entries are meaningful; unused slots are kept
// zeroed so that == compares sets by content.
type Set struct {
	Lights            [MaxLights]Light
	Count             int
	AdditionalAmbient mgl32.Vec3
}

// Add appends a light. Returns false if the set is full.
func (s *Set) Add(l Light) bool {
	if s.Count >= MaxLights {
		return false
	}
	s.Lights[s.Count] = l
	s.Count++
	return true
}

// Clear removes all lights and resets the ambient term.
func (s *Set) Clear() {
	*s = Set{}
}

// Active returns the populated prefix of the set.
func (s *Set) Active() []Light {
	return s.Lights[:s.Count]
}

// Equal reports whether two sets hold the same lights in the same order.
func (s Set) Equal(o Set) bool {
	return s == o
}

// Positions returns positions as a flat slice of MaxLights*3 floats for
// GPU upload. Format: [x0, y0, z0, x1, y1, z1, ...]
func (s *Set) Positions() []float32 {
	return s.flatten(func(l *Light) mgl32.Vec3 { return l.Position })
}

// Directions returns directions flattened like Positions.
func (s *Set) Directions() []float32 {
	return s.flatten(func(l *Light) mgl32.Vec3 { return l.Direction })
}

// Colors returns colors flattened like Positions.
func (s *Set) Colors() []float32 {
	return s.flatten(func(l *Light) mgl32.Vec3 { return l.Color })
}

// Attenuations returns attenuation terms flattened like Positions.
func (s *Set) Attenuations() []float32 {
	return s.flatten(func(l *Light) mgl32.Vec3 { return l.Attenuation })
}

// Types returns the light types as MaxLights ints.
func (s *Set) Types() []int32 {
	out := make([]int32, MaxLights)
	for i := 0; i < s.Count; i++ {
		out[i] = int32(s.Lights[i].Type)
	}
	return out
}

func (s *Set) flatten(field func(*Light) mgl32.Vec3) []float32 {
	out := make([]float32, MaxLights*3)
	for i := 0; i < s.Count; i++ {
		v := field(&s.Lights[i])
		out[i*3+0] = v[0]
		out[i*3+1] = v[1]
		out[i*3+2] = v[2]
	}
	return out
}
