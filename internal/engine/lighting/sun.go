package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// SunDirection converts longitude/latitude angles in degrees to a
// normalized direction pointing towards the sun. Longitude rotates
// around Y, latitude is elevation from the horizon.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := float64(mgl32.DegToRad(longitude))
	lat := float64(mgl32.DegToRad(latitude))
	return mgl32.Vec3{
		float32(math.Cos(lat) * math.Sin(lon)),
		float32(math.Sin(lat)),
		float32(math.Cos(lat) * math.Cos(lon)),
	}
}

// Sun returns a parallel light shining from the given sky angles.
func Sun(longitude, latitude float32, color mgl32.Vec3, ambient float32) Light {
	return Light{
		Direction: SunDirection(longitude, latitude).Mul(-1),
		Color:     color,
		Ambient:   ambient,
		Type:      Parallel,
	}
}

// Point returns an omni light with the given falloff.
func Point(pos, color mgl32.Vec3, linear, quadratic float32) Light {
	return Light{
		Position:    pos,
		Color:       color,
		Attenuation: mgl32.Vec3{1, linear, quadratic},
		Type:        Omni,
	}
}
