// Package camera provides the view and projection used to batch a frame.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking from Position towards Gaze.
type Camera struct {
	Position mgl32.Vec3
	Gaze     mgl32.Vec3
	Up       mgl32.Vec3

	VFov   float32 // vertical field of view, degrees
	Aspect float32
	Near   float32
	Far    float32
}

// New creates a camera at position looking at gaze with +Z up.
func New(position, gaze mgl32.Vec3, vfov, aspect, near, far float32) *Camera {
	return &Camera{
		Position: position,
		Gaze:     gaze,
		Up:       mgl32.Vec3{0, 0, 1},
		VFov:     vfov,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl32.Mat4 {
	up := c.Up
	if up == (mgl32.Vec3{}) {
		up = mgl32.Vec3{0, 0, 1}
	}
	return mgl32.LookAtV(c.Position, c.Gaze, up)
}

// Projection returns the perspective projection matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.VFov), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// SetVFov sets the field of view, clamped to (1, 179) degrees.
func (c *Camera) SetVFov(degrees float32) {
	c.VFov = mgl32.Clamp(degrees, 1, 179)
}

// Resize updates the aspect ratio for a new viewport size.
func (c *Camera) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Orbit moves a camera around a center point on a sphere.
type Orbit struct {
	Center   mgl32.Vec3
	Distance float32
	Pitch    float32 // elevation above the XY plane, radians
	Yaw      float32 // rotation around Z, radians

	MinDistance, MaxDistance float32
	MinPitch, MaxPitch       float32
	DragSensitivity          float32
	ZoomSensitivity          float32
}

// NewOrbit creates an orbit around center at distance.
func NewOrbit(center mgl32.Vec3, distance float32) *Orbit {
	return &Orbit{
		Center:          center,
		Distance:        distance,
		Pitch:           0.5,
		MinDistance:     1,
		MaxDistance:     5000,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the orbit's eye position.
func (o *Orbit) Position() mgl32.Vec3 {
	return o.Center.Add(mgl32.SphericalToCartesian(o.Distance, mgl32.DegToRad(90)-o.Pitch, o.Yaw))
}

// Apply points c at the orbit's center from its current position.
func (o *Orbit) Apply(c *Camera) {
	c.Position = o.Position()
	c.Gaze = o.Center
}

// Drag rotates the orbit by a pointer delta.
func (o *Orbit) Drag(dx, dy float32) {
	o.Yaw -= dx * o.DragSensitivity
	o.Pitch = mgl32.Clamp(o.Pitch+dy*o.DragSensitivity, o.MinPitch, o.MaxPitch)
}

// Zoom scales the distance by a wheel delta.
func (o *Orbit) Zoom(delta float32) {
	o.Distance = mgl32.Clamp(o.Distance-delta*o.Distance*o.ZoomSensitivity, o.MinDistance, o.MaxDistance)
}

// Fit centers the orbit on a bounding box and backs off far enough to
// see all of it.
func (o *Orbit) Fit(lo, hi mgl32.Vec3) {
	o.Center = lo.Add(hi).Mul(0.5)
	o.Distance = mgl32.Clamp(hi.Sub(lo).Len()*1.2, o.MinDistance, o.MaxDistance)
}
