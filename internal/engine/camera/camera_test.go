package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestViewProjection(t *testing.T) {
	c := New(mgl32.Vec3{0, -10, 0}, mgl32.Vec3{}, 60, 16.0/9.0, 0.1, 100)

	// the gaze point lands in the center of the screen
	clip := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if mgl32.Abs(ndc.X()) > 1e-5 || mgl32.Abs(ndc.Y()) > 1e-5 {
		t.Errorf("gaze not centered: %v", ndc)
	}
	if ndc.Z() <= -1 || ndc.Z() >= 1 {
		t.Errorf("gaze outside depth range: %v", ndc.Z())
	}

	// a point above the gaze is above the center
	up := c.ViewProjection().Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	if up.Y()/up.W() <= 0 {
		t.Errorf("+Z is not up on screen: %v", up)
	}
}

func TestSetVFov(t *testing.T) {
	tests := []struct {
		in, expect float32
	}{
		{45, 45},
		{0, 1},
		{-20, 1},
		{200, 179},
	}
	c := New(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, 60, 1, 0.1, 10)
	for _, tt := range tests {
		c.SetVFov(tt.in)
		if c.VFov != tt.expect {
			t.Errorf("SetVFov(%v): got %v, want %v", tt.in, c.VFov, tt.expect)
		}
	}
}

func TestResize(t *testing.T) {
	c := New(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{}, 60, 1, 0.1, 10)
	c.Resize(1280, 720)
	if !mgl32.FloatEqualThreshold(c.Aspect, 1280.0/720.0, 1e-6) {
		t.Errorf("unexpected aspect %v", c.Aspect)
	}
	c.Resize(0, 720)
	if !mgl32.FloatEqualThreshold(c.Aspect, 1280.0/720.0, 1e-6) {
		t.Error("zero width changed the aspect")
	}
}

func TestOrbit(t *testing.T) {
	o := NewOrbit(mgl32.Vec3{1, 2, 3}, 10)
	o.Pitch = 0
	o.Yaw = 0

	if !o.Position().ApproxEqualThreshold(mgl32.Vec3{11, 2, 3}, 1e-4) {
		t.Errorf("unexpected position %v", o.Position())
	}
	o.Drag(0, 1e6)
	if o.Pitch != o.MaxPitch {
		t.Errorf("pitch not clamped: %v", o.Pitch)
	}
	if o.Position().Z() <= 3 {
		t.Error("positive pitch does not raise the eye")
	}

	o.Zoom(100)
	if o.Distance != o.MinDistance {
		t.Errorf("distance not clamped: %v", o.Distance)
	}

	c := New(mgl32.Vec3{}, mgl32.Vec3{}, 60, 1, 0.1, 100)
	o.Fit(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 3, 3})
	o.Apply(c)
	if c.Gaze != (mgl32.Vec3{1, 1, 1}) {
		t.Errorf("gaze not at box center: %v", c.Gaze)
	}
	if !mgl32.FloatEqualThreshold(c.Position.Sub(c.Gaze).Len(), o.Distance, 1e-4) {
		t.Error("eye not at orbit distance")
	}
}
