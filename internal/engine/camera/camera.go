// Package camera provides the orbit camera that feeds positions to the globe.
package camera

import (
	gomath "math"

	"github.com/Faultbox/genesisforge/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float64 // Distance from center
	Pitch    float64 // Vertical angle, radians
	Yaw      float64 // Horizontal angle, radians

	// Constraints
	MinDistance float64
	MaxDistance float64
	MinPitch    float64
	MaxPitch    float64

	// Sensitivity
	DragSensitivity float64
	ZoomSensitivity float64
}

// NewOrbitCamera creates an orbit camera at (0, 5, 25) looking at the origin,
// limited to 12..100 units from the planet center.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{
		MinDistance:     12,
		MaxDistance:     100,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
	c.LookFrom(math.Vec3{Y: 5, Z: 25})
	return c
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosPitch := gomath.Cos(c.Pitch)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cosPitch * gomath.Sin(c.Yaw),
		Y: c.Distance * gomath.Sin(c.Pitch),
		Z: c.Distance * cosPitch * gomath.Cos(c.Yaw),
	})
}

// LookFrom places the camera at pos, keeping the current center.
func (c *OrbitCamera) LookFrom(pos math.Vec3) {
	d := pos.Sub(c.Center)
	dist := d.Length()
	if dist == 0 {
		c.SetOrbit(c.MinDistance, 0, 0)
		return
	}
	c.SetOrbit(dist, gomath.Asin(d.Y/dist), gomath.Atan2(d.X, d.Z))
}

// SetOrbit sets distance, pitch and yaw, applying the constraints.
func (c *OrbitCamera) SetOrbit(distance, pitch, yaw float64) {
	c.Distance = distance
	c.Pitch = pitch
	c.Yaw = yaw
	c.clamp()
}

// HandleDrag updates rotation based on a pointer drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float64) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.clamp()
}

// HandleZoom updates distance based on a scroll delta. Positive zooms in.
func (c *OrbitCamera) HandleZoom(delta float64) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clamp()
}

func (c *OrbitCamera) clamp() {
	c.Distance = clamp(c.Distance, c.MinDistance, c.MaxDistance)
	c.Pitch = clamp(c.Pitch, c.MinPitch, c.MaxPitch)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
