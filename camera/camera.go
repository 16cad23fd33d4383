// Package camera provides an orbit camera for compositions drawn on 3-D meshes.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Orbit circles a target at a fixed distance. Angles are in radians.
type Orbit struct {
	// Target is the point the camera looks at.
	Target r3.Vec

	// Yaw rotates around the vertical axis, Pitch tilts above the horizon.
	Yaw, Pitch float64

	// Distance from Target, clamped to [MinDistance, MaxDistance].
	Distance float64

	MinDistance, MaxDistance float64

	// AutoRotate is the yaw speed in radians per second when not dragged.
	AutoRotate float64

	// Fovy is the vertical field of view in degrees.
	Fovy float64
}

// Pitch limits keep the camera off the poles where the up vector flips.
const (
	minPitch = -math.Pi/2 + 0.05
	maxPitch = math.Pi/2 - 0.05
)

// New creates an orbit camera looking at the origin from distance.
func New(distance float64) *Orbit {
	return &Orbit{
		Yaw:         math.Pi / 4,
		Pitch:       math.Pi / 6,
		Distance:    distance,
		MinDistance: distance / 4,
		MaxDistance: distance * 4,
		AutoRotate:  0.2,
		Fovy:        45,
	}
}

// Eye returns the camera position.
func (o *Orbit) Eye() r3.Vec {
	cp := math.Cos(o.Pitch)
	dir := r3.Vec{
		X: cp * math.Sin(o.Yaw),
		Y: math.Sin(o.Pitch),
		Z: cp * math.Cos(o.Yaw),
	}
	return r3.Add(o.Target, r3.Scale(o.Distance, dir))
}

// Up returns the world up vector.
func (o *Orbit) Up() r3.Vec { return r3.Vec{Y: 1} }

// Drag rotates by a pointer movement in pixels.
func (o *Orbit) Drag(dx, dy, sensitivity float64) {
	o.Yaw -= dx * sensitivity
	o.Pitch = clamp(o.Pitch+dy*sensitivity, minPitch, maxPitch)
}

// ZoomBy scales the distance by factor.
func (o *Orbit) ZoomBy(factor float64) {
	if factor <= 0 {
		return
	}
	o.Distance = clamp(o.Distance*factor, o.MinDistance, o.MaxDistance)
}

// Update applies auto-rotation for dt seconds.
func (o *Orbit) Update(dt float64) {
	o.Yaw = math.Mod(o.Yaw+o.AutoRotate*dt, 2*math.Pi)
}

// Reset returns to the initial angles at the given distance.
func (o *Orbit) Reset(distance float64) {
	*o = *New(distance)
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
