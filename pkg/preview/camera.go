// Package preview renders a grown vine as a wireframe in the terminal,
// drawing half-block cells for double vertical resolution.
package preview

import (
	"math"

	"github.com/taigrr/ivy/pkg/math3d"
)

// Camera is a perspective camera with yaw/pitch orientation. The preview
// only ever orbits a point of interest, so there is no roll.
type Camera struct {
	Position math3d.Vec3

	// Orientation in radians.
	Pitch float64
	Yaw   float64

	FOV         float64
	AspectRatio float64
	Near        float64
	Far         float64
}

// NewCamera creates a camera with a 60 degree field of view looking down
// -Z from five units out.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 5),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
	}
}

// LookAt points the camera at a target.
func (c *Camera) LookAt(target math3d.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	c.Pitch = math.Asin(dir.Y)
	c.Yaw = math.Atan2(-dir.X, -dir.Z)
}

// Orbit places the camera on a sphere around center and points it back
// at the center. yaw sweeps around the Y axis, pitch tilts above the
// horizon.
func (c *Camera) Orbit(center math3d.Vec3, radius, yaw, pitch float64) {
	c.Position = center.Add(math3d.V3(
		math.Sin(yaw)*math.Cos(pitch),
		math.Sin(pitch),
		math.Cos(yaw)*math.Cos(pitch),
	).Scale(radius))
	c.LookAt(center)
}

// ViewProjection returns the combined view-projection matrix.
func (c *Camera) ViewProjection() math3d.Mat4 {
	view := math3d.RotateX(-c.Pitch).
		Mul(math3d.RotateY(-c.Yaw)).
		Mul(math3d.Translate(c.Position.Negate()))
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far).Mul(view)
}

// WorldToScreen projects a world point to pixel coordinates. ok is false
// when the point falls behind the camera or outside the frustum.
func (c *Camera) WorldToScreen(world math3d.Vec3, width, height int) (x, y float64, ok bool) {
	clip := c.ViewProjection().MulVec4(math3d.V4FromV3(world, 1))
	if clip.W <= 0 {
		return 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, true
}
