package math3d

import "math"

// CartesianToSphere converts a cartesian vector to spherical coordinates
// (radius, polar angle, azimuth). The polar angle is measured from the
// world up axis (+Y); the azimuth lies in the XZ plane, measured from +X
// toward +Z. The zero vector is degenerate input and must be avoided by
// the caller.
func CartesianToSphere(v Vec3) (radius, polar, azimuth float64) {
	radius = v.Len()
	polar = math.Acos(v.Y / radius)
	azimuth = math.Atan2(v.Z, v.X)
	return radius, polar, azimuth
}

// SphereToCartesian converts spherical coordinates back to a cartesian
// vector, using the same convention as CartesianToSphere.
func SphereToCartesian(radius, polar, azimuth float64) Vec3 {
	sp := math.Sin(polar)
	return Vec3{
		X: radius * sp * math.Cos(azimuth),
		Y: radius * math.Cos(polar),
		Z: radius * sp * math.Sin(azimuth),
	}
}
