package math3d

import "math"

// Quat represents a rotation as a unit quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// alignEpsilon is the threshold below which two vectors are treated as
// antiparallel by AlignVectors.
const alignEpsilon = 1e-6

// AlignVectors returns the minimal rotation mapping unit vector a onto
// unit vector b. When a and b are antiparallel the rotation axis is
// ambiguous; the reference X axis is used. The axis choice does not
// need to be canonical, only consistent.
func AlignVectors(a, b Vec3) Quat {
	real := 1 + a.Dot(b)
	var axis Vec3
	if real < alignEpsilon {
		real = 0
		axis = Right()
	} else {
		axis = a.Cross(b)
	}
	return Quat{axis.X, axis.Y, axis.Z, real}.Normalize()
}

// Normalize returns the unit quaternion. The zero quaternion normalizes
// to the identity.
func (q Quat) Normalize() Quat {
	l := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if l == 0 {
		return QuatIdentity()
	}
	l = 1 / math.Sqrt(l)
	return Quat{q.X * l, q.Y * l, q.Z * l, q.W * l}
}

// Mul composes two rotations: applying q.Mul(p) rotates first by p,
// then by q.
func (q Quat) Mul(p Quat) Quat {
	return Quat{
		q.W*p.X + q.X*p.W + q.Y*p.Z - q.Z*p.Y,
		q.W*p.Y - q.X*p.Z + q.Y*p.W + q.Z*p.X,
		q.W*p.Z + q.X*p.Y - q.Y*p.X + q.Z*p.W,
		q.W*p.W - q.X*p.X - q.Y*p.Y - q.Z*p.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Transform is a rigid position + orientation pair. A sequence of
// transforms describes an extrusion path.
type Transform struct {
	Position Vec3
	Rotation Quat
}

// NewTransform creates a transform at the given position with the given
// orientation.
func NewTransform(position Vec3, rotation Quat) Transform {
	return Transform{Position: position, Rotation: rotation}
}

// Apply transforms a local-space point into world space.
func (t Transform) Apply(v Vec3) Vec3 {
	return t.Rotation.Rotate(v).Add(t.Position)
}
