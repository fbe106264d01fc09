// Package spatial provides an acceleration structure over triangle meshes
// for the raycast and nearest-point queries the growth engine runs every
// step. Build once per mesh revision; queries are read-only and safe for
// concurrent use.
package spatial

import (
	"math"

	"github.com/taigrr/ivy/pkg/math3d"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// emptyAABB returns a box that unions cleanly with anything.
func emptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// ExpandTo grows the box to contain the point.
func (b *AABB) ExpandTo(p math3d.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the center point of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// DistanceSqToPoint returns the squared distance from p to the box,
// zero if p is inside.
func (b AABB) DistanceSqToPoint(p math3d.Vec3) float64 {
	var d float64
	d += axisDistSq(p.X, b.Min.X, b.Max.X)
	d += axisDistSq(p.Y, b.Min.Y, b.Max.Y)
	d += axisDistSq(p.Z, b.Min.Z, b.Max.Z)
	return d
}

func axisDistSq(v, lo, hi float64) float64 {
	if v < lo {
		return (lo - v) * (lo - v)
	}
	if v > hi {
		return (v - hi) * (v - hi)
	}
	return 0
}

// IntersectsRay reports whether the ray origin + t*dir crosses the box
// for some t in [tMin, tMax], using the slab method. dir components may
// be zero; the IEEE infinities produced by the division handle parallel
// rays correctly.
func (b AABB) IntersectsRay(origin, dir math3d.Vec3, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		var o, d, lo, hi float64
		switch axis {
		case 0:
			o, d, lo, hi = origin.X, dir.X, b.Min.X, b.Max.X
		case 1:
			o, d, lo, hi = origin.Y, dir.Y, b.Min.Y, b.Max.Y
		default:
			o, d, lo, hi = origin.Z, dir.Z, b.Min.Z, b.Max.Z
		}
		inv := 1 / d
		t0 := (lo - o) * inv
		t1 := (hi - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax < tMin {
			return false
		}
	}
	return true
}
