package spatial

import (
	"sort"

	"github.com/taigrr/ivy/pkg/geom"
	"github.com/taigrr/ivy/pkg/math3d"
)

// Hit describes a query result: the surface point found, the geometric
// normal of the triangle at that point, and the distance from the query
// origin.
type Hit struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Distance float64
}

// Index is a bounding-volume hierarchy over the triangles of a mesh.
// It is immutable once built; rebuild after the source mesh changes.
type Index struct {
	tris  []triangle
	nodes []bvhNode
}

type triangle struct {
	a, b, c  math3d.Vec3
	normal   math3d.Vec3
	centroid math3d.Vec3
}

// bvhNode is a leaf when count > 0; tris[start:start+count] belong to it.
// Interior nodes reference children by index.
type bvhNode struct {
	bounds      AABB
	left, right int
	start       int
	count       int
}

// leafSize is the largest triangle count kept in a single leaf.
const leafSize = 4

// NewIndex builds a BVH over the mesh triangles using median splits on
// the longest axis. Degenerate triangles (zero-area) are skipped. A nil
// or empty mesh yields an index whose queries always miss.
func NewIndex(m *geom.Mesh) *Index {
	ix := &Index{}
	if m == nil {
		return ix
	}

	ix.tris = make([]triangle, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		n := b.Sub(a).Cross(c.Sub(a))
		if n.LenSq() == 0 {
			continue
		}
		ix.tris = append(ix.tris, triangle{
			a: a, b: b, c: c,
			normal:   n.Normalize(),
			centroid: a.Add(b).Add(c).Scale(1.0 / 3.0),
		})
	}
	if len(ix.tris) == 0 {
		return ix
	}

	ix.nodes = make([]bvhNode, 0, 2*len(ix.tris))
	ix.build(0, len(ix.tris))
	return ix
}

// build creates a node over tris[start:end) and returns its index.
func (ix *Index) build(start, end int) int {
	bounds := emptyAABB()
	for _, t := range ix.tris[start:end] {
		bounds.ExpandTo(t.a)
		bounds.ExpandTo(t.b)
		bounds.ExpandTo(t.c)
	}

	self := len(ix.nodes)
	ix.nodes = append(ix.nodes, bvhNode{bounds: bounds})

	if end-start <= leafSize {
		ix.nodes[self].start = start
		ix.nodes[self].count = end - start
		return self
	}

	// Split at the median centroid along the widest axis.
	size := bounds.Max.Sub(bounds.Min)
	axis := 0
	if size.Y > size.X && size.Y >= size.Z {
		axis = 1
	} else if size.Z > size.X && size.Z > size.Y {
		axis = 2
	}
	span := ix.tris[start:end]
	sort.Slice(span, func(i, j int) bool {
		return axisValue(span[i].centroid, axis) < axisValue(span[j].centroid, axis)
	})

	mid := start + (end-start)/2
	left := ix.build(start, mid)
	right := ix.build(mid, end)
	ix.nodes[self].left = left
	ix.nodes[self].right = right
	return self
}

func axisValue(v math3d.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Raycast finds the nearest triangle intersection along origin + t*dir
// for t in [tMin, tMax]. dir must be non-zero but need not be unit
// length; the reported distance is in units of |dir|.
func (ix *Index) Raycast(origin, dir math3d.Vec3, tMin, tMax float64) (Hit, bool) {
	if len(ix.nodes) == 0 {
		return Hit{}, false
	}

	best := Hit{Distance: tMax}
	found := false
	ix.raycastNode(0, origin, dir, tMin, &best, &found)
	return best, found
}

func (ix *Index) raycastNode(node int, origin, dir math3d.Vec3, tMin float64, best *Hit, found *bool) {
	n := &ix.nodes[node]
	if !n.bounds.IntersectsRay(origin, dir, tMin, best.Distance) {
		return
	}
	if n.count > 0 {
		for _, tri := range ix.tris[n.start : n.start+n.count] {
			t, ok := intersectTriangle(origin, dir, tri)
			if ok && t >= tMin && t < best.Distance {
				best.Distance = t
				best.Position = origin.Add(dir.Scale(t))
				best.Normal = tri.normal
				*found = true
			}
		}
		return
	}
	ix.raycastNode(n.left, origin, dir, tMin, best, found)
	ix.raycastNode(n.right, origin, dir, tMin, best, found)
}

// intersectTriangle runs the Möller–Trumbore test, returning the ray
// parameter of the hit.
func intersectTriangle(origin, dir math3d.Vec3, tri triangle) (float64, bool) {
	return RayTriangle(origin, dir, tri.a, tri.b, tri.c)
}

// RayTriangle intersects a ray with a single triangle, returning the ray
// parameter of the hit. It backs the index's raycasts and lets callers
// test triangles that have not been indexed yet.
func RayTriangle(origin, dir, a, b, c math3d.Vec3) (float64, bool) {
	const eps = 1e-12

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, false
	}
	inv := 1 / det

	s := origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t := e2.Dot(q) * inv
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// ClosestPoint finds the nearest point on the indexed surface within
// maxDist of p.
func (ix *Index) ClosestPoint(p math3d.Vec3, maxDist float64) (Hit, bool) {
	if len(ix.nodes) == 0 {
		return Hit{}, false
	}

	best := Hit{Distance: maxDist}
	found := false
	ix.closestNode(0, p, &best, &found)
	return best, found
}

func (ix *Index) closestNode(node int, p math3d.Vec3, best *Hit, found *bool) {
	n := &ix.nodes[node]
	if n.bounds.DistanceSqToPoint(p) > best.Distance*best.Distance {
		return
	}
	if n.count > 0 {
		for _, tri := range ix.tris[n.start : n.start+n.count] {
			q := closestPointOnTriangle(p, tri)
			d := p.Distance(q)
			if d < best.Distance {
				best.Distance = d
				best.Position = q
				best.Normal = tri.normal
				*found = true
			}
		}
		return
	}

	// Descend into the closer child first so the other is more likely
	// to be pruned.
	l, r := n.left, n.right
	if ix.nodes[l].bounds.DistanceSqToPoint(p) > ix.nodes[r].bounds.DistanceSqToPoint(p) {
		l, r = r, l
	}
	ix.closestNode(l, p, best, found)
	ix.closestNode(r, p, best, found)
}

// closestPointOnTriangle returns the point on the triangle nearest to p,
// after Ericson, Real-Time Collision Detection §5.1.5.
func closestPointOnTriangle(p math3d.Vec3, tri triangle) math3d.Vec3 {
	ab := tri.b.Sub(tri.a)
	ac := tri.c.Sub(tri.a)
	ap := p.Sub(tri.a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return tri.a
	}

	bp := p.Sub(tri.b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return tri.b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return tri.a.Add(ab.Scale(v))
	}

	cp := p.Sub(tri.c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return tri.c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return tri.a.Add(ac.Scale(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return tri.b.Add(tri.c.Sub(tri.b).Scale(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return tri.a.Add(ab.Scale(v)).Add(ac.Scale(w))
}

// TriangleCount returns the number of indexed triangles.
func (ix *Index) TriangleCount() int {
	return len(ix.tris)
}
