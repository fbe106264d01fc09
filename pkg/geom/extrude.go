package geom

import (
	"math"

	"github.com/taigrr/ivy/pkg/math3d"
)

// CircleProfile returns points approximating a circle of the given
// radius, wound counter-clockwise in the XZ plane. Branch cross-sections
// use an 8-point profile.
func CircleProfile(points int, radius float64) []math3d.Vec2 {
	profile := make([]math3d.Vec2, points)
	step := 2 * math.Pi / float64(points)
	for i := range profile {
		a := step * float64(i)
		profile[i] = math3d.V2(math.Cos(a)*radius, math.Sin(a)*radius)
	}
	return profile
}

// AddExtrusion sweeps a closed cross-section profile along an ordered
// transform path and appends the resulting open tube to the mesh. Each
// transform orients the profile plane; the profile lies in the local XZ
// plane so a rotation mapping +Y onto the path direction keeps the
// cross-section perpendicular to the branch. Paths shorter than two
// transforms emit nothing.
func (m *Mesh) AddExtrusion(path []math3d.Transform, profile []math3d.Vec2) {
	if len(path) < 2 || len(profile) < 3 {
		return
	}

	points := len(profile)
	base := len(m.Vertices)

	for ring, tr := range path {
		v := float64(ring)
		for i, p := range profile {
			local := math3d.V3(p.X, 0, p.Y)
			m.Vertices = append(m.Vertices, Vertex{
				Position: tr.Apply(local),
				Normal:   tr.Rotation.Rotate(local).Normalize(),
				UV:       math3d.V2(float64(i)/float64(points), v),
			})
		}
	}

	for ring := 0; ring < len(path)-1; ring++ {
		r0 := base + ring*points
		r1 := r0 + points
		for i := 0; i < points; i++ {
			j := (i + 1) % points
			m.Faces = append(m.Faces,
				[3]int{r0 + i, r1 + i, r1 + j},
				[3]int{r0 + i, r1 + j, r0 + j},
			)
		}
	}
}

// AddPlane appends a subdivided rectangular plane to the mesh. The plane
// lies in the local XZ plane with its normal along local +Y, transformed
// into world space by tr. When centered is true the plane is centered on
// the transform origin, otherwise its corner sits there. When
// doubleSided is true a second set of faces with opposite winding is
// added so the plane is visible from both sides.
func (m *Mesh) AddPlane(tr math3d.Transform, width, height float64, segsX, segsY int, doubleSided, centered bool) {
	if segsX < 1 || segsY < 1 {
		return
	}

	base := len(m.Vertices)
	var offset math3d.Vec3
	if centered {
		offset = math3d.V3(-width/2, 0, -height/2)
	}

	for y := 0; y <= segsY; y++ {
		for x := 0; x <= segsX; x++ {
			u := float64(x) / float64(segsX)
			v := float64(y) / float64(segsY)
			local := math3d.V3(u*width, 0, v*height).Add(offset)
			m.Vertices = append(m.Vertices, Vertex{
				Position: tr.Apply(local),
				Normal:   tr.Rotation.Rotate(math3d.Up()),
				UV:       math3d.V2(u, v),
			})
		}
	}

	cols := segsX + 1
	for y := 0; y < segsY; y++ {
		for x := 0; x < segsX; x++ {
			i0 := base + y*cols + x
			i1 := i0 + 1
			i2 := i0 + cols
			i3 := i2 + 1
			m.Faces = append(m.Faces,
				[3]int{i0, i2, i3},
				[3]int{i0, i3, i1},
			)
			if doubleSided {
				m.Faces = append(m.Faces,
					[3]int{i0, i3, i2},
					[3]int{i0, i1, i3},
				)
			}
		}
	}
}
