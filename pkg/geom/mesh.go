// Package geom provides the triangle-mesh construction primitives used to
// emit branch and leaf geometry: merging, extrusion along a transform
// path, foliage planes, and normal recomputation.
package geom

import (
	"github.com/taigrr/ivy/pkg/math3d"
)

// Vertex holds the attributes of a single mesh vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Faces    [][3]int

	// Bounding box, valid after CalculateBounds.
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// Clear removes all geometry but keeps the name.
func (m *Mesh) Clear() {
	m.Vertices = m.Vertices[:0]
	m.Faces = m.Faces[:0]
	m.BoundsMin = math3d.Zero3()
	m.BoundsMax = math3d.Zero3()
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// Triangle returns the three corner positions of face i.
func (m *Mesh) Triangle(i int) (a, b, c math3d.Vec3) {
	f := m.Faces[i]
	return m.Vertices[f[0]].Position, m.Vertices[f[1]].Position, m.Vertices[f[2]].Position
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin = math3d.Zero3()
		m.BoundsMax = math3d.Zero3()
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateSmoothNormals recomputes per-vertex normals by averaging the
// (area-weighted) normals of all faces sharing each vertex.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]].Position
		v1 := m.Vertices[f[1]].Position
		v2 := m.Vertices[f[2]].Position

		// Cross product length is proportional to face area, so leaving
		// it unnormalized weights large faces more.
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		m.Vertices[f[0]].Normal = m.Vertices[f[0]].Normal.Add(normal)
		m.Vertices[f[1]].Normal = m.Vertices[f[1]].Normal.Add(normal)
		m.Vertices[f[2]].Normal = m.Vertices[f[2]].Normal.Add(normal)
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Append copies all geometry from src into m, transformed by mat.
func (m *Mesh) Append(src *Mesh, mat math3d.Mat4) {
	base := len(m.Vertices)
	for _, v := range src.Vertices {
		m.Vertices = append(m.Vertices, Vertex{
			Position: mat.MulVec3(v.Position),
			Normal:   mat.MulVec3Dir(v.Normal).Normalize(),
			UV:       v.UV,
		})
	}
	for _, f := range src.Faces {
		m.Faces = append(m.Faces, [3]int{base + f[0], base + f[1], base + f[2]})
	}
}

// Merge combines several meshes into one, applying the matching transform
// to each. transforms may be nil, in which case all meshes are merged
// in place; otherwise it must be the same length as meshes.
func Merge(name string, meshes []*Mesh, transforms []math3d.Mat4) *Mesh {
	out := NewMesh(name)
	for i, src := range meshes {
		mat := math3d.Identity()
		if transforms != nil {
			mat = transforms[i]
		}
		out.Append(src, mat)
	}
	out.CalculateBounds()
	return out
}
