package geom

import (
	"math"
	"testing"

	"github.com/taigrr/ivy/pkg/math3d"
)

func quadMesh() *Mesh {
	m := NewMesh("quad")
	m.AddPlane(math3d.NewTransform(math3d.Zero3(), math3d.QuatIdentity()), 2, 2, 1, 1, false, true)
	return m
}

func TestAddPlaneCounts(t *testing.T) {
	tests := []struct {
		name         string
		segsX, segsY int
		doubleSided  bool
		wantVerts    int
		wantFaces    int
	}{
		{"single quad", 1, 1, false, 4, 2},
		{"double sided quad", 1, 1, true, 4, 4},
		{"2x3 grid", 2, 3, false, 12, 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMesh("plane")
			m.AddPlane(math3d.NewTransform(math3d.Zero3(), math3d.QuatIdentity()),
				1, 1, tc.segsX, tc.segsY, tc.doubleSided, true)

			if m.VertexCount() != tc.wantVerts {
				t.Errorf("vertices = %d, want %d", m.VertexCount(), tc.wantVerts)
			}
			if m.TriangleCount() != tc.wantFaces {
				t.Errorf("faces = %d, want %d", m.TriangleCount(), tc.wantFaces)
			}
		})
	}
}

func TestAddPlaneCentered(t *testing.T) {
	m := quadMesh()
	m.CalculateBounds()

	if m.Center().Len() > 1e-9 {
		t.Errorf("centered plane center = %v, want origin", m.Center())
	}
	size := m.Size()
	if math.Abs(size.X-2) > 1e-9 || math.Abs(size.Z-2) > 1e-9 {
		t.Errorf("size = %v, want 2x2 in XZ", size)
	}
}

func TestAddPlaneOrientation(t *testing.T) {
	// Rotate the plane so its normal points along +X.
	rot := math3d.AlignVectors(math3d.Up(), math3d.Right())
	m := NewMesh("wall")
	m.AddPlane(math3d.NewTransform(math3d.Zero3(), rot), 1, 1, 1, 1, false, true)

	for i, v := range m.Vertices {
		if v.Normal.Distance(math3d.Right()) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want +X", i, v.Normal)
		}
	}
}

func TestCircleProfile(t *testing.T) {
	profile := CircleProfile(8, 0.5)
	if len(profile) != 8 {
		t.Fatalf("profile length = %d, want 8", len(profile))
	}
	for i, p := range profile {
		r := math.Hypot(p.X, p.Y)
		if math.Abs(r-0.5) > 1e-9 {
			t.Errorf("point %d radius = %v, want 0.5", i, r)
		}
	}
}

func TestAddExtrusionCounts(t *testing.T) {
	path := []math3d.Transform{
		math3d.NewTransform(math3d.V3(0, 0, 0), math3d.QuatIdentity()),
		math3d.NewTransform(math3d.V3(0, 1, 0), math3d.QuatIdentity()),
		math3d.NewTransform(math3d.V3(0, 2, 0), math3d.QuatIdentity()),
	}
	profile := CircleProfile(8, 0.1)

	m := NewMesh("tube")
	m.AddExtrusion(path, profile)

	if got, want := m.VertexCount(), 3*8; got != want {
		t.Errorf("vertices = %d, want %d", got, want)
	}
	// Two triangles per profile edge per segment.
	if got, want := m.TriangleCount(), 2*8*2; got != want {
		t.Errorf("faces = %d, want %d", got, want)
	}
}

func TestAddExtrusionDegeneratePath(t *testing.T) {
	m := NewMesh("tube")
	m.AddExtrusion([]math3d.Transform{
		math3d.NewTransform(math3d.Zero3(), math3d.QuatIdentity()),
	}, CircleProfile(8, 0.1))

	if m.VertexCount() != 0 || m.TriangleCount() != 0 {
		t.Errorf("single-transform path emitted geometry: %d verts, %d faces",
			m.VertexCount(), m.TriangleCount())
	}
}

func TestAddExtrusionRingRadius(t *testing.T) {
	path := []math3d.Transform{
		math3d.NewTransform(math3d.V3(1, 2, 3), math3d.QuatIdentity()),
		math3d.NewTransform(math3d.V3(1, 3, 3), math3d.QuatIdentity()),
	}
	m := NewMesh("tube")
	m.AddExtrusion(path, CircleProfile(8, 0.25))

	for i := 0; i < 8; i++ {
		d := m.Vertices[i].Position.Distance(math3d.V3(1, 2, 3))
		if math.Abs(d-0.25) > 1e-9 {
			t.Errorf("ring vertex %d distance = %v, want 0.25", i, d)
		}
	}
}

func TestMergeWithTransforms(t *testing.T) {
	a := quadMesh()
	b := quadMesh()

	merged := Merge("env", []*Mesh{a, b}, []math3d.Mat4{
		math3d.Identity(),
		math3d.Translate(math3d.V3(10, 0, 0)),
	})

	if got, want := merged.VertexCount(), a.VertexCount()+b.VertexCount(); got != want {
		t.Fatalf("merged vertices = %d, want %d", got, want)
	}
	if got, want := merged.TriangleCount(), a.TriangleCount()+b.TriangleCount(); got != want {
		t.Fatalf("merged faces = %d, want %d", got, want)
	}

	merged.CalculateBounds()
	if merged.BoundsMax.X < 10 {
		t.Errorf("translated mesh not merged: max bounds %v", merged.BoundsMax)
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	m := quadMesh()
	// Scramble the normals, then recompute.
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.V3(1, 2, 3)
	}
	m.CalculateSmoothNormals()

	for i, v := range m.Vertices {
		if v.Normal.Distance(math3d.Up()) > 1e-9 {
			t.Errorf("vertex %d normal = %v, want +Y", i, v.Normal)
		}
	}
}

func TestClear(t *testing.T) {
	m := quadMesh()
	m.Clear()

	if m.VertexCount() != 0 || m.TriangleCount() != 0 {
		t.Errorf("clear left %d verts, %d faces", m.VertexCount(), m.TriangleCount())
	}
	if m.Name != "quad" {
		t.Errorf("clear dropped the name: %q", m.Name)
	}
}
