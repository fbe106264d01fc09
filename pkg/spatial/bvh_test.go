package spatial

import (
	"math"
	"testing"

	"github.com/taigrr/ivy/pkg/geom"
	"github.com/taigrr/ivy/pkg/math3d"
)

// groundMesh returns a size x size plane at y=0 with its normal along +Y.
func groundMesh(size float64, segs int) *geom.Mesh {
	m := geom.NewMesh("ground")
	m.AddPlane(math3d.NewTransform(math3d.Zero3(), math3d.QuatIdentity()),
		size, size, segs, segs, false, true)
	return m
}

func TestRaycastHitsGround(t *testing.T) {
	ix := NewIndex(groundMesh(10, 4))

	tests := []struct {
		name     string
		origin   math3d.Vec3
		dir      math3d.Vec3
		wantDist float64
	}{
		{"straight down", math3d.V3(0.3, 5, 0.2), math3d.Down(), 5},
		{"from higher", math3d.V3(-2, 8, 1), math3d.Down(), 8},
		{"near edge", math3d.V3(4.5, 1, -4.5), math3d.Down(), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := ix.Raycast(tc.origin, tc.dir, 0, 100)
			if !ok {
				t.Fatal("expected a hit")
			}
			if math.Abs(hit.Distance-tc.wantDist) > 1e-9 {
				t.Errorf("distance = %v, want %v", hit.Distance, tc.wantDist)
			}
			if hit.Normal.Distance(math3d.Up()) > 1e-9 {
				t.Errorf("normal = %v, want +Y", hit.Normal)
			}
			if math.Abs(hit.Position.Y) > 1e-9 {
				t.Errorf("hit position %v not on plane", hit.Position)
			}
		})
	}
}

func TestRaycastMisses(t *testing.T) {
	ix := NewIndex(groundMesh(10, 4))

	tests := []struct {
		name       string
		origin     math3d.Vec3
		dir        math3d.Vec3
		tMin, tMax float64
	}{
		{"pointing away", math3d.V3(0, 5, 0), math3d.Up(), 0, 100},
		{"beyond tMax", math3d.V3(0, 5, 0), math3d.Down(), 0, 4.9},
		{"before tMin", math3d.V3(0, 5, 0), math3d.Down(), 5.1, 100},
		{"off the plane", math3d.V3(50, 5, 0), math3d.Down(), 0, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := ix.Raycast(tc.origin, tc.dir, tc.tMin, tc.tMax); ok {
				t.Error("expected a miss")
			}
		})
	}
}

func TestClosestPointOnPlane(t *testing.T) {
	ix := NewIndex(groundMesh(10, 4))

	tests := []struct {
		name     string
		point    math3d.Vec3
		want     math3d.Vec3
		wantDist float64
	}{
		{"above center", math3d.V3(0, 2, 0), math3d.V3(0, 0, 0), 2},
		{"below", math3d.V3(1, -3, 1), math3d.V3(1, 0, 1), 3},
		{"beyond edge", math3d.V3(6, 0, 0), math3d.V3(5, 0, 0), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hit, ok := ix.ClosestPoint(tc.point, 100)
			if !ok {
				t.Fatal("expected a result")
			}
			if hit.Position.Distance(tc.want) > 1e-9 {
				t.Errorf("position = %v, want %v", hit.Position, tc.want)
			}
			if math.Abs(hit.Distance-tc.wantDist) > 1e-9 {
				t.Errorf("distance = %v, want %v", hit.Distance, tc.wantDist)
			}
		})
	}
}

func TestClosestPointRespectsMaxDist(t *testing.T) {
	ix := NewIndex(groundMesh(10, 4))

	if _, ok := ix.ClosestPoint(math3d.V3(0, 5, 0), 4); ok {
		t.Error("expected no result beyond maxDist")
	}
	if _, ok := ix.ClosestPoint(math3d.V3(0, 5, 0), 6); !ok {
		t.Error("expected a result within maxDist")
	}
}

func TestEmptyIndex(t *testing.T) {
	ix := NewIndex(geom.NewMesh("empty"))

	if _, ok := ix.Raycast(math3d.V3(0, 1, 0), math3d.Down(), 0, 10); ok {
		t.Error("raycast on empty index returned a hit")
	}
	if _, ok := ix.ClosestPoint(math3d.Zero3(), 10); ok {
		t.Error("closest point on empty index returned a result")
	}
}

func TestRaycastManyTriangles(t *testing.T) {
	// A finer grid exercises the interior BVH nodes.
	ix := NewIndex(groundMesh(20, 32))

	hit, ok := ix.Raycast(math3d.V3(3.17, 2, -7.42), math3d.Down(), 0, 10)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(hit.Distance-2) > 1e-9 {
		t.Errorf("distance = %v, want 2", hit.Distance)
	}
}

func BenchmarkRaycast(b *testing.B) {
	ix := NewIndex(groundMesh(20, 64))
	origin := math3d.V3(1.3, 5, -2.7)

	for b.Loop() {
		_, _ = ix.Raycast(origin, math3d.Down(), 0, 100)
	}
}

func BenchmarkClosestPoint(b *testing.B) {
	ix := NewIndex(groundMesh(20, 64))
	p := math3d.V3(1.3, 2, -2.7)

	for b.Loop() {
		_, _ = ix.ClosestPoint(p, 100)
	}
}
