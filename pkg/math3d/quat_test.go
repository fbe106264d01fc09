package math3d

import (
	"math"
	"testing"
)

func TestAlignVectorsMapsAOntoB(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
	}{
		{"up to x", V3(0, 1, 0), V3(1, 0, 0)},
		{"up to diagonal", V3(0, 1, 0), V3(1, 1, 1).Normalize()},
		{"x to z", V3(1, 0, 0), V3(0, 0, 1)},
		{"identical", V3(0, 1, 0), V3(0, 1, 0)},
		{"nearly opposite", V3(0, 1, 0), V3(1e-7, -1, 0).Normalize()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := AlignVectors(tc.a, tc.b)
			got := q.Rotate(tc.a)
			if got.Distance(tc.b) > 1e-6 {
				t.Errorf("rotated %v to %v, want %v", tc.a, got, tc.b)
			}
		})
	}
}

func TestAlignVectorsAntiparallel(t *testing.T) {
	a := V3(0, 1, 0)
	b := V3(0, -1, 0)

	q := AlignVectors(a, b)
	got := q.Rotate(a)

	// The axis choice is arbitrary but the rotation must still map a to b.
	if got.Distance(b) > 1e-9 {
		t.Errorf("rotated %v to %v, want %v", a, got, b)
	}
}

func TestAlignVectorsUnitResult(t *testing.T) {
	q := AlignVectors(V3(0, 1, 0), V3(1, 0, 1).Normalize())
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if math.Abs(l-1) > 1e-9 {
		t.Errorf("quaternion length = %v, want 1", l)
	}
}

func TestQuatRotatePreservesLength(t *testing.T) {
	q := AlignVectors(V3(0, 1, 0), V3(1, 2, -1).Normalize())
	v := V3(3, -4, 12)

	got := q.Rotate(v)
	if math.Abs(got.Len()-v.Len()) > 1e-9 {
		t.Errorf("rotation changed length: %v -> %v", v.Len(), got.Len())
	}
}

func TestQuatMulCompose(t *testing.T) {
	up := V3(0, 1, 0)
	x := V3(1, 0, 0)
	z := V3(0, 0, 1)

	q1 := AlignVectors(up, x)
	q2 := AlignVectors(x, z)

	got := q2.Mul(q1).Rotate(up)
	if got.Distance(z) > 1e-9 {
		t.Errorf("composed rotation gave %v, want %v", got, z)
	}
}

func TestTransformApply(t *testing.T) {
	tr := NewTransform(V3(1, 2, 3), AlignVectors(V3(0, 1, 0), V3(1, 0, 0)))

	got := tr.Apply(V3(0, 1, 0))
	want := V3(2, 2, 3)
	if got.Distance(want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}
