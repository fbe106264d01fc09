package math3d

import (
	"testing"
)

func BenchmarkAlignVectors(b *testing.B) {
	a := V3(0, 1, 0)
	target := V3(1, 2, -1).Normalize()

	for b.Loop() {
		_ = AlignVectors(a, target)
	}
}

func BenchmarkQuatRotate(b *testing.B) {
	q := AlignVectors(V3(0, 1, 0), V3(1, 2, -1).Normalize())
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = q.Rotate(v)
	}
}

func BenchmarkSphereToCartesian(b *testing.B) {
	for b.Loop() {
		_ = SphereToCartesian(1.5, 0.7, 2.1)
	}
}

func BenchmarkVec3Normalize(b *testing.B) {
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = v.Normalize()
	}
}

func BenchmarkVec3Cross(b *testing.B) {
	v1 := V3(1, 2, 3)
	v2 := V3(4, 5, 6)

	for b.Loop() {
		_ = v1.Cross(v2)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}
