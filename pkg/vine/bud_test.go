package vine

import (
	"testing"

	"github.com/taigrr/ivy/pkg/math3d"
)

func TestTreeNewBud(t *testing.T) {
	tree := NewTree()
	if tree.Len() != 1 {
		t.Fatalf("fresh tree has %d buds, want 1 (root)", tree.Len())
	}

	a := tree.NewBud(tree.Root(), math3d.V3(1, 0, 0))
	b := tree.NewBud(a, math3d.V3(1, 1, 0))

	if tree.At(a).Parent != tree.Root() {
		t.Errorf("bud a parent = %d, want root", tree.At(a).Parent)
	}
	if tree.At(b).Parent != a {
		t.Errorf("bud b parent = %d, want %d", tree.At(b).Parent, a)
	}
	if got := tree.At(a).Children; len(got) != 1 || got[0] != b {
		t.Errorf("bud a children = %v, want [%d]", got, b)
	}
	if !tree.WellFormed() {
		t.Error("tree not well formed after inserts")
	}
}

func TestTreeThicknessInherited(t *testing.T) {
	tree := NewTree()
	a := tree.NewBud(tree.Root(), math3d.V3(0, 0, 0))
	tree.At(a).Thickness = 0.6
	b := tree.NewBud(a, math3d.V3(0, 1, 0))

	if got := tree.At(b).Thickness; got != 0.6 {
		t.Errorf("child thickness = %v, want parent's 0.6", got)
	}
}

func TestNextUntried(t *testing.T) {
	// root -> a -> {b, c}; b -> d. Depth-first in insertion order means
	// exhausted b yields d before c.
	tree := NewTree()
	a := tree.NewBud(tree.Root(), math3d.V3(0, 0, 0))
	b := tree.NewBud(a, math3d.V3(0, 1, 0))
	c := tree.NewBud(a, math3d.V3(1, 0, 0))
	d := tree.NewBud(b, math3d.V3(0, 2, 0))
	tree.At(a).grown = true

	if got := tree.NextUntried(a); got != b {
		t.Fatalf("NextUntried = %d, want first child %d", got, b)
	}
	tree.At(b).grown = true
	if got := tree.NextUntried(a); got != d {
		t.Fatalf("NextUntried = %d, want grandchild %d before sibling", got, d)
	}
	tree.At(d).grown = true
	if got := tree.NextUntried(a); got != c {
		t.Fatalf("NextUntried = %d, want %d", got, c)
	}
	tree.At(c).grown = true
	if got := tree.NextUntried(a); got != -1 {
		t.Fatalf("NextUntried on exhausted subtree = %d, want -1", got)
	}
}

func TestBudDirection(t *testing.T) {
	tests := []struct {
		name     string
		bud      Bud
		expected math3d.Vec3
	}{
		{"no history defaults up", Bud{Position: math3d.V3(3, 3, 3), PrevPosition: math3d.V3(3, 3, 3)}, math3d.Up()},
		{"along x", Bud{Position: math3d.V3(2, 0, 0), PrevPosition: math3d.V3(1, 0, 0)}, math3d.V3(1, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bud.Direction(); got.Sub(tc.expected).Len() > 1e-9 {
				t.Errorf("Direction() = %v, want %v", got, tc.expected)
			}
		})
	}
}
