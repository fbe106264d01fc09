// Package vine implements the growth simulation: buds sample candidate
// positions around their heading, score them against the environment for
// clearance and light, and commit the best one, branching and shedding
// leaves along the way.
package vine

import (
	"github.com/taigrr/ivy/pkg/math3d"
)

// Bud is a growth tip or a dormant branch point. Buds live in a Tree
// arena and reference each other by index, never by pointer, so the
// structure stays an acyclic forest with single ownership.
type Bud struct {
	// Position and PrevPosition are the current and previous committed
	// locations. Their difference is the growth direction.
	Position     math3d.Vec3
	PrevPosition math3d.Vec3

	// Active marks the bud as part of the current growth front.
	Active bool

	// Parent is the arena index of the bud this one branched from, or
	// -1 for the synthetic root.
	Parent int

	// Children are arena indices in spawn order.
	Children []int

	// Thickness is the normalized cross-section scale. It only ever
	// decreases while the bud is active and is floored at emission time.
	Thickness float64

	// Growth is the committed extrusion path, one transform per
	// committed step.
	Growth []math3d.Transform

	// SurfacePoint and SurfaceNormal are the most recent environment
	// contact recorded during distance scoring. They are "last queried",
	// not "best sample's": the scoring loop overwrites them per sample.
	SurfacePoint  math3d.Vec3
	SurfaceNormal math3d.Vec3
	HasSurface    bool

	// Per-step scratch, owned exclusively by this bud during the
	// parallel evaluation phase.
	samples []math3d.Vec3
	scores  []float64

	// grown records whether this bud was ever activated. Reiteration
	// only considers never-grown buds.
	grown bool
}

// Direction returns the normalized growth direction, or world up for a
// bud with no history yet (a fresh seed or lateral).
func (b *Bud) Direction() math3d.Vec3 {
	d := b.Position.Sub(b.PrevPosition)
	if d.LenSq() == 0 {
		return math3d.Up()
	}
	return d.Normalize()
}

// Tree is an arena of buds forming a forest under one synthetic root.
// The root (index 0) is inactive, sits at the origin, and parents every
// seed; it never grows itself.
type Tree struct {
	buds []Bud
}

// NewTree creates a tree containing only the root bud.
func NewTree() *Tree {
	return &Tree{
		buds: []Bud{{Parent: -1, Thickness: 1}},
	}
}

// Root returns the arena index of the synthetic root.
func (t *Tree) Root() int { return 0 }

// Len returns the number of buds including the root.
func (t *Tree) Len() int { return len(t.buds) }

// At returns the bud at arena index i. The pointer stays valid until the
// next NewBud call.
func (t *Tree) At(i int) *Bud { return &t.buds[i] }

// NewBud appends an inactive bud at pos as a child of parent and returns
// its arena index.
func (t *Tree) NewBud(parent int, pos math3d.Vec3) int {
	i := len(t.buds)
	t.buds = append(t.buds, Bud{
		Position:     pos,
		PrevPosition: pos,
		Parent:       parent,
		Thickness:    t.buds[parent].Thickness,
	})
	t.buds[parent].Children = append(t.buds[parent].Children, i)
	return i
}

// NextUntried walks the subtree rooted at i depth-first in child
// insertion order and returns the first bud that has never been
// activated, or -1 when the subtree is exhausted. This is the
// reiteration policy: when a tip dies, growth resumes at the earliest
// dormant decision point beneath it.
func (t *Tree) NextUntried(i int) int {
	for _, c := range t.buds[i].Children {
		if !t.buds[c].grown {
			return c
		}
		if found := t.NextUntried(c); found >= 0 {
			return found
		}
	}
	return -1
}

// WellFormed checks the forest invariants: every non-root bud has
// exactly one parent that lists it as a child, and walking parent links
// always terminates at the root.
func (t *Tree) WellFormed() bool {
	for i := 1; i < len(t.buds); i++ {
		p := t.buds[i].Parent
		if p < 0 || p >= len(t.buds) {
			return false
		}
		listed := false
		for _, c := range t.buds[p].Children {
			if c == i {
				listed = true
				break
			}
		}
		if !listed {
			return false
		}
		// Parent indices are always smaller than child indices in an
		// append-only arena, so any cycle would show as a non-decreasing
		// hop.
		if p >= i {
			return false
		}
	}
	return true
}
