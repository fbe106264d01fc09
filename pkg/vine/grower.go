package vine

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/taigrr/ivy/pkg/geom"
	"github.com/taigrr/ivy/pkg/math3d"
	"github.com/taigrr/ivy/pkg/spatial"
)

// emitThicknessFloor is the smallest normalized thickness ever used when
// emitting branch geometry, so late branches keep a visible cross-section.
const emitThicknessFloor = 0.30

// profilePoints is the branch cross-section resolution, an 8-point
// approximate circle.
const profilePoints = 8

// ErrNoColliders is returned by Grow when the collision index has not
// been built.
var ErrNoColliders = errors.New("vine: environment colliders not built; call RebuildColliders first")

// Grower runs the space-competition growth simulation over a prepared
// environment and accumulates branch and leaf meshes.
//
// The per-step loop is: sample generation and fitness scoring map in
// parallel over the active front (each worker owns one bud's scratch),
// then commits, branching, reiteration, and geometry emission run
// sequentially, since each bud's self-collision query sees the geometry
// emitted by the buds before it.
type Grower struct {
	cfg Config
	rng keyedRand

	envMeshes     []*geom.Mesh
	envTransforms []math3d.Mat4

	collisionMesh *geom.Mesh
	collision     *spatial.Index
	shadow        *spatial.Index

	tree   *Tree
	active []int
	// grownOrder lists every bud that was ever active, in activation
	// order; final emission walks it.
	grownOrder []int

	branches    *geom.Mesh
	leaves      *geom.Mesh
	branchIndex *spatial.Index
	// indexedFaces counts how many branch-mesh faces branchIndex covers;
	// faces beyond it were emitted this step and are tested linearly so
	// later buds see geometry from earlier buds in the same step.
	indexedFaces int

	stepsRun int
}

// NewGrower creates a grower with the given configuration.
func NewGrower(cfg Config) *Grower {
	return &Grower{
		cfg:      cfg,
		rng:      keyedRand{seed: cfg.Seed},
		tree:     NewTree(),
		branches: geom.NewMesh("branches"),
		leaves:   geom.NewMesh("leaves"),
	}
}

// SetEnvironment registers the environment meshes growth crawls over.
// transforms may be nil or must match meshes in length. Takes effect on
// the next RebuildColliders call.
func (g *Grower) SetEnvironment(meshes []*geom.Mesh, transforms []math3d.Mat4) {
	g.envMeshes = meshes
	g.envTransforms = transforms
}

// RebuildColliders merges the environment meshes and builds the
// acceleration structures used for collision and shadow queries. This is
// the one-shot rebuild action; calling it again is only needed after
// SetEnvironment changes.
func (g *Grower) RebuildColliders() error {
	if len(g.envMeshes) == 0 {
		return errors.New("vine: no environment meshes set")
	}
	if g.envTransforms != nil && len(g.envTransforms) != len(g.envMeshes) {
		return fmt.Errorf("vine: %d transforms for %d meshes", len(g.envTransforms), len(g.envMeshes))
	}

	g.collisionMesh = geom.Merge("environment", g.envMeshes, g.envTransforms)
	g.collision = spatial.NewIndex(g.collisionMesh)
	// The same merged environment occludes light rays.
	g.shadow = g.collision
	return nil
}

// Grow runs the full simulation: Steps iterations or until the active
// front empties, then a final clean re-emission of all branch geometry
// from the accumulated growth history. It is the one-shot growth action;
// each call restarts from the seeds.
func (g *Grower) Grow() error {
	if err := g.cfg.Validate(); err != nil {
		return err
	}
	if g.collision == nil {
		return ErrNoColliders
	}

	g.reset()
	if len(g.active) == 0 {
		return nil
	}

	eval := &evaluator{cfg: &g.cfg, collision: g.collision, shadow: g.shadow}
	smp := newSampler(&g.cfg, g.rng)

	for step := 0; step < g.cfg.Steps && len(g.active) > 0; step++ {
		g.runStep(step, smp, eval)
		g.stepsRun++
	}

	g.emitBranches()
	return nil
}

// reset rebuilds the tree from the seed list and clears accumulated
// meshes, so Grow is repeatable.
func (g *Grower) reset() {
	g.tree = NewTree()
	g.active = g.active[:0]
	g.grownOrder = g.grownOrder[:0]
	g.branches.Clear()
	g.leaves.Clear()
	g.branchIndex = nil
	g.indexedFaces = 0
	g.stepsRun = 0

	for _, seed := range g.cfg.Seeds {
		i := g.tree.NewBud(g.tree.Root(), seed)
		g.activate(i)
	}
}

// activate marks a bud as part of the growth front and records it in the
// permanent grown list.
func (g *Grower) activate(i int) {
	bud := g.tree.At(i)
	bud.Active = true
	bud.grown = true
	g.active = append(g.active, i)
	g.grownOrder = append(g.grownOrder, i)
}

// runStep executes one growth iteration over the current active front.
func (g *Grower) runStep(step int, smp sampler, eval *evaluator) {
	// Phase 1, parallel: every active bud samples and scores
	// independently. Each unit writes only its own bud's scratch.
	front := g.active
	parallelFor(len(front), func(n int) {
		bud := g.tree.At(front[n])
		smp.generate(step, front[n], bud)
		for s, sample := range bud.samples {
			bud.scores[s] = eval.score(bud, sample)
		}
	})

	// Phase 2, sequential: commits, reiteration, branching, emission.
	next := make([]int, 0, len(front))
	for _, i := range front {
		bud := g.tree.At(i)
		best, score := bestSample(bud.scores)

		if score == 0 {
			// The tip starved. Retry from the earliest dormant branch
			// point beneath it instead of killing the whole limb.
			bud.Active = false
			if r := g.tree.NextUntried(i); r >= 0 {
				g.activateInto(r, &next)
			}
			continue
		}

		g.commit(step, i, bud.samples[best])
		next = append(next, i)

		if lateral := g.spawnLateral(step, i); lateral >= 0 {
			g.activateInto(lateral, &next)
		}
		g.maybePlaceLeaf(step, i)
	}
	g.active = next

	// The provisional tube segments emitted this step join the
	// self-collision index for the next one.
	if g.branches.TriangleCount() > 0 {
		g.branchIndex = spatial.NewIndex(g.branches)
	}
	g.indexedFaces = g.branches.TriangleCount()
}

// selfBlocked reports whether a segment from origin along dir hits the
// vine's own tube geometry. Faces emitted earlier in the current step
// are not in branchIndex yet and are tested directly.
func (g *Grower) selfBlocked(origin, dir math3d.Vec3, segLen float64) bool {
	if g.branchIndex != nil {
		if _, ok := g.branchIndex.Raycast(origin, dir, shadowBias, segLen); ok {
			return true
		}
	}
	for f := g.indexedFaces; f < len(g.branches.Faces); f++ {
		a, b, c := g.branches.Triangle(f)
		if t, ok := spatial.RayTriangle(origin, dir, a, b, c); ok && t >= shadowBias && t <= segLen {
			return true
		}
	}
	return false
}

// activateInto activates bud i and adds it to the pending next front.
func (g *Grower) activateInto(i int, next *[]int) {
	bud := g.tree.At(i)
	bud.Active = true
	bud.grown = true
	*next = append(*next, i)
	g.grownOrder = append(g.grownOrder, i)
}

// commit advances the bud to its winning sample, corrects for
// self-collision, appends the growth transform, emits a provisional tube
// segment, and decays thickness.
func (g *Grower) commit(step, i int, winner math3d.Vec3) {
	bud := g.tree.At(i)

	bud.PrevPosition = bud.Position
	bud.Position = winner

	seg := bud.Position.Sub(bud.PrevPosition)
	segLen := seg.Len()
	dir := seg.Normalize()

	// One offset correction against the vine's own geometry: if the new
	// segment runs into an earlier branch, push the tip off along the
	// last recorded surface normal.
	if segLen > 0 && bud.HasSurface && g.selfBlocked(bud.PrevPosition, dir, segLen) {
		bud.Position = bud.Position.Add(bud.SurfaceNormal.Scale(g.cfg.BranchThickness))
		dir = bud.Direction()
	}

	orient := math3d.AlignVectors(math3d.Up(), dir)
	bud.Growth = append(bud.Growth, math3d.NewTransform(bud.PrevPosition, orient))

	// Provisional segment for live self-collision queries only; the
	// final mesh is rebuilt from growth history after the run.
	radius := emitRadius(bud.Thickness, g.cfg.BranchThickness)
	g.branches.AddExtrusion([]math3d.Transform{
		math3d.NewTransform(bud.PrevPosition, orient),
		math3d.NewTransform(bud.Position, orient),
	}, geom.CircleProfile(profilePoints, radius))

	bud.Thickness = 1 - float64(step)/float64(g.cfg.Steps)
}

// spawnLateral rolls the per-step branching chances: BudChance creates a
// dormant lateral at the tip's position, and BranchChance activates it
// immediately. Returns the activated lateral's index or -1.
func (g *Grower) spawnLateral(step, i int) int {
	if g.rng.unit(uint64(step), uint64(i), saltBud) >= g.cfg.BudChance {
		return -1
	}
	lateral := g.tree.NewBud(i, g.tree.At(i).Position)
	if g.rng.unit(uint64(step), uint64(i), saltBranch) >= g.cfg.BranchChance {
		return -1
	}
	return lateral
}

// maybePlaceLeaf rolls LeafChance and, on success, places a foliage
// plane just off the recorded environment surface. The surface normal is
// jittered for variety and tilted toward world down so leaves droop.
func (g *Grower) maybePlaceLeaf(step, i int) {
	bud := g.tree.At(i)
	if !bud.HasSurface {
		return
	}
	if g.rng.unit(uint64(step), uint64(i), saltLeaf) >= g.cfg.LeafChance {
		return
	}

	jitter := math3d.V3(
		g.rng.unit(uint64(step), uint64(i), saltJitterX)-0.5,
		g.rng.unit(uint64(step), uint64(i), saltJitterY)-0.5,
		g.rng.unit(uint64(step), uint64(i), saltJitterZ)-0.5,
	).Scale(0.4)

	normal := bud.SurfaceNormal.Add(jitter).Normalize()
	pos := bud.SurfacePoint.Add(normal.Scale(g.cfg.LeafSize / 2))
	facing := normal.Add(math3d.Down().Scale(0.5)).Normalize()
	orient := math3d.AlignVectors(math3d.Up(), facing)

	g.leaves.AddPlane(math3d.NewTransform(pos, orient),
		g.cfg.LeafSize, g.cfg.LeafSize, 1, 1, true, true)
}

// emitBranches rebuilds the branch mesh from scratch out of every bud
// that was ever active, sweeping each bud's full transform path. The
// per-step provisional segments only existed for self-collision; this
// pass produces the clean final tubes.
func (g *Grower) emitBranches() {
	g.branches.Clear()
	for _, i := range g.grownOrder {
		bud := g.tree.At(i)
		if len(bud.Growth) == 0 {
			continue
		}

		// Close the tube at the tip with a final ring at the committed
		// position.
		path := make([]math3d.Transform, len(bud.Growth), len(bud.Growth)+1)
		copy(path, bud.Growth)
		path = append(path, math3d.NewTransform(bud.Position, bud.Growth[len(bud.Growth)-1].Rotation))

		radius := emitRadius(bud.Thickness, g.cfg.BranchThickness)
		g.branches.AddExtrusion(path, geom.CircleProfile(profilePoints, radius))
	}
	g.branches.CalculateSmoothNormals()
	g.branches.CalculateBounds()
	g.leaves.CalculateBounds()
}

// emitRadius converts normalized thickness to a world-space cross-section
// radius, never letting it collapse below the emission floor.
func emitRadius(thickness, branchThickness float64) float64 {
	if thickness < emitThicknessFloor {
		thickness = emitThicknessFloor
	}
	return thickness * branchThickness
}

// Branches returns the final branch mesh. Valid after Grow.
func (g *Grower) Branches() *geom.Mesh { return g.branches }

// Leaves returns the foliage mesh. Valid after Grow.
func (g *Grower) Leaves() *geom.Mesh { return g.leaves }

// Environment returns the merged collision mesh. Valid after
// RebuildColliders.
func (g *Grower) Environment() *geom.Mesh { return g.collisionMesh }

// Tree exposes the bud forest, mainly for inspection and tests.
func (g *Grower) Tree() *Tree { return g.tree }

// StepsRun reports how many growth iterations actually executed.
func (g *Grower) StepsRun() int { return g.stepsRun }

// ActiveCount reports the size of the current growth front.
func (g *Grower) ActiveCount() int { return len(g.active) }

// parallelFor runs fn(0..n-1) across GOMAXPROCS workers. Each index is
// processed exactly once; fn must only touch state owned by its index.
func parallelFor(n int, fn func(i int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
