package vine

import (
	"fmt"

	"github.com/taigrr/ivy/pkg/math3d"
)

// Light is a point light used by the light-visibility score.
type Light struct {
	Position  math3d.Vec3
	Intensity float64
}

// Config holds every growth parameter. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// Seeds are the world positions growth starts from. An empty seed
	// list yields a no-op run.
	Seeds []math3d.Vec3

	// SunDirection is the direction sunlight travels (from the sun
	// toward the scene). The zero vector disables the sun term.
	SunDirection math3d.Vec3

	// Lights are the point lights tips grow toward.
	Lights []Light

	// QuadraticFalloff switches point-light contributions from a flat
	// 1.0 per visible light to intensity/distance² attenuation.
	QuadraticFalloff bool

	// Steps is the number of growth iterations.
	Steps int

	// Samples is the number of candidate positions evaluated per tip
	// per step.
	Samples int

	// Distribution is the sampling cone half-angle in degrees around
	// the current growth direction.
	Distribution float64

	// MinStep and MaxStep bound the distance of a candidate from the
	// tip: distance = MinStep + rand*MaxStep.
	MinStep float64
	MaxStep float64

	// BudChance is the per-step probability that a tip spawns a dormant
	// lateral bud. BranchChance is the independent probability that a
	// freshly spawned lateral activates immediately.
	BudChance    float64
	BranchChance float64

	// BranchThickness scales the branch cross-section radius, in world
	// units.
	BranchThickness float64

	// LeafSize is the foliage plane edge length. LeafChance is the
	// per-step probability that a tip places a leaf.
	LeafSize   float64
	LeafChance float64

	// MaxSceneSize bounds environment distance queries and normalizes
	// the distance score.
	MaxSceneSize float64

	// Seed keys the deterministic pseudo-random draws. Identical seeds,
	// configuration, and environment reproduce identical vines.
	Seed uint64
}

// DefaultConfig returns the parameter set tuned for wall-crawling ivy on
// a roughly room-sized scene.
func DefaultConfig() Config {
	return Config{
		Steps:           20,
		Samples:         16,
		Distribution:    45,
		MinStep:         0.10,
		MaxStep:         0.15,
		BudChance:       0.3,
		BranchChance:    0.15,
		BranchThickness: 0.04,
		LeafSize:        0.12,
		LeafChance:      0.3,
		MaxSceneSize:    10,
		Seed:            1,
	}
}

// Validate rejects configurations the growth loop cannot run with.
func (c Config) Validate() error {
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", c.Steps)
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", c.Samples)
	}
	if c.MaxSceneSize <= 0 {
		return fmt.Errorf("max scene size must be positive, got %v", c.MaxSceneSize)
	}
	if c.MinStep < 0 || c.MaxStep <= 0 {
		return fmt.Errorf("step distances must be positive, got min %v max %v", c.MinStep, c.MaxStep)
	}
	return nil
}
