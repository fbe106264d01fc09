package vine

import (
	"math"

	"github.com/taigrr/ivy/pkg/math3d"
)

// sampler generates candidate next positions inside a cone around each
// tip's growth direction. All randomness is keyed by (step, bud, sample)
// so identical inputs always produce identical candidates.
type sampler struct {
	rng     keyedRand
	samples int
	// cone is the half-angle in radians.
	cone    float64
	minStep float64
	maxStep float64
}

func newSampler(cfg *Config, rng keyedRand) sampler {
	return sampler{
		rng:     rng,
		samples: cfg.Samples,
		cone:    cfg.Distribution * math.Pi / 180,
		minStep: cfg.MinStep,
		maxStep: cfg.MaxStep,
	}
}

// generate fills bud.samples with candidate positions for this step.
// The spherical draw is made around world up and then rotated onto the
// bud's heading, so the cone always opens along the growth direction.
func (s sampler) generate(step, budIndex int, bud *Bud) {
	if cap(bud.samples) < s.samples {
		bud.samples = make([]math3d.Vec3, s.samples)
		bud.scores = make([]float64, s.samples)
	}
	bud.samples = bud.samples[:s.samples]
	bud.scores = bud.scores[:s.samples]

	align := math3d.AlignVectors(math3d.Up(), bud.Direction())

	for n := range bud.samples {
		polar := s.rng.unit(uint64(step), uint64(budIndex), uint64(n), saltPolar) * s.cone
		azimuth := s.rng.unit(uint64(step), uint64(budIndex), uint64(n), saltAzimuth) * 2 * math.Pi
		distance := s.minStep + s.rng.unit(uint64(step), uint64(budIndex), uint64(n), saltDistance)*s.maxStep

		offset := math3d.SphereToCartesian(distance, polar, azimuth)
		bud.samples[n] = bud.Position.Add(align.Rotate(offset))
	}
}
