package vine

import (
	"github.com/taigrr/ivy/pkg/math3d"
	"github.com/taigrr/ivy/pkg/spatial"
)

// halfSpaceEpsilon rejects samples lying on or behind the nearest
// surface plane.
const halfSpaceEpsilon = 1e-9

// shadowBias offsets shadow-ray origins off the sampled point so a
// surface never occludes itself.
const shadowBias = 1e-4

// quadraticCutoff zeroes quadratic light contributions too dim to
// matter.
const quadraticCutoff = 0.01

// evaluator scores candidate positions. Two criteria combine
// additively, each pre-scaled by 0.5: environment proximity (stay close
// to a surface, but in front of it) and light visibility (prefer
// unshadowed positions). The light term is gated on a positive distance
// score; a sample behind or away from every surface scores zero no
// matter how well lit it is.
type evaluator struct {
	cfg       *Config
	collision *spatial.Index
	shadow    *spatial.Index
}

// score computes the combined fitness of one sample. As a side effect a
// successful environment query records the contact point and normal on
// the bud for later use (self-collision offset, leaf orientation).
func (e *evaluator) score(bud *Bud, sample math3d.Vec3) float64 {
	ds := e.distanceScore(bud, sample)
	if ds <= 0 {
		return 0
	}
	return ds + e.lightScore(sample)
}

// distanceScore queries the nearest environment point and scores the
// sample by its clearance in front of that surface: 0.5*(1 - d/max)
// when the sample lies on the normal side within MaxSceneSize, else 0.
func (e *evaluator) distanceScore(bud *Bud, sample math3d.Vec3) float64 {
	hit, ok := e.collision.ClosestPoint(sample, e.cfg.MaxSceneSize)
	if !ok {
		return 0
	}

	// Recorded on every valid query, not just winning samples; readers
	// treat these as "most recently queried".
	bud.SurfacePoint = hit.Position
	bud.SurfaceNormal = hit.Normal
	bud.HasSurface = true

	fromPlane := sample.Sub(hit.Position)
	dist := fromPlane.Len()
	if fromPlane.Dot(hit.Normal) <= halfSpaceEpsilon || dist > e.cfg.MaxSceneSize {
		return 0
	}
	return 0.5 * (1 - dist/e.cfg.MaxSceneSize)
}

// lightScore averages visibility over the configured point lights and
// adds the sun term when a sun direction is set. The result is
// pre-scaled by 0.5 to pair with the distance score.
func (e *evaluator) lightScore(sample math3d.Vec3) float64 {
	var sum float64
	for _, l := range e.cfg.Lights {
		toLight := l.Position.Sub(sample)
		dist := toLight.Len()
		if dist == 0 {
			continue
		}
		dir := toLight.Scale(1 / dist)
		if _, blocked := e.shadow.Raycast(sample, dir, shadowBias, dist); blocked {
			continue
		}
		if e.cfg.QuadraticFalloff {
			c := l.Intensity / (dist * dist) / e.cfg.MaxSceneSize
			if c < quadraticCutoff {
				c = 0
			}
			sum += c
		} else {
			sum += 1
		}
	}

	var score float64
	if n := len(e.cfg.Lights); n > 0 {
		score = sum / float64(n)
	}

	if e.cfg.SunDirection.LenSq() > 0 {
		toSun := e.cfg.SunDirection.Normalize().Negate()
		if _, blocked := e.shadow.Raycast(sample, toSun, shadowBias, e.cfg.MaxSceneSize); !blocked {
			score += 1 / float64(len(e.cfg.Lights)+1)
		}
	}

	return 0.5 * score
}

// bestSample returns the index of the highest-scoring sample, resolving
// ties to the lowest index, along with its score.
func bestSample(scores []float64) (int, float64) {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best, scores[best]
}
