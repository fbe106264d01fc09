package vine

import (
	"math"
	"testing"

	"github.com/taigrr/ivy/pkg/math3d"
)

func TestSamplerConeContainment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 32
	cfg.Distribution = 45
	smp := newSampler(&cfg, keyedRand{seed: 3})

	// Fresh bud with no history grows straight up.
	bud := &Bud{Position: math3d.V3(1, 2, 3), PrevPosition: math3d.V3(1, 2, 3)}
	smp.generate(0, 1, bud)

	if len(bud.samples) != cfg.Samples {
		t.Fatalf("got %d samples, want %d", len(bud.samples), cfg.Samples)
	}

	cone := cfg.Distribution * math.Pi / 180
	for i, s := range bud.samples {
		offset := s.Sub(bud.Position)
		dist := offset.Len()
		if dist < cfg.MinStep || dist >= cfg.MinStep+cfg.MaxStep {
			t.Errorf("sample %d at distance %v, want [%v, %v)", i, dist, cfg.MinStep, cfg.MinStep+cfg.MaxStep)
		}
		angle := math.Acos(offset.Normalize().Y)
		if angle > cone+1e-9 {
			t.Errorf("sample %d at %v rad off axis, cone is %v", i, angle, cone)
		}
	}
}

func TestSamplerFollowsHeading(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Samples = 32
	cfg.Distribution = 30
	smp := newSampler(&cfg, keyedRand{seed: 3})

	// Heading along +X.
	bud := &Bud{Position: math3d.V3(5, 0, 0), PrevPosition: math3d.V3(4, 0, 0)}
	smp.generate(2, 1, bud)

	cone := cfg.Distribution * math.Pi / 180
	for i, s := range bud.samples {
		dir := s.Sub(bud.Position).Normalize()
		angle := math.Acos(dir.X)
		if angle > cone+1e-9 {
			t.Errorf("sample %d at %v rad off +X heading, cone is %v", i, angle, cone)
		}
	}
}

func TestSamplerDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	smp := newSampler(&cfg, keyedRand{seed: 9})

	a := &Bud{Position: math3d.V3(0, 1, 0)}
	b := &Bud{Position: math3d.V3(0, 1, 0)}
	smp.generate(4, 2, a)
	smp.generate(4, 2, b)

	for i := range a.samples {
		if a.samples[i] != b.samples[i] {
			t.Fatalf("sample %d differs across identical draws: %v vs %v", i, a.samples[i], b.samples[i])
		}
	}
}
