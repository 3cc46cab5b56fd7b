// Package random draws samples from the engine's distributions.
//
// A Generator owns a seeded PCG source. Samplers are gonum distuv distributions
// sharing that source, so a seed fixes every sample drawn from the generator.
package random

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMaxRedraws bounds the redraws of one truncated normal sample.
const DefaultMaxRedraws = 1000

// Generator is a seeded pseudo-random source. It is safe for concurrent use;
// draws are serialized so the sequence for a seed is reproducible.
type Generator struct {
	mu         sync.Mutex
	src        *rand.PCG
	seed       uint64
	maxRedraws int
}

// New creates a generator with the given seed.
func New(seed uint64) *Generator {
	return &Generator{
		src:        rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		seed:       seed,
		maxRedraws: DefaultMaxRedraws,
	}
}

// Seed returns the generator's seed.
func (g *Generator) Seed() uint64 { return g.seed }

// Reseed restarts the generator's sequence from seed.
func (g *Generator) Reseed(seed uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.src.Seed(seed, seed^0x9e3779b97f4a7c15)
	g.seed = seed
}

// SetMaxRedraws bounds truncated normal rejection sampling. n < 1 is ignored.
func (g *Generator) SetMaxRedraws(n int) {
	if n < 1 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maxRedraws = n
}

func (g *Generator) fill(n int, draw func() float64) []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]float64, n)
	for i := range out {
		out[i] = draw()
	}
	return out
}

// Normal draws n samples from N(loc, scale²).
func (g *Generator) Normal(n int, loc, scale float64) ([]float64, error) {
	if scale < 0 || math.IsNaN(scale) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "normal: scale must be >= 0, got %g", scale)
	}
	d := distuv.Normal{Mu: loc, Sigma: scale, Src: g.src}
	return g.fill(n, d.Rand), nil
}

// StandardNormal draws n samples from N(0, 1).
func (g *Generator) StandardNormal(n int) []float64 {
	d := distuv.UnitNormal
	d.Src = g.src
	return g.fill(n, d.Rand)
}

// TruncatedNormal draws n samples from N(loc, scale²), redrawing any sample
// farther than two scales from loc. A sample that needs more than the configured
// number of redraws fails with ErrNotConverged.
func (g *Generator) TruncatedNormal(n int, loc, scale float64) ([]float64, error) {
	if scale < 0 || math.IsNaN(scale) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "truncated_normal: scale must be >= 0, got %g", scale)
	}
	d := distuv.Normal{Mu: loc, Sigma: scale, Src: g.src}
	bound := 2 * scale

	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]float64, n)
	for i := range out {
		x := d.Rand()
		redraws := 0
		for math.Abs(x-loc) > bound {
			if redraws == g.maxRedraws {
				return nil, errors.Wrapf(tensor.ErrNotConverged,
					"truncated_normal: sample %d exceeded %d redraws", i, g.maxRedraws)
			}
			x = d.Rand()
			redraws++
		}
		out[i] = x
	}
	return out, nil
}

// Poisson draws n samples from Poisson(lam).
func (g *Generator) Poisson(n int, lam float64) ([]float64, error) {
	if lam < 0 || math.IsNaN(lam) || math.IsInf(lam, 0) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "poisson: lam must be finite and >= 0, got %g", lam)
	}
	d := distuv.Poisson{Lambda: lam, Src: g.src}
	return g.fill(n, d.Rand), nil
}

// Uniform draws n samples from [low, high).
func (g *Generator) Uniform(n int, low, high float64) ([]float64, error) {
	if high < low || math.IsNaN(low) || math.IsNaN(high) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "uniform: high (%g) < low (%g)", high, low)
	}
	d := distuv.Uniform{Min: low, Max: high, Src: g.src}
	return g.fill(n, d.Rand), nil
}

// Binomial draws n samples counting successes in trials with probability p.
func (g *Generator) Binomial(n, trials int, p float64) ([]float64, error) {
	if trials < 0 {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "binomial: trials must be >= 0, got %d", trials)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "binomial: p must be in [0, 1], got %g", p)
	}
	d := distuv.Binomial{N: float64(trials), P: p, Src: g.src}
	return g.fill(n, d.Rand), nil
}
