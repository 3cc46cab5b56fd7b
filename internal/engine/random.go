package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// sample validates shape, draws its elements with draw and places them on the target device.
func (e *Engine) sample(name string, shape tensor.Shape, opts []Option, draw func(n int) ([]float64, error)) (*tensor.RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessage(err, name)
	}
	device, err := e.target(opts)
	if err != nil {
		return nil, err
	}
	values, err := draw(shape.NumElements())
	if err != nil {
		return nil, err
	}
	return tensor.FromValues(e.arena, device, shape, values)
}

// Normal samples N(loc, scale²).
func (e *Engine) Normal(shape tensor.Shape, loc, scale float64, opts ...Option) (*tensor.RawTensor, error) {
	return e.sample("normal", shape, opts, func(n int) ([]float64, error) { return e.rng.Normal(n, loc, scale) })
}

// StandardNormal samples N(0, 1).
func (e *Engine) StandardNormal(shape tensor.Shape, opts ...Option) (*tensor.RawTensor, error) {
	return e.sample("standard_normal", shape, opts, func(n int) ([]float64, error) { return e.rng.StandardNormal(n), nil })
}

// TruncatedNormal samples N(loc, scale²) restricted to [loc-2·scale, loc+2·scale] by rejection.
// The number of redraws per element is bounded by the engine's MaxRedraws.
func (e *Engine) TruncatedNormal(shape tensor.Shape, loc, scale float64, opts ...Option) (*tensor.RawTensor, error) {
	return e.sample("truncated_normal", shape, opts, func(n int) ([]float64, error) {
		return e.rng.TruncatedNormal(n, loc, scale)
	})
}

// Poisson samples Poisson(lam).
func (e *Engine) Poisson(shape tensor.Shape, lam float64, opts ...Option) (*tensor.RawTensor, error) {
	return e.sample("poisson", shape, opts, func(n int) ([]float64, error) { return e.rng.Poisson(n, lam) })
}

// Uniform samples [low, high).
func (e *Engine) Uniform(shape tensor.Shape, low, high float64, opts ...Option) (*tensor.RawTensor, error) {
	return e.sample("uniform", shape, opts, func(n int) ([]float64, error) { return e.rng.Uniform(n, low, high) })
}

// Binomial samples the number of successes in trials draws with probability p.
func (e *Engine) Binomial(shape tensor.Shape, trials int, p float64, opts ...Option) (*tensor.RawTensor, error) {
	return e.sample("binomial", shape, opts, func(n int) ([]float64, error) { return e.rng.Binomial(n, trials, p) })
}
