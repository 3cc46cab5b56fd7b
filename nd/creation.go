// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	x, err := nd.Zeros(nd.Shape{2, 3})
func Zeros(shape Shape, opts ...Option) (*Tensor, error) { return Default().Zeros(shape, opts...) }

// Ones creates a tensor filled with ones.
func Ones(shape Shape, opts ...Option) (*Tensor, error) { return Default().Ones(shape, opts...) }

// Full creates a tensor filled with value.
func Full(shape Shape, value float64, opts ...Option) (*Tensor, error) {
	return Default().Full(shape, value, opts...)
}

// Array creates a tensor from a number, a nested slice of numbers or a tensor (copied).
//
// Example:
//
//	x, err := nd.Array([][]float64{{1, 2}, {3, 4}})
func Array(v any, opts ...Option) (*Tensor, error) { return Default().Array(v, opts...) }

// Identity creates the n×n identity matrix.
func Identity(n int, opts ...Option) (*Tensor, error) { return Default().Identity(n, opts...) }

// Arange returns evenly spaced values in [start, stop) with the given step.
// Note the argument order: stop comes first.
//
// Example:
//
//	x, err := nd.Arange(5, 0, 1) // [0 1 2 3 4]
func Arange(stop, start, step float64, opts ...Option) (*Tensor, error) {
	return Default().Arange(stop, start, step, opts...)
}

// Normal samples N(loc, scale²).
func Normal(shape Shape, loc, scale float64, opts ...Option) (*Tensor, error) {
	return Default().Normal(shape, loc, scale, opts...)
}

// StandardNormal samples N(0, 1).
func StandardNormal(shape Shape, opts ...Option) (*Tensor, error) {
	return Default().StandardNormal(shape, opts...)
}

// TruncatedNormal samples N(loc, scale²) restricted to two scales around loc.
func TruncatedNormal(shape Shape, loc, scale float64, opts ...Option) (*Tensor, error) {
	return Default().TruncatedNormal(shape, loc, scale, opts...)
}

// Poisson samples Poisson(lam).
func Poisson(shape Shape, lam float64, opts ...Option) (*Tensor, error) {
	return Default().Poisson(shape, lam, opts...)
}

// Uniform samples [low, high).
func Uniform(shape Shape, low, high float64, opts ...Option) (*Tensor, error) {
	return Default().Uniform(shape, low, high, opts...)
}

// Binomial samples the number of successes in n trials with probability p.
func Binomial(shape Shape, n int, p float64, opts ...Option) (*Tensor, error) {
	return Default().Binomial(shape, n, p, opts...)
}
