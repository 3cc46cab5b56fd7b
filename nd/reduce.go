// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

// Reductions take an optional axis (nil reduces every element). With keepDims
// the reduced axis stays in the result with size 1.
//
// Example:
//
//	colSums, err := nd.Sum(x, nd.Axis(0), false)

// Sum adds the elements of a.
func Sum(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().Sum(a, axis, keepDims) }

// Prod multiplies the elements of a.
func Prod(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().Prod(a, axis, keepDims) }

// Max returns the largest element of a.
func Max(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().Max(a, axis, keepDims) }

// Min returns the smallest element of a.
func Min(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().Min(a, axis, keepDims) }

// Mean returns the arithmetic mean of a.
func Mean(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().Mean(a, axis, keepDims) }

// Std returns the population standard deviation of a.
func Std(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().Std(a, axis, keepDims) }

// All reports whether every element of a is non-zero.
func All(a any, axis *int, keepDims bool) (*Tensor, error) { return Default().All(a, axis, keepDims) }

// Variance is the population variance.
func Variance(a any, axis *int, keepDims bool) (*Tensor, error) {
	return Default().Variance(a, axis, keepDims)
}

// ArgMax returns indices of the largest elements; the first one wins ties.
func ArgMax(a any, axis *int, keepDims bool) (*Tensor, error) {
	return Default().ArgMax(a, axis, keepDims)
}

// ArgMin returns indices of the smallest elements; the first one wins ties.
func ArgMin(a any, axis *int, keepDims bool) (*Tensor, error) {
	return Default().ArgMin(a, axis, keepDims)
}

// Median is Quantile(a, 0.5, ...).
func Median(a any, axis *int, keepDims bool) (*Tensor, error) {
	return Default().Median(a, axis, keepDims)
}

// Quantile computes the q-th quantile with linear interpolation, q in [0, 1].
func Quantile(a any, q float64, axis *int, keepDims bool) (*Tensor, error) {
	return Default().Quantile(a, q, axis, keepDims)
}

// Average is the weighted mean along axis; nil weights give the plain mean.
func Average(a, weights any, axis *int) (*Tensor, error) {
	return Default().Average(a, weights, axis)
}

// AllClose reports whether |a - b| <= atol + rtol·|b| elementwise.
func AllClose(a, b any, rtol, atol float64) (bool, error) {
	return Default().AllClose(a, b, rtol, atol)
}
