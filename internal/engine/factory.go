package engine

import (
	"math"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t, err := e.Zeros(tensor.Shape{2, 3})
func (e *Engine) Zeros(shape tensor.Shape, opts ...Option) (*tensor.RawTensor, error) {
	device, err := e.target(opts)
	if err != nil {
		return nil, err
	}
	return tensor.NewRaw(e.arena, device, shape)
}

// Ones creates a tensor filled with ones.
func (e *Engine) Ones(shape tensor.Shape, opts ...Option) (*tensor.RawTensor, error) {
	return e.Full(shape, 1, opts...)
}

// Full creates a tensor filled with value.
func (e *Engine) Full(shape tensor.Shape, value float64, opts ...Option) (*tensor.RawTensor, error) {
	t, err := e.Zeros(shape, opts...)
	if err != nil {
		return nil, err
	}
	if value == 0 {
		return t, nil
	}
	if err := t.Fill(value); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// Array creates a tensor from a TensorLike value. Tensors are copied.
//
// Example:
//
//	t, err := e.Array([][]float64{{1, 2}, {3, 4}})
func (e *Engine) Array(v any, opts ...Option) (*tensor.RawTensor, error) {
	device, err := e.target(opts)
	if err != nil {
		return nil, err
	}
	if t, ok := v.(*tensor.RawTensor); ok {
		if _, _, err := e.lift(t); err != nil {
			return nil, err
		}
		return t.CopyTo(device)
	}
	shape, values, err := tensor.FlattenValue(v)
	if err != nil {
		return nil, errors.WithMessagef(err, "array from %T", v)
	}
	return tensor.FromValues(e.arena, device, shape, values)
}

// Identity creates the n×n identity matrix.
func (e *Engine) Identity(n int, opts ...Option) (*tensor.RawTensor, error) {
	if n < 0 {
		return nil, errors.Wrapf(tensor.ErrInvalidShape, "identity: negative size %d", n)
	}
	device, err := e.target(opts)
	if err != nil {
		return nil, err
	}
	values := make([]float64, n*n)
	for i := 0; i < n; i++ {
		values[i*n+i] = 1
	}
	return tensor.FromValues(e.arena, device, tensor.Shape{n, n}, values)
}

// Arange returns evenly spaced values in [start, stop) separated by step.
// The element count is ceil((stop-start)/step), or zero when that is negative.
func (e *Engine) Arange(stop, start, step float64, opts ...Option) (*tensor.RawTensor, error) {
	if step == 0 || math.IsNaN(step) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "arange: step must be non-zero, got %g", step)
	}
	span := math.Ceil((stop - start) / step)
	if math.IsNaN(span) || math.IsInf(span, 0) || span > math.MaxInt32 {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "arange: cannot produce [%g, %g) by %g", start, stop, step)
	}
	n := max(int(span), 0)
	device, err := e.target(opts)
	if err != nil {
		return nil, err
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = start + float64(i)*step
	}
	return tensor.FromValues(e.arena, device, tensor.Shape{n}, values)
}
