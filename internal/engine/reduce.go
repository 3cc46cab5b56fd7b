package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Axis returns a pointer to axis, for the axis arguments of reductions.
func Axis(axis int) *int { return &axis }

// Reduce applies a reduction over axis (nil reduces every element).
// The axis is removed from the result unless keepDims is set, in which case it is kept with size 1.
// The result lives on a's device.
func (e *Engine) Reduce(op tensor.ReduceOp, a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, op.String())
	}
	defer done()

	kernelAxis := -1
	var normalized *int
	if axis != nil {
		ax, err := tensor.NormalizeAxis(*axis, x.Rank())
		if err != nil {
			return nil, errors.WithMessage(err, op.String())
		}
		kernelAxis, normalized = ax, &ax
	}
	if op.NeedsElements() {
		n := x.Size()
		if normalized != nil {
			n = x.Shape()[*normalized]
		}
		if n == 0 {
			return nil, errors.Wrapf(tensor.ErrInvalidShape, "%s: reduction over an empty axis of %v", op, x.Shape())
		}
	}

	src, _, err := x.Operand()
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(e.arena, x.Device(), tensor.ReducedShape(x.Shape(), normalized, keepDims))
	if err != nil {
		return nil, err
	}
	dst, backend, err := out.Operand()
	if err != nil {
		out.Release()
		return nil, err
	}
	backend.Reduce(op, dst, src, kernelAxis)
	return out, nil
}

// Sum adds the elements of a.
func (e *Engine) Sum(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpSum, a, axis, keepDims)
}

// Prod multiplies the elements of a.
func (e *Engine) Prod(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpProd, a, axis, keepDims)
}

// Max fails on an empty reduction since it has no identity.
func (e *Engine) Max(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpMax, a, axis, keepDims)
}

// Min fails on an empty reduction since it has no identity.
func (e *Engine) Min(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpMin, a, axis, keepDims)
}

// Mean returns the arithmetic mean of a.
func (e *Engine) Mean(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpMean, a, axis, keepDims)
}

// Variance is the population variance (divide by N).
func (e *Engine) Variance(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpVariance, a, axis, keepDims)
}

// Std is the population standard deviation.
func (e *Engine) Std(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	v, err := e.Variance(a, axis, keepDims)
	if err != nil {
		return nil, errors.WithMessage(err, "std")
	}
	defer v.Release()
	return e.Unary(tensor.OpSqrt, v)
}

// ArgMax returns the index of the largest element, the lowest one on ties.
// With a nil axis the index is into the flattened array.
func (e *Engine) ArgMax(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpArgMax, a, axis, keepDims)
}

// ArgMin returns the index of the smallest element, the lowest one on ties.
func (e *Engine) ArgMin(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpArgMin, a, axis, keepDims)
}

// All reports 1 where every reduced element is non-zero, else 0.
func (e *Engine) All(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.Reduce(tensor.OpAll, a, axis, keepDims)
}
