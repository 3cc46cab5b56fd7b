package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// viewOp lifts a and applies a view-producing method. The view holds its own
// reference, so releasing a lifted operand afterwards is safe.
func (e *Engine) viewOp(name string, a any, f func(*tensor.RawTensor) (*tensor.RawTensor, error)) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	defer done()
	return f(x)
}

// Reshape returns a with a new shape; one dimension may be -1.
// The result is a view when a is contiguous, otherwise a copy.
func (e *Engine) Reshape(a any, shape tensor.Shape) (*tensor.RawTensor, error) {
	return e.viewOp("reshape", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.Reshape(shape) })
}

// Flatten returns an owned rank-1 copy of a.
func (e *Engine) Flatten(a any) (*tensor.RawTensor, error) {
	return e.viewOp("flatten", a, (*tensor.RawTensor).Flatten)
}

// Transpose permutes the axes of a; with no axes their order is reversed.
func (e *Engine) Transpose(a any, axes ...int) (*tensor.RawTensor, error) {
	return e.viewOp("transpose", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.Transpose(axes...) })
}

// SwapAxes exchanges two axes of a.
func (e *Engine) SwapAxes(a any, axis1, axis2 int) (*tensor.RawTensor, error) {
	return e.viewOp("swapaxes", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.SwapAxes(axis1, axis2) })
}

// MoveAxis moves one axis of a to a new position.
func (e *Engine) MoveAxis(a any, source, destination int) (*tensor.RawTensor, error) {
	return e.viewOp("moveaxis", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) {
		return x.MoveAxis(source, destination)
	})
}

// RollAxis rolls axis backwards until it lies before start.
func (e *Engine) RollAxis(a any, axis, start int) (*tensor.RawTensor, error) {
	return e.viewOp("rollaxis", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.RollAxis(axis, start) })
}

// Squeeze removes the given unit axes, or every unit axis when none are given.
func (e *Engine) Squeeze(a any, axes ...int) (*tensor.RawTensor, error) {
	return e.viewOp("squeeze", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.Squeeze(axes...) })
}

// ExpandDims inserts a unit axis at axis.
func (e *Engine) ExpandDims(a any, axis int) (*tensor.RawTensor, error) {
	return e.viewOp("expand_dims", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.ExpandDims(axis) })
}

// BroadcastTo returns a read-only view of a expanded to shape.
func (e *Engine) BroadcastTo(a any, shape tensor.Shape) (*tensor.RawTensor, error) {
	return e.viewOp("broadcast_to", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.BroadcastTo(shape) })
}

// Flip reverses a along the given axes, or along every axis.
func (e *Engine) Flip(a any, axes ...int) (*tensor.RawTensor, error) {
	return e.viewOp("flip", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.Flip(axes...) })
}

// Diagonal returns a view of the offset diagonal of the axis1/axis2 planes.
func (e *Engine) Diagonal(a any, offset, axis1, axis2 int) (*tensor.RawTensor, error) {
	return e.viewOp("diagonal", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) {
		return x.Diagonal(offset, axis1, axis2)
	})
}

// Slice returns a view of a. Each spec is a tensor.SliceSpec, an int index,
// nil or an empty []int for a whole axis, or []int{stop}, {start, stop}, {start, stop, step}.
func (e *Engine) Slice(a any, specs ...any) (*tensor.RawTensor, error) {
	return e.viewOp("slice", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return x.SliceAny(specs...) })
}

// atLeast reshapes low-rank inputs by placing their axes at the positions given
// for their rank; higher ranks pass through as views.
func (e *Engine) atLeast(name string, a any, rank int, layout func(tensor.Shape) tensor.Shape) (*tensor.RawTensor, error) {
	return e.viewOp(name, a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) {
		shape := x.Shape()
		if x.Rank() < rank {
			shape = layout(shape)
		}
		return x.Reshape(shape)
	})
}

// AtLeast1D views scalars as shape [1].
func (e *Engine) AtLeast1D(a any) (*tensor.RawTensor, error) {
	return e.atLeast("atleast_1d", a, 1, func(tensor.Shape) tensor.Shape { return tensor.Shape{1} })
}

// AtLeast2D views scalars as [1, 1] and vectors of length n as [1, n].
func (e *Engine) AtLeast2D(a any) (*tensor.RawTensor, error) {
	return e.atLeast("atleast_2d", a, 2, func(s tensor.Shape) tensor.Shape {
		if len(s) == 0 {
			return tensor.Shape{1, 1}
		}
		return tensor.Shape{1, s[0]}
	})
}

// AtLeast3D views scalars as [1, 1, 1], vectors as [1, n, 1] and matrices as [m, n, 1].
func (e *Engine) AtLeast3D(a any) (*tensor.RawTensor, error) {
	return e.atLeast("atleast_3d", a, 3, func(s tensor.Shape) tensor.Shape {
		switch len(s) {
		case 0:
			return tensor.Shape{1, 1, 1}
		case 1:
			return tensor.Shape{1, s[0], 1}
		}
		return tensor.Shape{s[0], s[1], 1}
	})
}

// Concatenate joins tensors along an existing axis. All inputs must have the
// same rank and agree on every other axis. The result lives on the
// highest-priority input device.
func (e *Engine) Concatenate(values []any, axis int) (*tensor.RawTensor, error) {
	if len(values) == 0 {
		return nil, errors.Wrap(tensor.ErrInvalidArgument, "concatenate: no inputs")
	}
	ts, done, err := e.liftAll(values)
	if err != nil {
		return nil, errors.WithMessage(err, "concatenate")
	}
	defer done()
	return e.concatenate(ts, axis)
}

func (e *Engine) concatenate(ts []*tensor.RawTensor, axis int) (*tensor.RawTensor, error) {
	first := ts[0]
	rank := first.Rank()
	if rank == 0 {
		return nil, errors.Wrap(tensor.ErrRankMismatch, "concatenate: zero-dimensional inputs cannot be concatenated")
	}
	ax, err := tensor.NormalizeAxis(axis, rank)
	if err != nil {
		return nil, errors.WithMessage(err, "concatenate")
	}
	shape := first.Shape().Clone()
	shape[ax] = 0
	devices := make([]tensor.Device, len(ts))
	for i, t := range ts {
		if t.Rank() != rank {
			return nil, errors.Wrapf(tensor.ErrRankMismatch, "concatenate: input %d has rank %d, want %d", i, t.Rank(), rank)
		}
		for d, n := range t.Shape() {
			if d != ax && n != first.Shape()[d] {
				return nil, errors.Wrapf(tensor.ErrIncompatible, "concatenate: input %d has shape %v, want %v off axis %d",
					i, t.Shape(), first.Shape(), ax)
			}
		}
		shape[ax] += t.Shape()[ax]
		devices[i] = t.Device()
	}
	device, err := placement(devices...)
	if err != nil {
		return nil, errors.WithMessage(err, "concatenate")
	}

	out, err := tensor.NewRaw(e.arena, device, shape)
	if err != nil {
		return nil, err
	}
	dst, backend, err := out.Operand()
	if err != nil {
		out.Release()
		return nil, err
	}
	start := 0
	for _, t := range ts {
		staged, release, err := stage(t, device)
		if err != nil {
			out.Release()
			return nil, err
		}
		src, _, err := staged.Operand()
		if err != nil {
			release()
			out.Release()
			return nil, err
		}
		part := tensor.Operand{
			Mem:     dst.Mem,
			Shape:   t.Shape(),
			Strides: dst.Strides,
			Offset:  dst.Offset + start*dst.Strides[ax],
		}
		backend.Copy(part, src)
		release()
		start += t.Shape()[ax]
	}
	return out, nil
}

// Append joins values after a along axis. With a nil axis both are flattened first.
func (e *Engine) Append(a, values any, axis *int) (*tensor.RawTensor, error) {
	if axis != nil {
		return e.Concatenate([]any{a, values}, *axis)
	}
	ts, done, err := e.liftAll([]any{a, values})
	if err != nil {
		return nil, errors.WithMessage(err, "append")
	}
	defer done()
	flat := make([]*tensor.RawTensor, 0, 2)
	defer func() {
		for _, t := range flat {
			t.Release()
		}
	}()
	for _, t := range ts {
		f, err := t.Reshape(tensor.Shape{-1})
		if err != nil {
			return nil, err
		}
		flat = append(flat, f)
	}
	return e.concatenate(flat, 0)
}

// stack lifts values, reshapes each with view and concatenates along axis.
func (e *Engine) stack(name string, values []any, axis func(first *tensor.RawTensor) int,
	view func(any) (*tensor.RawTensor, error)) (*tensor.RawTensor, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "%s: no inputs", name)
	}
	views := make([]*tensor.RawTensor, 0, len(values))
	defer func() {
		for _, v := range views {
			v.Release()
		}
	}()
	for i, v := range values {
		t, err := view(v)
		if err != nil {
			return nil, errors.WithMessagef(err, "%s: input %d", name, i)
		}
		views = append(views, t)
	}
	out, err := e.concatenate(views, axis(views[0]))
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return out, nil
}

// VerticalStack stacks row-wise (axis 0) after promoting inputs to at least 2-D.
func (e *Engine) VerticalStack(values []any) (*tensor.RawTensor, error) {
	return e.stack("vstack", values, func(*tensor.RawTensor) int { return 0 }, e.AtLeast2D)
}

// HorizontalStack stacks column-wise: along axis 0 for vectors, axis 1 otherwise.
func (e *Engine) HorizontalStack(values []any) (*tensor.RawTensor, error) {
	return e.stack("hstack", values, func(first *tensor.RawTensor) int {
		if first.Rank() == 1 {
			return 0
		}
		return 1
	}, e.AtLeast1D)
}

// DepthStack stacks along the third axis after promoting inputs to at least 3-D.
func (e *Engine) DepthStack(values []any) (*tensor.RawTensor, error) {
	return e.stack("dstack", values, func(*tensor.RawTensor) int { return 2 }, e.AtLeast3D)
}

// ColumnStack stacks vectors as columns of a matrix; matrices are joined along axis 1.
func (e *Engine) ColumnStack(values []any) (*tensor.RawTensor, error) {
	return e.stack("column_stack", values, func(*tensor.RawTensor) int { return 1 }, func(v any) (*tensor.RawTensor, error) {
		return e.viewOp("column_stack", v, func(x *tensor.RawTensor) (*tensor.RawTensor, error) {
			switch x.Rank() {
			case 0:
				return x.Reshape(tensor.Shape{1, 1})
			case 1:
				return x.Reshape(tensor.Shape{x.Shape()[0], 1})
			}
			return x.Reshape(x.Shape())
		})
	})
}
