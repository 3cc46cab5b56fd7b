package tensor

import (
	"slices"

	"github.com/pkg/errors"
)

// view returns a tensor sharing r's buffer through a different layout.
func (r *RawTensor) view(shape Shape, strides []int, offset int) (*RawTensor, error) {
	if r.released.Load() {
		return nil, errors.Wrapf(ErrReleased, "view of tensor %v", r.shape)
	}
	if err := r.arena.Retain(r.handle); err != nil {
		return nil, err
	}
	return wrap(r.arena, r.handle, r.device, shape, strides, offset), nil
}

// Copy returns an owned contiguous copy of r on its own device.
func (r *RawTensor) Copy() (*RawTensor, error) {
	src, b, err := r.Operand()
	if err != nil {
		return nil, err
	}
	out, err := NewRaw(r.arena, r.device, r.shape)
	if err != nil {
		return nil, err
	}
	dst, _, err := out.Operand()
	if err != nil {
		out.Release()
		return nil, err
	}
	b.Copy(dst, src)
	return out, nil
}

// CopyTo returns an owned contiguous copy of r on device.
// A copy is made even when r already lives there.
func (r *RawTensor) CopyTo(device Device) (*RawTensor, error) {
	if device == r.device {
		return r.Copy()
	}
	contiguous := r
	if r.offset != 0 || !r.IsContiguous() || r.bufferLength() != r.Size() {
		c, err := r.Copy()
		if err != nil {
			return nil, err
		}
		defer c.Release()
		contiguous = c
	}
	h, err := r.arena.Transfer(contiguous.handle, device)
	if err != nil {
		return nil, err
	}
	shape := r.shape.Clone()
	return wrap(r.arena, h, device, shape, shape.ComputeStrides(), 0), nil
}

func (r *RawTensor) bufferLength() int {
	_, n, _, err := r.arena.Lookup(r.handle)
	if err != nil {
		return -1
	}
	return n
}

// Flatten returns an owned rank-1 copy.
func (r *RawTensor) Flatten() (*RawTensor, error) {
	out, err := r.Copy()
	if err != nil {
		return nil, err
	}
	out.shape = Shape{r.Size()}
	out.strides = []int{1}
	return out, nil
}

// Reshape returns r with a new shape holding the same number of elements.
// One dimension may be -1 and is inferred.
// The result is a view when r is contiguous, otherwise an owned copy.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	target, err := inferShape(shape, r.Size())
	if err != nil {
		return nil, errors.WithMessagef(err, "reshape %v to %v", r.shape, shape)
	}
	if r.IsContiguous() {
		return r.view(target, target.ComputeStrides(), r.offset)
	}
	out, err := r.Copy()
	if err != nil {
		return nil, err
	}
	out.shape = target
	out.strides = target.ComputeStrides()
	return out, nil
}

func inferShape(shape Shape, size int) (Shape, error) {
	out := shape.Clone()
	inferred := -1
	known := 1
	for i, d := range out {
		switch {
		case d == -1 && inferred >= 0:
			return nil, errors.Wrapf(ErrInvalidShape, "more than one -1 dimension")
		case d == -1:
			inferred = i
		case d < 0:
			return nil, errors.Wrapf(ErrInvalidShape, "dimension %d is %d", i, d)
		default:
			known *= d
		}
	}
	if inferred >= 0 {
		if known == 0 || size%known != 0 {
			return nil, errors.Wrapf(ErrSizeMismatch, "cannot infer -1 for %d elements", size)
		}
		out[inferred] = size / known
	}
	if out.NumElements() != size {
		return nil, errors.Wrapf(ErrSizeMismatch, "%d elements into %d", size, out.NumElements())
	}
	return out, nil
}

// Transpose permutes the axes. With no axes the order is reversed.
func (r *RawTensor) Transpose(axes ...int) (*RawTensor, error) {
	rank := len(r.shape)
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		return nil, errors.Wrapf(ErrInvalidPermutation, "transpose: %d axes for rank %d", len(axes), rank)
	}
	perm, err := NormalizeAxes(axes, rank)
	if err != nil {
		return nil, errors.WithMessage(err, "transpose")
	}
	shape := make(Shape, rank)
	strides := make([]int, rank)
	for i, ax := range perm {
		shape[i] = r.shape[ax]
		strides[i] = r.strides[ax]
	}
	return r.view(shape, strides, r.offset)
}

// SwapAxes exchanges two axes.
func (r *RawTensor) SwapAxes(a, b int) (*RawTensor, error) {
	rank := len(r.shape)
	a, err := NormalizeAxis(a, rank)
	if err != nil {
		return nil, err
	}
	if b, err = NormalizeAxis(b, rank); err != nil {
		return nil, err
	}
	perm := identityPerm(rank)
	perm[a], perm[b] = perm[b], perm[a]
	return r.Transpose(perm...)
}

// MoveAxis moves axis source to position destination, keeping the others in order.
func (r *RawTensor) MoveAxis(source, destination int) (*RawTensor, error) {
	rank := len(r.shape)
	src, err := NormalizeAxis(source, rank)
	if err != nil {
		return nil, err
	}
	dst, err := NormalizeAxis(destination, rank)
	if err != nil {
		return nil, err
	}
	perm := identityPerm(rank)
	perm = slices.Delete(perm, src, src+1)
	perm = slices.Insert(perm, dst, src)
	return r.Transpose(perm...)
}

// RollAxis rolls axis backwards until it lies before position start.
func (r *RawTensor) RollAxis(axis, start int) (*RawTensor, error) {
	rank := len(r.shape)
	ax, err := NormalizeAxis(axis, rank)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		start += rank
	}
	if start < 0 || start > rank {
		return nil, errors.Wrapf(ErrAxisOutOfBounds, "rollaxis: start %d for rank %d", start, rank)
	}
	if ax < start {
		start--
	}
	perm := identityPerm(rank)
	perm = slices.Delete(perm, ax, ax+1)
	perm = slices.Insert(perm, start, ax)
	return r.Transpose(perm...)
}

func identityPerm(rank int) []int {
	perm := make([]int, rank)
	for i := range perm {
		perm[i] = i
	}
	return perm
}

// Squeeze removes axes of size 1. With no axes every unit axis is removed.
// Naming an axis whose size is not 1 is an error.
func (r *RawTensor) Squeeze(axes ...int) (*RawTensor, error) {
	rank := len(r.shape)
	drop := make([]bool, rank)
	if len(axes) == 0 {
		for i, d := range r.shape {
			drop[i] = d == 1
		}
	} else {
		norm, err := NormalizeAxes(axes, rank)
		if err != nil {
			return nil, errors.WithMessage(err, "squeeze")
		}
		for _, ax := range norm {
			if r.shape[ax] != 1 {
				return nil, errors.Wrapf(ErrNonUnitSqueeze, "squeeze: axis %d has size %d", ax, r.shape[ax])
			}
			drop[ax] = true
		}
	}
	shape := make(Shape, 0, rank)
	strides := make([]int, 0, rank)
	for i := range r.shape {
		if !drop[i] {
			shape = append(shape, r.shape[i])
			strides = append(strides, r.strides[i])
		}
	}
	return r.view(shape, strides, r.offset)
}

// ExpandDims inserts a unit axis at position axis, which may range over [-(rank+1), rank].
func (r *RawTensor) ExpandDims(axis int) (*RawTensor, error) {
	ax, err := NormalizeAxis(axis, len(r.shape)+1)
	if err != nil {
		return nil, errors.WithMessage(err, "expand_dims")
	}
	shape := slices.Insert(r.shape.Clone(), ax, 1)
	strides := slices.Insert(slices.Clone(r.strides), ax, 0)
	return r.view(shape, strides, r.offset)
}

// BroadcastTo returns a read-only view of r expanded to shape with zero strides.
func (r *RawTensor) BroadcastTo(shape Shape) (*RawTensor, error) {
	out, err := BroadcastShapes(r.shape, shape)
	if err != nil {
		return nil, err
	}
	if !out.Equal(shape) {
		return nil, errors.Wrapf(ErrIncompatible, "cannot broadcast %v to %v", r.shape, shape)
	}
	return r.view(shape.Clone(), BroadcastStrides(r.shape, r.strides, shape), r.offset)
}

// Flip reverses the order of elements along the given axes, or every axis when none are given.
func (r *RawTensor) Flip(axes ...int) (*RawTensor, error) {
	rank := len(r.shape)
	if len(axes) == 0 {
		axes = identityPerm(rank)
	}
	norm, err := NormalizeAxes(axes, rank)
	if err != nil {
		return nil, errors.WithMessage(err, "flip")
	}
	strides := slices.Clone(r.strides)
	offset := r.offset
	for _, ax := range norm {
		if r.shape[ax] > 0 {
			offset += (r.shape[ax] - 1) * strides[ax]
		}
		strides[ax] = -strides[ax]
	}
	return r.view(r.shape.Clone(), strides, offset)
}

// Diagonal returns a view of the diagonal with the given offset taken over axes axis1 and axis2.
// The two axes are removed and the diagonal becomes the last axis.
func (r *RawTensor) Diagonal(offset, axis1, axis2 int) (*RawTensor, error) {
	rank := len(r.shape)
	if rank < 2 {
		return nil, errors.Wrapf(ErrRankMismatch, "diagonal requires rank >= 2, got %d", rank)
	}
	axes, err := NormalizeAxes([]int{axis1, axis2}, rank)
	if err != nil {
		return nil, errors.WithMessage(err, "diagonal")
	}
	a1, a2 := axes[0], axes[1]
	start := r.offset
	n1, n2 := r.shape[a1], r.shape[a2]
	if offset >= 0 {
		n2 -= offset
		start += offset * r.strides[a2]
	} else {
		n1 += offset
		start -= offset * r.strides[a1]
	}
	n := max(min(n1, n2), 0)
	if n == 0 {
		start = r.offset
	}
	shape := make(Shape, 0, rank-1)
	strides := make([]int, 0, rank-1)
	for i := range r.shape {
		if i != a1 && i != a2 {
			shape = append(shape, r.shape[i])
			strides = append(strides, r.strides[i])
		}
	}
	shape = append(shape, n)
	strides = append(strides, r.strides[a1]+r.strides[a2])
	return r.view(shape, strides, start)
}
