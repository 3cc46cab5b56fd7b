package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor.
// A Shape of length zero describes a scalar.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks that no dimension is negative.
// Zero-sized dimensions are valid and describe empty tensors.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return errors.Wrapf(ErrInvalidShape, "dimension %d of %v is %d", i, s, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as "(2, 3)".
func (s Shape) String() string {
	out := "("
	for i, d := range s {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprint(d)
	}
	if len(s) == 1 {
		out += ","
	}
	return out + ")"
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * max(s[i+1], 1)
	}
	return strides
}

// IsContiguous reports whether strides describe a dense row-major layout of shape.
// Axes of size 1 may carry any stride.
func IsContiguous(shape Shape, strides []int) bool {
	expected := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] == 1 {
			continue
		}
		if strides[i] != expected {
			return false
		}
		expected *= shape[i]
	}
	return true
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
//  1. Compare shapes element-wise from right to left.
//  2. Dimensions are compatible if they are equal or one of them is 1.
//  3. Missing leading dimensions are treated as 1.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5)
//	(5,)   + (3, 5) → (3, 5)
//	(3, 4) + (3, 5) → ErrIncompatible
func BroadcastShapes(a, b Shape) (Shape, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aDim := 1
		if aIdx := len(a) - 1 - i; aIdx >= 0 {
			aDim = a[aIdx]
		}
		bDim := 1
		if bIdx := len(b) - 1 - i; bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		case bDim == 1:
			result[maxLen-1-i] = aDim
		default:
			return nil, errors.Wrapf(ErrIncompatible, "cannot broadcast %v with %v (axis %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}
	return result, nil
}

// BroadcastAll folds BroadcastShapes over every given shape.
func BroadcastAll(shapes ...Shape) (Shape, error) {
	result := Shape{}
	for _, s := range shapes {
		var err error
		if result, err = BroadcastShapes(result, s); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// BroadcastStrides returns strides that read a tensor of the given shape and strides
// as if it had outShape. Broadcast and padded axes get stride 0.
// The caller must have validated that shape broadcasts to outShape.
func BroadcastStrides(shape Shape, strides []int, outShape Shape) []int {
	out := make([]int, len(outShape))
	pad := len(outShape) - len(shape)
	for i := range outShape {
		inIdx := i - pad
		if inIdx < 0 || shape[inIdx] == 1 {
			continue
		}
		out[i] = strides[inIdx]
	}
	return out
}

// NormalizeAxis converts a possibly negative axis into the range [0, rank).
func NormalizeAxis(axis, rank int) (int, error) {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return 0, errors.Wrapf(ErrAxisOutOfBounds, "axis %d for rank %d", axis, rank)
	}
	return axis, nil
}

// NormalizeAxes normalizes every axis and rejects duplicates.
func NormalizeAxes(axes []int, rank int) ([]int, error) {
	seen := make([]bool, rank)
	out := make([]int, len(axes))
	for i, ax := range axes {
		n, err := NormalizeAxis(ax, rank)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			return nil, errors.Wrapf(ErrInvalidPermutation, "repeated axis %d", ax)
		}
		seen[n] = true
		out[i] = n
	}
	return out, nil
}

// ReducedShape returns the shape left after reducing axis.
// A nil axis reduces every axis: the result is a scalar, or all ones with keepDims.
// axis must already be normalized.
func ReducedShape(shape Shape, axis *int, keepDims bool) Shape {
	if axis == nil {
		if !keepDims {
			return Shape{}
		}
		out := make(Shape, len(shape))
		for i := range out {
			out[i] = 1
		}
		return out
	}
	if keepDims {
		out := shape.Clone()
		out[*axis] = 1
		return out
	}
	out := make(Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != *axis {
			out = append(out, d)
		}
	}
	return out
}

// unravel writes the coordinates of the row-major flat index into coords.
func unravel(flat int, shape Shape, coords []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		d := shape[i]
		if d == 0 {
			coords[i] = 0
			continue
		}
		coords[i] = flat % d
		flat /= d
	}
}

// StridedOffset maps the row-major flat index over shape to a buffer position.
func StridedOffset(flat int, shape Shape, strides []int, offset int) int {
	pos := offset
	for i := len(shape) - 1; i >= 0; i-- {
		d := shape[i]
		if d == 0 {
			continue
		}
		pos += (flat % d) * strides[i]
		flat /= d
	}
	return pos
}
