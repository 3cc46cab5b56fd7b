// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

// Reshape returns a with a new shape; one dimension may be -1.
// Contiguous inputs yield views, others a copy.
func Reshape(a any, shape Shape) (*Tensor, error) { return Default().Reshape(a, shape) }

// Flatten returns an owned rank-1 copy of a.
func Flatten(a any) (*Tensor, error) { return Default().Flatten(a) }

// Transpose permutes the axes of a; with no axes their order is reversed.
func Transpose(a any, axes ...int) (*Tensor, error) { return Default().Transpose(a, axes...) }

// SwapAxes exchanges two axes of a.
func SwapAxes(a any, axis1, axis2 int) (*Tensor, error) { return Default().SwapAxes(a, axis1, axis2) }

// MoveAxis moves one axis of a to a new position.
func MoveAxis(a any, src, dst int) (*Tensor, error) { return Default().MoveAxis(a, src, dst) }

// RollAxis rolls axis backwards until it lies before start.
func RollAxis(a any, axis, start int) (*Tensor, error) { return Default().RollAxis(a, axis, start) }

// ExpandDims inserts a unit axis at axis.
func ExpandDims(a any, axis int) (*Tensor, error) { return Default().ExpandDims(a, axis) }

// Flip reverses a along the given axes, or along every axis.
func Flip(a any, axes ...int) (*Tensor, error) { return Default().Flip(a, axes...) }

// BroadcastTo returns a read-only view of a expanded to shape.
func BroadcastTo(a any, shape Shape) (*Tensor, error) { return Default().BroadcastTo(a, shape) }

// Squeeze removes the given unit axes, or every unit axis when none are given.
func Squeeze(a any, axes ...int) (*Tensor, error) { return Default().Squeeze(a, axes...) }

// Diagonal returns a view of the offset diagonal of the axis1/axis2 planes.
func Diagonal(a any, offset, axis1, axis2 int) (*Tensor, error) {
	return Default().Diagonal(a, offset, axis1, axis2)
}

// Slice returns a view of a. Specs are SliceSpec values, int indices
// (which drop the axis), nil or []int{} for a whole axis, and
// []int{stop}, {start, stop} or {start, stop, step}.
//
// Example:
//
//	row, err := nd.Slice(m, 0, []int{}) // first row of a matrix
func Slice(a any, specs ...any) (*Tensor, error) { return Default().Slice(a, specs...) }

// AtLeast1D views scalars as shape [1].
func AtLeast1D(a any) (*Tensor, error) { return Default().AtLeast1D(a) }

// AtLeast2D views inputs with rank below 2 as matrices.
func AtLeast2D(a any) (*Tensor, error) { return Default().AtLeast2D(a) }

// AtLeast3D views inputs with rank below 3 as rank-3 tensors.
func AtLeast3D(a any) (*Tensor, error) { return Default().AtLeast3D(a) }

// Concatenate joins values along an existing axis.
func Concatenate(values []any, axis int) (*Tensor, error) {
	return Default().Concatenate(values, axis)
}

// Append joins values after a along axis; a nil axis flattens both first.
func Append(a, values any, axis *int) (*Tensor, error) { return Default().Append(a, values, axis) }

// VerticalStack joins values along the first axis.
func VerticalStack(values []any) (*Tensor, error) { return Default().VerticalStack(values) }

// HorizontalStack joins values along the second axis, or the first for vectors.
func HorizontalStack(values []any) (*Tensor, error) { return Default().HorizontalStack(values) }

// DepthStack joins values along the third axis.
func DepthStack(values []any) (*Tensor, error) { return Default().DepthStack(values) }

// ColumnStack stacks vectors as columns of a matrix.
func ColumnStack(values []any) (*Tensor, error) { return Default().ColumnStack(values) }

// Set writes value at coords of t in place. t must be an owned host tensor.
func Set(t *Tensor, coords []int, value float64) error { return Default().Set(t, coords, value) }

// Assign copies value into the region of t selected by specs, in place.
// Specs take the forms accepted by Slice; value broadcasts to the region.
//
// Example:
//
//	err := nd.Assign(m, []any{0}, []float64{1, 2, 3}) // overwrite the first row
func Assign(t *Tensor, specs []any, value any) error { return Default().Assign(t, specs, value) }

// Copy returns an owned contiguous copy of a on its device.
func Copy(a any) (*Tensor, error) { return Default().Copy(a) }

// CopyTo copies a to device.
func CopyTo(a any, device Device) (*Tensor, error) { return Default().CopyTo(a, device) }

// Cpu copies a to the host.
func Cpu(a any) (*Tensor, error) { return Default().Cpu(a) }

// Gpu copies a to the default accelerator (see SetDevice).
func Gpu(a any) (*Tensor, error) { return Default().Gpu(a) }
