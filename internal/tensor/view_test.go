package tensor_test

import (
	"testing"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshapeAndFlatten(t *testing.T) {
	arena := newArena()
	x := fromValues(arena, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	r := must.M1(x.Reshape(tensor.Shape{-1, 2}))
	assert.Equal(t, tensor.Shape{3, 2}, r.Shape())
	assert.Equal(t, x.Handle(), r.Handle())

	_, err := x.Reshape(tensor.Shape{4, -1})
	assert.ErrorIs(t, err, tensor.ErrSizeMismatch)
	_, err = x.Reshape(tensor.Shape{-1, -1})
	assert.ErrorIs(t, err, tensor.ErrInvalidShape)

	xt := must.M1(x.Transpose())
	assert.False(t, xt.IsContiguous())
	c := must.M1(xt.Reshape(tensor.Shape{6}))
	assert.NotEqual(t, x.Handle(), c.Handle())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, must.M1(c.Values()))

	f := must.M1(x.Flatten())
	assert.NotEqual(t, x.Handle(), f.Handle())
	back := must.M1(f.Reshape(x.Shape()))
	assert.Equal(t, must.M1(x.ToArray()), must.M1(back.ToArray()))
}

func TestAxisViews(t *testing.T) {
	arena := newArena()
	x := must.M1(tensor.NewRaw(arena, tensor.HostDevice, tensor.Shape{2, 3, 4}))

	assert.Equal(t, tensor.Shape{4, 3, 2}, must.M1(x.Transpose()).Shape())
	assert.Equal(t, tensor.Shape{3, 2, 4}, must.M1(x.Transpose(1, 0, 2)).Shape())
	_, err := x.Transpose(0, 1)
	assert.ErrorIs(t, err, tensor.ErrInvalidPermutation)

	assert.Equal(t, tensor.Shape{2, 4, 3}, must.M1(x.SwapAxes(1, 2)).Shape())
	assert.Equal(t, tensor.Shape{4, 2, 3}, must.M1(x.MoveAxis(-1, 0)).Shape())
	assert.Equal(t, tensor.Shape{2, 4, 3}, must.M1(x.RollAxis(2, 1)).Shape())

	e := must.M1(x.ExpandDims(-1))
	assert.Equal(t, tensor.Shape{2, 3, 4, 1}, e.Shape())
	assert.Equal(t, tensor.Shape{2, 3, 4}, must.M1(e.Squeeze()).Shape())
	_, err = x.ExpandDims(4)
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfBounds)
	_, err = x.Squeeze(1)
	assert.ErrorIs(t, err, tensor.ErrNonUnitSqueeze)
	assert.Equal(t, tensor.ErrShape, tensor.KindOf(err))
}

func TestBroadcastFlipDiagonal(t *testing.T) {
	arena := newArena()
	row := fromValues(arena, tensor.Shape{3}, 1, 2, 3)
	b := must.M1(row.BroadcastTo(tensor.Shape{2, 3}))
	assert.Equal(t, []int{0, 1}, b.Strides())
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3}, must.M1(b.Values()))
	assert.ErrorIs(t, b.Fill(0), tensor.ErrOwnership)
	_, err := row.BroadcastTo(tensor.Shape{2})
	assert.ErrorIs(t, err, tensor.ErrIncompatible)

	m := fromValues(arena, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1}, must.M1(must.M1(m.Flip()).Values()))
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, must.M1(must.M1(m.Flip(1)).Values()))

	assert.Equal(t, []float64{1, 5}, must.M1(must.M1(m.Diagonal(0, 0, 1)).Values()))
	assert.Equal(t, []float64{2, 6}, must.M1(must.M1(m.Diagonal(1, 0, 1)).Values()))
	assert.Equal(t, []float64{4}, must.M1(must.M1(m.Diagonal(-1, 0, 1)).Values()))
	_, err = row.Diagonal(0, 0, 1)
	assert.ErrorIs(t, err, tensor.ErrRankMismatch)
}

func TestCopies(t *testing.T) {
	arena := newArena()
	x := fromValues(arena, tensor.Shape{2, 2}, 1, 2, 3, 4)
	xt := must.M1(x.Transpose())

	c := must.M1(xt.Copy())
	assert.True(t, c.IsContiguous())
	assert.Equal(t, []float64{1, 3, 2, 4}, must.M1(c.Values()))
	require.NoError(t, c.Fill(0))
	assert.Equal(t, []float64{1, 2, 3, 4}, must.M1(x.Values()))

	same := must.M1(x.CopyTo(tensor.HostDevice))
	assert.NotEqual(t, x.Handle(), same.Handle())
	_, err := x.CopyTo(tensor.AcceleratorDevice(3))
	assert.ErrorIs(t, err, tensor.ErrInvalidDevice)
}
