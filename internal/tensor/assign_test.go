package tensor_test

import (
	"sync"
	"testing"

	"github.com/born-ml/ndarray/internal/backend/accel"
	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAt(t *testing.T) {
	arena := newArena()
	x := fromValues(arena, tensor.Shape{2, 2}, 1, 2, 3, 4)

	require.NoError(t, x.SetAt([]int{1, 0}, 9))
	assert.Equal(t, []float64{1, 2, 9, 4}, must.M1(x.Values()))

	err := x.SetAt([]int{2, 0}, 1)
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfBounds)
	err = x.SetAt([]int{0}, 1)
	assert.ErrorIs(t, err, tensor.ErrRankMismatch)

	// A live view shares the buffer.
	row := must.M1(x.Slice(tensor.Index(0)))
	err = row.SetAt([]int{1}, 7)
	assert.ErrorIs(t, err, tensor.ErrOwnership)
	assert.ErrorIs(t, x.SetAt([]int{0, 0}, 7), tensor.ErrOwnership)
	assert.Equal(t, []float64{1, 2, 9, 4}, must.M1(x.Values()))

	row.Release()
	require.NoError(t, x.SetAt([]int{0, 0}, 7))
	assert.Equal(t, 7.0, must.M1(x.At(0, 0)))

	x.Release()
	assert.ErrorIs(t, x.SetAt([]int{0, 0}, 1), tensor.ErrReleased)
}

func TestWritesRequireHost(t *testing.T) {
	arena := tensor.NewArena(cpu.New(), accel.New(0, nil, parallel.Sequential()))
	g := must.M1(tensor.FromValues(arena, tensor.AcceleratorDevice(0), tensor.Shape{2}, []float64{1, 2}))

	err := g.SetAt([]int{0}, 5)
	assert.ErrorIs(t, err, tensor.ErrHostOnly)
	assert.Equal(t, tensor.ErrDevice, tensor.KindOf(err))

	v := fromValues(arena, tensor.Shape{}, 5)
	assert.ErrorIs(t, g.Assign(nil, v), tensor.ErrHostOnly)
	assert.Equal(t, []float64{1, 2}, must.M1(g.Values()))

	// Accelerator values are staged into a host target.
	h := fromValues(arena, tensor.Shape{2}, 0, 0)
	require.NoError(t, h.Assign(nil, g))
	assert.Equal(t, []float64{1, 2}, must.M1(h.Values()))
}

func TestAssign(t *testing.T) {
	arena := newArena()
	m := must.M1(tensor.NewRaw(arena, tensor.HostDevice, tensor.Shape{3, 3}))

	row := fromValues(arena, tensor.Shape{3}, 1, 2, 3)
	require.NoError(t, m.Assign([]tensor.SliceSpec{tensor.Index(0)}, row))

	col := fromValues(arena, tensor.Shape{2, 1}, 8, 9)
	require.NoError(t, m.Assign([]tensor.SliceSpec{tensor.From(1), tensor.Range(0, 3, 2)}, col))

	scalar := fromValues(arena, tensor.Shape{}, -1)
	require.NoError(t, m.Assign([]tensor.SliceSpec{tensor.Step(-1), tensor.Index(1)}, scalar))
	assert.Equal(t, []float64{
		1, -1, 3,
		8, -1, 8,
		9, -1, 9,
	}, must.M1(m.Values()))

	err := m.Assign([]tensor.SliceSpec{tensor.Index(0)}, fromValues(arena, tensor.Shape{2}, 1, 2))
	assert.ErrorIs(t, err, tensor.ErrIncompatible)
	err = m.Assign([]tensor.SliceSpec{tensor.Step(0)}, scalar)
	assert.ErrorIs(t, err, tensor.ErrZeroStep)

	// Values that alias the target are rejected.
	view := must.M1(m.Slice(tensor.Index(1)))
	err = m.Assign([]tensor.SliceSpec{tensor.Index(0)}, view)
	assert.ErrorIs(t, err, tensor.ErrOwnership)
	view.Release()
	assert.ErrorIs(t, m.Assign(nil, m), tensor.ErrOwnership)
	assert.Equal(t, 1.0, must.M1(m.At(0, 0)))
}

func TestReshapeErrorNamesTarget(t *testing.T) {
	arena := newArena()
	x := must.M1(tensor.NewRaw(arena, tensor.HostDevice, tensor.Shape{3, 2}))
	_, err := x.Reshape(tensor.Shape{4, -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, tensor.ErrShape)
	assert.Contains(t, err.Error(), "reshape (3, 2) to (4, -1)")
}

func TestFillExclusiveUnderConcurrentRetain(t *testing.T) {
	arena := newArena()
	x := must.M1(tensor.NewRaw(arena, tensor.HostDevice, tensor.Shape{64}))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			_ = x.Fill(1)
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			v := must.M1(x.Reshape(tensor.Shape{8, 8}))
			v.Release()
		}
	}()
	wg.Wait()

	// Every write either ran exclusively or failed: the refcount is back to one.
	assert.Equal(t, 1, x.RefCount())
	require.NoError(t, x.Fill(2))
	for _, v := range must.M1(x.Values()) {
		assert.Equal(t, 2.0, v)
	}

	v := must.M1(x.Reshape(tensor.Shape{8, 8}))
	err := arena.WriteExclusive(x.Handle(), func(tensor.Memory, tensor.Backend) {
		t.Error("write ran on a shared buffer")
	})
	assert.ErrorIs(t, err, tensor.ErrOwnership)
	v.Release()
}
