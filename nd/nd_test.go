// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/born-ml/ndarray/nd"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleAdd() {
	x := must.M1(nd.Array([]float64{1, 2, 3}))
	y := must.M1(nd.Add(x, 5))
	fmt.Println(y)
	// Output: [6 7 8]
}

func ExampleTranspose() {
	m := must.M1(nd.Transpose([][]float64{{1, 2}, {3, 4}}))
	fmt.Println(m)
	// Output: [[1 3] [2 4]]
}

func ExampleSlice() {
	m := must.M1(nd.Array([][]float64{{1, 2, 3}, {4, 5, 6}}))
	row := must.M1(nd.Slice(m, 0, []int{}))
	fmt.Println(row.Shape(), row)
	// Output: (3,) [1 2 3]
}

func TestZeros(t *testing.T) {
	z := must.M1(nd.Zeros(nd.Shape{2, 3}))
	defer z.Release()
	assert.Equal(t, nd.Shape{2, 3}, z.Shape())
	assert.Equal(t, 6, z.Size())
	assert.False(t, z.IsGPU())
	assert.Equal(t, []any{[]any{0.0, 0.0, 0.0}, []any{0.0, 0.0, 0.0}}, must.M1(z.ToArray()))
}

func TestCpuGpuCopies(t *testing.T) {
	x := must.M1(nd.Array([]float64{1, 2, 3}))
	g := must.M1(nd.Gpu(x))
	c := must.M1(nd.Cpu(g))
	assert.True(t, g.IsGPU())
	assert.NotEqual(t, x.Handle(), c.Handle())

	require.NoError(t, c.Fill(0))
	assert.Equal(t, []float64{1, 2, 3}, must.M1(x.Values()))
	assert.Equal(t, []float64{1, 2, 3}, must.M1(g.Values()))
}

func TestSetAssign(t *testing.T) {
	m := must.M1(nd.Zeros(nd.Shape{2, 2}))
	defer m.Release()
	require.NoError(t, nd.Set(m, []int{0, 1}, 4))
	require.NoError(t, nd.Assign(m, []any{1}, []float64{5, 6}))
	assert.Equal(t, []float64{0, 4, 5, 6}, must.M1(m.Values()))

	mt := must.M1(nd.Transpose(m))
	assert.ErrorIs(t, nd.Set(mt, []int{0, 0}, 1), nd.ErrOwnership)
	mt.Release()

	g := must.M1(nd.Gpu(m))
	defer g.Release()
	assert.ErrorIs(t, nd.Set(g, []int{0, 0}, 1), nd.ErrHostOnly)
}

func TestMatMulSolve(t *testing.T) {
	a := must.M1(nd.Array([][]float64{{3, 1}, {1, 2}}))
	id := must.M1(nd.Identity(2))
	assert.Equal(t, must.M1(a.Values()), must.M1(must.M1(nd.MatMul(a, id)).Values()))

	x := []float64{2, -1}
	b := must.M1(nd.MatMul(a, x))
	got := must.M1(nd.Solve(a, b))
	assert.True(t, must.M1(nd.AllClose(got, x, 1e-9, 1e-12)))
}

func TestErrors(t *testing.T) {
	_, err := nd.Add([]float64{1, 2}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, nd.ErrIncompatible)
	assert.ErrorIs(t, err, nd.ErrShape)
	assert.Equal(t, nd.ErrShape, nd.KindOf(err))

	_, err = nd.Slice([]float64{1, 2, 3}, nd.SliceStep(0))
	assert.ErrorIs(t, err, nd.ErrZeroStep)

	assert.ErrorIs(t, nd.SetDevice(-1), nd.ErrInvalidDevice)
}

func TestScopedEngine(t *testing.T) {
	cfg := nd.DefaultConfig()
	cfg.Seed = 7
	e1 := must.M1(nd.NewEngine(cfg))
	e2 := must.M1(nd.NewEngine(cfg))
	defer e1.Close()
	defer e2.Close()

	a := must.M1(e1.Uniform(nd.Shape{5}, 0, 1))
	b := must.M1(e2.Uniform(nd.Shape{5}, 0, 1))
	assert.Equal(t, must.M1(a.Values()), must.M1(b.Values()))

	_, err := nd.Add(a, 1)
	assert.ErrorIs(t, err, nd.ErrInvalidDevice)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arrays.ndar")
	w := must.M1(nd.Arange(6, 0, 1))
	w2 := must.M1(nd.Reshape(w, nd.Shape{2, 3}))
	require.NoError(t, nd.Save(path, map[string]any{"w": w2}, nil))

	loaded, header, err := nd.Load(path)
	require.NoError(t, err)
	require.Len(t, header.Tensors, 1)
	assert.Equal(t, nd.Shape{2, 3}, loaded["w"].Shape())
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, must.M1(loaded["w"].Values()))
}
