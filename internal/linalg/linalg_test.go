package linalg_test

import (
	"math"
	"slices"
	"testing"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/linalg"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var arena = tensor.NewArena(cpu.New())

func matrix(rows ...[]float64) *tensor.RawTensor {
	var values []float64
	for _, r := range rows {
		values = append(values, r...)
	}
	cols := 0
	if len(rows) > 0 {
		cols = len(rows[0])
	}
	return must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{len(rows), cols}, values))
}

func vector(values ...float64) *tensor.RawTensor {
	return must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{len(values)}, values))
}

func assertAllClose(t *testing.T, want []float64, got *tensor.RawTensor, tol float64) {
	t.Helper()
	values := must.M1(got.Values())
	require.Len(t, values, len(want))
	for i := range want {
		assert.InDelta(t, want[i], values[i], tol, "element %d", i)
	}
}

func matmul(t *testing.T, ts ...*tensor.RawTensor) *tensor.RawTensor {
	t.Helper()
	out := ts[0]
	for _, next := range ts[1:] {
		out = must.M1(linalg.MatMul(out, next, parallel.Sequential()))
	}
	return out
}

func TestMatMul(t *testing.T) {
	a := matrix([]float64{1, 2, 3}, []float64{4, 5, 6})
	b := matrix([]float64{7, 8}, []float64{9, 10}, []float64{11, 12})

	got := matmul(t, a, b)
	assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
	assertAllClose(t, []float64{58, 64, 139, 154}, got, 1e-12)

	id := matrix([]float64{1, 0, 0}, []float64{0, 1, 0}, []float64{0, 0, 1})
	assertAllClose(t, must.M1(a.Values()), matmul(t, a, id), 0)

	t.Run("vectors", func(t *testing.T) {
		v := vector(1, 1, 1)
		mv := must.M1(linalg.MatMul(a, v, parallel.Sequential()))
		assert.Equal(t, tensor.Shape{2}, mv.Shape())
		assertAllClose(t, []float64{6, 15}, mv, 0)

		vm := must.M1(linalg.MatMul(vector(1, 1), a, parallel.Sequential()))
		assert.Equal(t, tensor.Shape{3}, vm.Shape())
		assertAllClose(t, []float64{5, 7, 9}, vm, 0)

		vv := must.M1(linalg.MatMul(v, v, parallel.Sequential()))
		assert.Equal(t, 0, vv.Rank())
		assertAllClose(t, []float64{3}, vv, 0)
	})

	t.Run("batched", func(t *testing.T) {
		batch := must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{2, 2, 3},
			[]float64{1, 2, 3, 4, 5, 6, 1, 0, 0, 0, 1, 0}))
		got := must.M1(linalg.MatMul(batch, b, parallel.DefaultConfig()))
		assert.Equal(t, tensor.Shape{2, 2, 2}, got.Shape())
		assertAllClose(t, []float64{58, 64, 139, 154, 7, 8, 9, 10}, got, 1e-12)
	})

	t.Run("incompatible", func(t *testing.T) {
		_, err := linalg.MatMul(a, a, parallel.Sequential())
		require.ErrorIs(t, err, tensor.ErrIncompatible)
		assert.ErrorIs(t, err, tensor.ErrShape)
	})
}

func TestSolveInvDet(t *testing.T) {
	a := matrix([]float64{4, -2, 1}, []float64{-2, 4, -2}, []float64{1, -2, 4})
	x := vector(1, 2, 3)
	b := must.M1(linalg.MatMul(a, x, parallel.Sequential()))

	got := must.M1(linalg.Solve(a, b))
	assertAllClose(t, []float64{1, 2, 3}, got, 1e-12)

	multi := must.M1(linalg.Solve(a, matrix([]float64{1, 0}, []float64{0, 1}, []float64{0, 0})))
	assert.Equal(t, tensor.Shape{3, 2}, multi.Shape())

	inv := must.M1(linalg.Inv(a))
	assertAllClose(t, must.M1(a.Values()), must.M1(linalg.Inv(inv)), 1e-12)
	assertAllClose(t, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, matmul(t, a, inv), 1e-12)

	det := must.M1(linalg.Det(matrix([]float64{1, 2}, []float64{3, 4})))
	assert.Equal(t, 0, det.Rank())
	assertAllClose(t, []float64{-2}, det, 1e-12)
}

func TestSingular(t *testing.T) {
	a := matrix([]float64{1, 2}, []float64{2, 4})

	_, err := linalg.Solve(a, vector(1, 1))
	require.ErrorIs(t, err, tensor.ErrSingular)
	assert.ErrorIs(t, err, tensor.ErrLinAlg)

	_, err = linalg.Inv(a)
	assert.ErrorIs(t, err, tensor.ErrSingular)

	assertAllClose(t, []float64{0}, must.M1(linalg.Det(a)), 0)
}

func TestNotSquare(t *testing.T) {
	a := matrix([]float64{1, 2, 3}, []float64{4, 5, 6})
	for name, fn := range map[string]func() error{
		"solve":    func() error { _, err := linalg.Solve(a, vector(1, 2)); return err },
		"inv":      func() error { _, err := linalg.Inv(a); return err },
		"det":      func() error { _, err := linalg.Det(a); return err },
		"cholesky": func() error { _, err := linalg.Cholesky(a); return err },
		"eig":      func() error { _, _, err := linalg.Eig(a); return err },
	} {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.ErrorIs(t, err, tensor.ErrNotSquare)
			assert.Equal(t, tensor.ErrShape, tensor.KindOf(err))
		})
	}
}

func TestLU(t *testing.T) {
	tests := []struct {
		name string
		a    *tensor.RawTensor
	}{
		{"square", matrix([]float64{2, 1, 1}, []float64{4, -6, 0}, []float64{-2, 7, 2})},
		{"wide", matrix([]float64{1, 2, 3}, []float64{4, 5, 6})},
		{"tall", matrix([]float64{1, 2}, []float64{3, 4}, []float64{5, 6})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l, u, err := linalg.LU(tt.a)
			require.NoError(t, err)
			rows, cols := tt.a.Shape()[0], tt.a.Shape()[1]
			k := min(rows, cols)
			assert.Equal(t, tensor.Shape{rows, rows}, p.Shape())
			assert.Equal(t, tensor.Shape{rows, k}, l.Shape())
			assert.Equal(t, tensor.Shape{k, cols}, u.Shape())
			assertAllClose(t, must.M1(tt.a.Values()), matmul(t, p, l, u), 1e-12)

			lv := must.M1(l.Values())
			for i := 0; i < k; i++ {
				assert.Equal(t, 1.0, lv[i*k+i])
			}
		})
	}
}

func TestSVD(t *testing.T) {
	a := matrix([]float64{3, 2, 2}, []float64{2, 3, -2})
	u, s, vh, err := linalg.SVD(a)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, u.Shape())
	assert.Equal(t, tensor.Shape{2}, s.Shape())
	assert.Equal(t, tensor.Shape{3, 3}, vh.Shape())
	assertAllClose(t, []float64{5, 3}, s, 1e-12)

	// U·[diag(S) 0]·Vh reconstructs a.
	sv := must.M1(s.Values())
	sigma := matrix([]float64{sv[0], 0, 0}, []float64{0, sv[1], 0})
	assertAllClose(t, must.M1(a.Values()), matmul(t, u, sigma, vh), 1e-12)
}

func TestQR(t *testing.T) {
	for name, a := range map[string]*tensor.RawTensor{
		"tall": matrix([]float64{12, -51, 4}, []float64{6, 167, -68}, []float64{-4, 24, -41}, []float64{1, 1, 1}),
		"wide": matrix([]float64{1, 2, 3}, []float64{4, 5, 6}),
	} {
		t.Run(name, func(t *testing.T) {
			q, r, err := linalg.QR(a)
			require.NoError(t, err)
			rows, cols := a.Shape()[0], a.Shape()[1]
			assert.Equal(t, tensor.Shape{rows, rows}, q.Shape())
			assert.Equal(t, tensor.Shape{rows, cols}, r.Shape())
			assertAllClose(t, must.M1(a.Values()), matmul(t, q, r), 1e-10)

			qt := must.M1(q.Transpose())
			identity := make([]float64, rows*rows)
			for i := 0; i < rows; i++ {
				identity[i*rows+i] = 1
			}
			assertAllClose(t, identity, matmul(t, qt, q), 1e-12)

			rv := must.M1(r.Values())
			for i := 0; i < rows; i++ {
				for j := 0; j < min(i, cols); j++ {
					assert.Equal(t, 0.0, rv[i*cols+j])
				}
			}
		})
	}
}

func TestEig(t *testing.T) {
	values, vectors, err := linalg.Eig(matrix([]float64{2, 0}, []float64{0, 3}))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, values.Shape())
	assert.Equal(t, tensor.Shape{2, 2, 2}, vectors.Shape())
	vals := must.M1(values.Values())
	reals := []float64{vals[0], vals[2]}
	slices.Sort(reals)
	assert.InDeltaSlice(t, []float64{2, 3}, reals, 1e-12)
	assert.Equal(t, 0.0, vals[1])
	assert.Equal(t, 0.0, vals[3])

	// A rotation has eigenvalues ±i.
	values, _, err = linalg.Eig(matrix([]float64{0, -1}, []float64{1, 0}))
	require.NoError(t, err)
	vals = must.M1(values.Values())
	assert.InDelta(t, 0, vals[0], 1e-12)
	assert.InDelta(t, 1, math.Abs(vals[1]), 1e-12)
	assert.InDelta(t, 0, vals[1]+vals[3], 1e-12)
}

func TestCholesky(t *testing.T) {
	l := must.M1(linalg.Cholesky(matrix([]float64{4, 2}, []float64{2, 3})))
	assertAllClose(t, []float64{2, 0, 1, math.Sqrt2}, l, 1e-12)

	_, err := linalg.Cholesky(matrix([]float64{1, 2}, []float64{2, 1}))
	require.ErrorIs(t, err, tensor.ErrNotPositiveDefinite)
	assert.ErrorIs(t, err, tensor.ErrLinAlg)
}

func TestCondRankNorm(t *testing.T) {
	assertAllClose(t, []float64{1}, must.M1(linalg.Cond(matrix([]float64{1, 0}, []float64{0, 1}))), 1e-12)
	assertAllClose(t, []float64{4}, must.M1(linalg.Cond(matrix([]float64{4, 0}, []float64{0, 1}))), 1e-12)

	assert.Equal(t, 1, must.M1(linalg.MatrixRank(matrix([]float64{1, 2}, []float64{2, 4}), -1)))
	assert.Equal(t, 2, must.M1(linalg.MatrixRank(matrix([]float64{1, 0}, []float64{0, 0.5}), 0.25)))
	// The comparison is strict.
	assert.Equal(t, 1, must.M1(linalg.MatrixRank(matrix([]float64{1, 0}, []float64{0, 0.5}), 0.5)))
	assert.Equal(t, 1, must.M1(linalg.MatrixRank(vector(0, 3), -1)))

	assertAllClose(t, []float64{5}, must.M1(linalg.Norm(vector(3, -4), 2)), 1e-12)
	assertAllClose(t, []float64{7}, must.M1(linalg.Norm(vector(3, -4), 1)), 0)
	assertAllClose(t, []float64{6}, must.M1(linalg.Norm(matrix([]float64{1, -2}, []float64{3, 4}), 1)), 0)
	assertAllClose(t, []float64{3}, must.M1(linalg.Norm(matrix([]float64{3, 0}, []float64{0, 1}), 2)), 1e-12)

	_, err := linalg.Norm(vector(1), 3)
	require.ErrorIs(t, err, tensor.ErrUnsupportedOrder)
	assert.ErrorIs(t, err, tensor.ErrLinAlg)
}

func TestLstsq(t *testing.T) {
	a := matrix([]float64{1, 0}, []float64{1, 1}, []float64{1, 2})
	x, rank, err := linalg.Lstsq(a, vector(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, rank)
	assert.Equal(t, tensor.Shape{2}, x.Shape())
	assertAllClose(t, []float64{1, 1}, x, 1e-12)

	x, rank, err = linalg.Lstsq(matrix([]float64{0, 0}, []float64{0, 0}), vector(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, rank)
	assertAllClose(t, []float64{0, 0}, x, 0)
}

func TestProducts(t *testing.T) {
	a := matrix([]float64{1, 2}, []float64{3, 4})

	assertAllClose(t, []float64{11}, must.M1(linalg.Dot(vector(1, 2), vector(3, 4), parallel.Sequential())), 0)
	scalar := must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{}, []float64{2}))
	assertAllClose(t, []float64{2, 4, 6, 8}, must.M1(linalg.Dot(scalar, a, parallel.Sequential())), 0)

	stack := must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{2, 1, 2}, []float64{1, 0, 0, 1}))
	dot := must.M1(linalg.Dot(stack, a, parallel.Sequential()))
	assert.Equal(t, tensor.Shape{2, 1, 2}, dot.Shape())
	assertAllClose(t, []float64{1, 2, 3, 4}, dot, 0)

	inner := must.M1(linalg.Inner(a, a))
	assertAllClose(t, []float64{5, 11, 11, 25}, inner, 0)

	outer := must.M1(linalg.Outer(vector(1, 2), vector(1, 10, 100)))
	assert.Equal(t, tensor.Shape{2, 3}, outer.Shape())
	assertAllClose(t, []float64{1, 10, 100, 2, 20, 200}, outer, 0)

	assertAllClose(t, []float64{5}, must.M1(linalg.Trace(a)), 0)

	d := must.M1(linalg.Diag(vector(1, 2), 1))
	assert.Equal(t, tensor.Shape{3, 3}, d.Shape())
	assertAllClose(t, []float64{0, 1, 0, 0, 0, 2, 0, 0, 0}, d, 0)
	assertAllClose(t, []float64{1, 4}, must.M1(linalg.Diag(a, 0)), 0)
	assertAllClose(t, []float64{3}, must.M1(linalg.Diag(a, -1)), 0)
}
