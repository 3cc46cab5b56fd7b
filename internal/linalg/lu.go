package linalg

import (
	"math"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// luFactors is PA = LU stored compactly: unit-lower L below the diagonal, U on and above it.
// perm[i] is the row of A that ended up in row i.
type luFactors struct {
	rows, cols int
	lu         []float64
	perm       []int
	sign       float64
	// singular is set when some pivot satisfied |p| <= eps·scale.
	singular bool
}

// factorLU runs Gaussian elimination with partial pivoting on a copy of m.
// A pivot is numerically zero when |pivot| <= eps·max|a_ij|; elimination then
// skips that column so det and the P·L·U factors stay well defined.
func factorLU(m matrix) *luFactors {
	f := &luFactors{
		rows: m.rows,
		cols: m.cols,
		lu:   append([]float64(nil), m.data...),
		perm: make([]int, m.rows),
		sign: 1,
	}
	for i := range f.perm {
		f.perm[i] = i
	}
	scale := 0.0
	for _, v := range m.data {
		scale = math.Max(scale, math.Abs(v))
	}
	tiny := epsilon * scale

	n := f.cols
	steps := min(f.rows, f.cols)
	a := f.lu
	for k := 0; k < steps; k++ {
		p := k
		for i := k + 1; i < f.rows; i++ {
			if math.Abs(a[i*n+k]) > math.Abs(a[p*n+k]) {
				p = i
			}
		}
		if p != k {
			for j := 0; j < n; j++ {
				a[k*n+j], a[p*n+j] = a[p*n+j], a[k*n+j]
			}
			f.perm[k], f.perm[p] = f.perm[p], f.perm[k]
			f.sign = -f.sign
		}
		pivot := a[k*n+k]
		if math.Abs(pivot) <= tiny || pivot == 0 {
			f.singular = true
			if pivot == 0 {
				continue
			}
		}
		for i := k + 1; i < f.rows; i++ {
			l := a[i*n+k] / pivot
			a[i*n+k] = l
			if l == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				a[i*n+j] -= l * a[k*n+j]
			}
		}
	}
	return f
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16

// solve overwrites b (n×nrhs, row-major) with A⁻¹b. f must be square and non-singular.
func (f *luFactors) solve(b []float64, nrhs int) []float64 {
	n := f.rows
	x := make([]float64, n*nrhs)
	for i, src := range f.perm {
		copy(x[i*nrhs:(i+1)*nrhs], b[src*nrhs:(src+1)*nrhs])
	}
	a := f.lu
	// Forward substitution with unit L.
	for i := 0; i < n; i++ {
		for k := 0; k < i; k++ {
			l := a[i*n+k]
			if l == 0 {
				continue
			}
			for c := 0; c < nrhs; c++ {
				x[i*nrhs+c] -= l * x[k*nrhs+c]
			}
		}
	}
	// Back substitution with U.
	for i := n - 1; i >= 0; i-- {
		for k := i + 1; k < n; k++ {
			u := a[i*n+k]
			if u == 0 {
				continue
			}
			for c := 0; c < nrhs; c++ {
				x[i*nrhs+c] -= u * x[k*nrhs+c]
			}
		}
		pivot := a[i*n+i]
		for c := 0; c < nrhs; c++ {
			x[i*nrhs+c] /= pivot
		}
	}
	return x
}

// Solve solves a·x = b for a square a. b is a vector of length n or an n×k matrix.
// It fails with ErrSingular when a pivot is numerically zero.
func Solve(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	m, err := asSquare("solve", a)
	if err != nil {
		return nil, err
	}
	if b.Rank() != 1 && b.Rank() != 2 {
		return nil, errors.Wrapf(tensor.ErrRankMismatch, "solve: b must be a vector or matrix, got %v", b.Shape())
	}
	if b.Shape()[0] != m.rows {
		return nil, errors.Wrapf(tensor.ErrIncompatible, "solve: a is %v, b is %v", a.Shape(), b.Shape())
	}
	nrhs := 1
	if b.Rank() == 2 {
		nrhs = b.Shape()[1]
	}
	bv, err := b.Values()
	if err != nil {
		return nil, err
	}
	f := factorLU(m)
	if f.singular {
		return nil, errors.Wrapf(tensor.ErrSingular, "solve: %v matrix", a.Shape())
	}
	return hostTensor(a, b.Shape().Clone(), f.solve(bv, nrhs))
}

// Inv returns the inverse of a square matrix, solve(a, I).
func Inv(a *tensor.RawTensor) (*tensor.RawTensor, error) {
	m, err := asSquare("inv", a)
	if err != nil {
		return nil, err
	}
	f := factorLU(m)
	if f.singular {
		return nil, errors.Wrapf(tensor.ErrSingular, "inv: %v matrix", a.Shape())
	}
	n := m.rows
	identity := make([]float64, n*n)
	for i := 0; i < n; i++ {
		identity[i*n+i] = 1
	}
	return hostTensor(a, tensor.Shape{n, n}, f.solve(identity, n))
}

// Det returns the determinant: the product of U's diagonal times the pivot sign.
// A singular matrix yields 0 rather than an error.
func Det(a *tensor.RawTensor) (*tensor.RawTensor, error) {
	m, err := asSquare("det", a)
	if err != nil {
		return nil, err
	}
	f := factorLU(m)
	det := f.sign
	for i := 0; i < m.rows; i++ {
		det *= f.lu[i*m.cols+i]
	}
	return hostTensor(a, tensor.Shape{}, []float64{det})
}

// LU returns P, L, U with a = P·L·U. For an m×n input, P is m×m,
// L is m×k with a unit diagonal and U is k×n, where k = min(m, n).
func LU(a *tensor.RawTensor) (p, l, u *tensor.RawTensor, err error) {
	m, err := asMatrix("lu", a)
	if err != nil {
		return nil, nil, nil, err
	}
	f := factorLU(m)
	rows, cols := m.rows, m.cols
	k := min(rows, cols)

	// PA = LU, so A = PᵀLU: row perm[i] of A is row i of LU.
	pv := make([]float64, rows*rows)
	for i, src := range f.perm {
		pv[src*rows+i] = 1
	}
	lv := make([]float64, rows*k)
	for i := 0; i < rows; i++ {
		for j := 0; j < k; j++ {
			switch {
			case i == j:
				lv[i*k+j] = 1
			case i > j:
				lv[i*k+j] = f.lu[i*cols+j]
			}
		}
	}
	uv := make([]float64, k*cols)
	for i := 0; i < k; i++ {
		for j := i; j < cols; j++ {
			uv[i*cols+j] = f.lu[i*cols+j]
		}
	}

	if p, err = hostTensor(a, tensor.Shape{rows, rows}, pv); err != nil {
		return nil, nil, nil, err
	}
	if l, err = hostTensor(a, tensor.Shape{rows, k}, lv); err != nil {
		releaseAll(p)
		return nil, nil, nil, err
	}
	if u, err = hostTensor(a, tensor.Shape{k, cols}, uv); err != nil {
		releaseAll(p, l)
		return nil, nil, nil, err
	}
	return p, l, u, nil
}
