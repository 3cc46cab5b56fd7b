package linalg

import (
	"math"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func factorSVD(op string, m matrix, kind mat.SVDKind) (*mat.SVD, error) {
	if err := asNonEmpty(op, m); err != nil {
		return nil, err
	}
	var svd mat.SVD
	if !svd.Factorize(m.dense(), kind) {
		return nil, errors.Wrapf(tensor.ErrNotConverged, "%s: svd of (%d, %d) matrix", op, m.rows, m.cols)
	}
	return &svd, nil
}

// SVD returns the full decomposition a = U·diag(S)·Vh with U m×m, S of
// length min(m, n) in descending order and Vh n×n.
func SVD(a *tensor.RawTensor) (u, s, vh *tensor.RawTensor, err error) {
	m, err := asMatrix("svd", a)
	if err != nil {
		return nil, nil, nil, err
	}
	svd, err := factorSVD("svd", m, mat.SVDFull)
	if err != nil {
		return nil, nil, nil, err
	}
	var ud, vd mat.Dense
	svd.UTo(&ud)
	svd.VTo(&vd)
	values := svd.Values(nil)

	if u, err = denseTensor(a, &ud); err != nil {
		return nil, nil, nil, err
	}
	if s, err = hostTensor(a, tensor.Shape{len(values)}, values); err != nil {
		releaseAll(u)
		return nil, nil, nil, err
	}
	if vh, err = denseTensor(a, vd.T()); err != nil {
		releaseAll(u, s)
		return nil, nil, nil, err
	}
	return u, s, vh, nil
}

// QR returns Q (m×m, orthonormal) and R (m×n, upper triangular) with a = Q·R.
func QR(a *tensor.RawTensor) (q, r *tensor.RawTensor, err error) {
	m, err := asMatrix("qr", a)
	if err != nil {
		return nil, nil, err
	}
	if err := asNonEmpty("qr", m); err != nil {
		return nil, nil, err
	}
	var qd, rd mat.Dense
	if m.rows >= m.cols {
		var f mat.QR
		f.Factorize(m.dense())
		f.QTo(&qd)
		f.RTo(&rd)
	} else {
		// Wide input: factor the leading square block, then R = Qᵀ·A.
		var f mat.QR
		f.Factorize(m.dense().Slice(0, m.rows, 0, m.rows))
		f.QTo(&qd)
		rd.Mul(qd.T(), m.dense())
		for i := 1; i < m.rows; i++ {
			for j := 0; j < i; j++ {
				rd.Set(i, j, 0)
			}
		}
	}
	if q, err = denseTensor(a, &qd); err != nil {
		return nil, nil, err
	}
	if r, err = denseTensor(a, &rd); err != nil {
		releaseAll(q)
		return nil, nil, err
	}
	return q, r, nil
}

// Eig returns the eigenvalues and right eigenvectors of a square matrix.
// Complex results are split into real and imaginary channels: values has
// shape [n, 2] and vectors has shape [n, n, 2] with eigenvectors in columns.
func Eig(a *tensor.RawTensor) (values, vectors *tensor.RawTensor, err error) {
	m, err := asSquare("eig", a)
	if err != nil {
		return nil, nil, err
	}
	if err := asNonEmpty("eig", m); err != nil {
		return nil, nil, err
	}
	var e mat.Eigen
	if !e.Factorize(m.dense(), mat.EigenRight) {
		return nil, nil, errors.Wrapf(tensor.ErrNotConverged, "eig: %v matrix", a.Shape())
	}
	n := m.rows
	ev := e.Values(nil)
	vals := make([]float64, 2*n)
	for i, v := range ev {
		vals[2*i], vals[2*i+1] = real(v), imag(v)
	}
	var cv mat.CDense
	e.VectorsTo(&cv)
	vecs := make([]float64, 2*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := cv.At(i, j)
			vecs[2*(i*n+j)], vecs[2*(i*n+j)+1] = real(v), imag(v)
		}
	}
	if values, err = hostTensor(a, tensor.Shape{n, 2}, vals); err != nil {
		return nil, nil, err
	}
	if vectors, err = hostTensor(a, tensor.Shape{n, n, 2}, vecs); err != nil {
		releaseAll(values)
		return nil, nil, err
	}
	return values, vectors, nil
}

// Cholesky returns the lower triangular L with a = L·Lᵀ.
// Only the lower triangle of a is read.
func Cholesky(a *tensor.RawTensor) (*tensor.RawTensor, error) {
	m, err := asSquare("cholesky", a)
	if err != nil {
		return nil, err
	}
	if err := asNonEmpty("cholesky", m); err != nil {
		return nil, err
	}
	n := m.rows
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sym.SetSym(i, j, m.at(i, j))
		}
	}
	var c mat.Cholesky
	if !c.Factorize(sym) {
		return nil, errors.Wrapf(tensor.ErrNotPositiveDefinite, "cholesky: %v matrix", a.Shape())
	}
	var l mat.TriDense
	c.LTo(&l)
	return denseTensor(a, &l)
}

// Cond returns the 2-norm condition number σmax/σmin. A singular matrix gives +Inf.
func Cond(a *tensor.RawTensor) (*tensor.RawTensor, error) {
	m, err := asMatrix("cond", a)
	if err != nil {
		return nil, err
	}
	svd, err := factorSVD("cond", m, mat.SVDNone)
	if err != nil {
		return nil, err
	}
	s := svd.Values(nil)
	cond := math.Inf(1)
	if smin := s[len(s)-1]; smin != 0 {
		cond = s[0] / smin
	}
	return hostTensor(a, tensor.Shape{}, []float64{cond})
}

// MatrixRank counts singular values strictly greater than tol.
// A negative tol selects σmax·max(m, n)·eps. A vector is treated as a 1×n matrix.
func MatrixRank(a *tensor.RawTensor, tol float64) (int, error) {
	src := a
	if a.Rank() == 1 {
		row, err := a.Reshape(tensor.Shape{1, a.Shape()[0]})
		if err != nil {
			return 0, err
		}
		defer row.Release()
		src = row
	}
	m, err := asMatrix("matrix_rank", src)
	if err != nil {
		return 0, err
	}
	if m.rows == 0 || m.cols == 0 {
		return 0, nil
	}
	svd, err := factorSVD("matrix_rank", m, mat.SVDNone)
	if err != nil {
		return 0, err
	}
	s := svd.Values(nil)
	if tol < 0 {
		tol = s[0] * float64(max(m.rows, m.cols)) * epsilon
	}
	rank := 0
	for _, v := range s {
		if v > tol {
			rank++
		}
	}
	return rank, nil
}

// Norm computes vector or matrix norms. For vectors order 1 is the sum of
// absolute values and order 2 the Euclidean norm; for matrices order 1 is the
// maximum absolute column sum and order 2 the largest singular value.
func Norm(a *tensor.RawTensor, order int) (*tensor.RawTensor, error) {
	if order != 1 && order != 2 {
		return nil, errors.Wrapf(tensor.ErrUnsupportedOrder, "norm: order %d", order)
	}
	var result float64
	switch a.Rank() {
	case 0, 1:
		values, err := a.Values()
		if err != nil {
			return nil, err
		}
		result = floats.Norm(values, float64(order))
	case 2:
		m, err := asMatrix("norm", a)
		if err != nil {
			return nil, err
		}
		if m.rows == 0 || m.cols == 0 {
			break
		}
		if order == 1 {
			for j := 0; j < m.cols; j++ {
				sum := 0.0
				for i := 0; i < m.rows; i++ {
					sum += math.Abs(m.at(i, j))
				}
				result = math.Max(result, sum)
			}
			break
		}
		svd, err := factorSVD("norm", m, mat.SVDNone)
		if err != nil {
			return nil, err
		}
		result = svd.Values(nil)[0]
	default:
		return nil, errors.Wrapf(tensor.ErrRankMismatch, "norm: rank must be <= 2, got %d", a.Rank())
	}
	return hostTensor(a, tensor.Shape{}, []float64{result})
}

// Lstsq returns the minimum-norm x minimizing ||a·x - b||₂ together with the
// effective rank of a. b is a vector of length m or an m×k matrix.
func Lstsq(a, b *tensor.RawTensor) (x *tensor.RawTensor, rank int, err error) {
	m, err := asMatrix("lstsq", a)
	if err != nil {
		return nil, 0, err
	}
	if b.Rank() != 1 && b.Rank() != 2 {
		return nil, 0, errors.Wrapf(tensor.ErrRankMismatch, "lstsq: b must be a vector or matrix, got %v", b.Shape())
	}
	if b.Shape()[0] != m.rows {
		return nil, 0, errors.Wrapf(tensor.ErrIncompatible, "lstsq: a is %v, b is %v", a.Shape(), b.Shape())
	}
	nrhs := 1
	if b.Rank() == 2 {
		nrhs = b.Shape()[1]
	}
	bv, err := b.Values()
	if err != nil {
		return nil, 0, err
	}
	outShape := tensor.Shape{m.cols}
	if b.Rank() == 2 {
		outShape = tensor.Shape{m.cols, nrhs}
	}
	if nrhs == 0 {
		x, err = hostTensor(a, outShape, nil)
		return x, 0, err
	}
	svd, err := factorSVD("lstsq", m, mat.SVDFull)
	if err != nil {
		return nil, 0, err
	}
	rank = svd.Rank(epsilon * float64(max(m.rows, m.cols)))
	if rank == 0 {
		x, err = hostTensor(a, outShape, make([]float64, m.cols*nrhs))
		return x, 0, err
	}
	var xd mat.Dense
	svd.SolveTo(&xd, mat.NewDense(m.rows, nrhs, bv), rank)
	values := make([]float64, 0, m.cols*nrhs)
	for i := 0; i < m.cols; i++ {
		for j := 0; j < nrhs; j++ {
			values = append(values, xd.At(i, j))
		}
	}
	x, err = hostTensor(a, outShape, values)
	return x, rank, err
}
