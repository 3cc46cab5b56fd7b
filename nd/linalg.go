// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

// MatMul multiplies matrices, broadcasting over leading batch dimensions.
// Vectors are promoted to matrices and the added axis is removed again.
func MatMul(a, b any) (*Tensor, error) { return Default().MatMul(a, b) }

// Dot is the dot product of a and b.
func Dot(a, b any) (*Tensor, error) { return Default().Dot(a, b) }

// Inner contracts the last axes of a and b.
func Inner(a, b any) (*Tensor, error) { return Default().Inner(a, b) }

// Outer is the outer product of the flattened inputs.
func Outer(a, b any) (*Tensor, error) { return Default().Outer(a, b) }

// Solve solves a x = b.
func Solve(a, b any) (*Tensor, error) { return Default().Solve(a, b) }

// Inv returns the inverse of a square matrix.
func Inv(a any) (*Tensor, error) { return Default().Inv(a) }

// Det returns the determinant of a square matrix.
func Det(a any) (*Tensor, error) { return Default().Det(a) }

// Cond returns the 2-norm condition number of a.
func Cond(a any) (*Tensor, error) { return Default().Cond(a) }

// Cholesky returns the lower Cholesky factor of a.
func Cholesky(a any) (*Tensor, error) { return Default().Cholesky(a) }

// Trace sums the main diagonal of a.
func Trace(a any) (*Tensor, error) { return Default().Trace(a) }

// Diag builds a matrix with v on its k-th diagonal, or extracts the k-th
// diagonal of a matrix.
func Diag(v any, k int) (*Tensor, error) { return Default().Diag(v, k) }

// Norm supports order 1 and order 2.
func Norm(a any, order int) (*Tensor, error) { return Default().Norm(a, order) }

// MatrixRank counts singular values strictly greater than tol. A negative tol
// selects σmax·max(m, n)·eps.
func MatrixRank(a any, tol float64) (int, error) { return Default().MatrixRank(a, tol) }

// SVD factors a = U·diag(S)·Vh.
func SVD(a any) (u, s, vh *Tensor, err error) { return Default().SVD(a) }

// QR factors a = Q·R.
func QR(a any) (q, r *Tensor, err error) { return Default().QR(a) }

// LU factors a = P·L·U with partial pivoting.
func LU(a any) (p, l, u *Tensor, err error) { return Default().LU(a) }

// Eig returns eigenvalues [n, 2] and right eigenvectors [n, n, 2]; the last
// axis holds real and imaginary parts.
func Eig(a any) (values, vectors *Tensor, err error) { return Default().Eig(a) }

// Lstsq returns the least-squares solution of a·x = b and the rank of a.
func Lstsq(a, b any) (*Tensor, int, error) { return Default().Lstsq(a, b) }

// Convolve2D convolves two matrices. mode is "full", "valid" or "same";
// boundary is "fill", "wrap" or "symm".
func Convolve2D(a, b any, mode, boundary string, fillValue float64) (*Tensor, error) {
	return Default().Convolve2D(a, b, mode, boundary, fillValue)
}

// Correlate2D cross-correlates two matrices; see Convolve2D.
func Correlate2D(a, b any, mode, boundary string, fillValue float64) (*Tensor, error) {
	return Default().Correlate2D(a, b, mode, boundary, fillValue)
}
