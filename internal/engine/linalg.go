package engine

import (
	"github.com/born-ml/ndarray/internal/linalg"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Linear algebra runs on the host; results are host tensors.

func (e *Engine) unaryLinalg(name string, a any, f func(*tensor.RawTensor) (*tensor.RawTensor, error)) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	defer done()
	return f(x)
}

func (e *Engine) binaryLinalg(name string, a, b any, f func(x, y *tensor.RawTensor) (*tensor.RawTensor, error)) (*tensor.RawTensor, error) {
	ts, done, err := e.liftAll([]any{a, b})
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	defer done()
	return f(ts[0], ts[1])
}

// MatMul is the batched matrix product; see linalg.MatMul.
func (e *Engine) MatMul(a, b any) (*tensor.RawTensor, error) {
	return e.binaryLinalg("matmul", a, b, func(x, y *tensor.RawTensor) (*tensor.RawTensor, error) {
		return linalg.MatMul(x, y, e.par)
	})
}

// Dot is the dot product of a and b.
func (e *Engine) Dot(a, b any) (*tensor.RawTensor, error) {
	return e.binaryLinalg("dot", a, b, func(x, y *tensor.RawTensor) (*tensor.RawTensor, error) {
		return linalg.Dot(x, y, e.par)
	})
}

// Inner contracts the last axes of a and b.
func (e *Engine) Inner(a, b any) (*tensor.RawTensor, error) {
	return e.binaryLinalg("inner", a, b, linalg.Inner)
}

// Outer is the outer product of the flattened inputs.
func (e *Engine) Outer(a, b any) (*tensor.RawTensor, error) {
	return e.binaryLinalg("outer", a, b, linalg.Outer)
}

// Solve solves a·x = b with LU and partial pivoting.
func (e *Engine) Solve(a, b any) (*tensor.RawTensor, error) {
	return e.binaryLinalg("solve", a, b, linalg.Solve)
}

// Inv returns the inverse of a square matrix.
func (e *Engine) Inv(a any) (*tensor.RawTensor, error) { return e.unaryLinalg("inv", a, linalg.Inv) }

// Det returns the determinant of a square matrix.
func (e *Engine) Det(a any) (*tensor.RawTensor, error) { return e.unaryLinalg("det", a, linalg.Det) }

// Cond returns the 2-norm condition number of a.
func (e *Engine) Cond(a any) (*tensor.RawTensor, error) { return e.unaryLinalg("cond", a, linalg.Cond) }

// Cholesky returns the lower Cholesky factor of a.
func (e *Engine) Cholesky(a any) (*tensor.RawTensor, error) { return e.unaryLinalg("cholesky", a, linalg.Cholesky) }

// Trace sums the main diagonal of a.
func (e *Engine) Trace(a any) (*tensor.RawTensor, error) { return e.unaryLinalg("trace", a, linalg.Trace) }

// Diag builds a matrix from a vector's k-th diagonal, or extracts a matrix's k-th diagonal.
func (e *Engine) Diag(a any, k int) (*tensor.RawTensor, error) {
	return e.unaryLinalg("diag", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return linalg.Diag(x, k) })
}

// Norm supports orders 1 and 2.
func (e *Engine) Norm(a any, order int) (*tensor.RawTensor, error) {
	return e.unaryLinalg("norm", a, func(x *tensor.RawTensor) (*tensor.RawTensor, error) { return linalg.Norm(x, order) })
}

// MatrixRank counts singular values strictly above tol; tol < 0 selects a default.
func (e *Engine) MatrixRank(a any, tol float64) (int, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return 0, errors.WithMessage(err, "matrix_rank")
	}
	defer done()
	return linalg.MatrixRank(x, tol)
}

// SVD returns U, S and Vh.
func (e *Engine) SVD(a any) (u, s, vh *tensor.RawTensor, err error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, nil, nil, errors.WithMessage(err, "svd")
	}
	defer done()
	return linalg.SVD(x)
}

// QR returns Q and R.
func (e *Engine) QR(a any) (q, r *tensor.RawTensor, err error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "qr")
	}
	defer done()
	return linalg.QR(x)
}

// LU returns P, L and U with a = P·L·U.
func (e *Engine) LU(a any) (p, l, u *tensor.RawTensor, err error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, nil, nil, errors.WithMessage(err, "lu")
	}
	defer done()
	return linalg.LU(x)
}

// Eig returns eigenvalues [n, 2] and eigenvectors [n, n, 2] as real and imaginary channels.
func (e *Engine) Eig(a any) (values, vectors *tensor.RawTensor, err error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "eig")
	}
	defer done()
	return linalg.Eig(x)
}

// Lstsq returns the least-squares solution of a·x = b and the effective rank of a.
func (e *Engine) Lstsq(a, b any) (*tensor.RawTensor, int, error) {
	ts, done, err := e.liftAll([]any{a, b})
	if err != nil {
		return nil, 0, errors.WithMessage(err, "lstsq")
	}
	defer done()
	return linalg.Lstsq(ts[0], ts[1])
}
