// Package linalg implements the linear algebra routines of the engine.
//
// Every routine computes on the host. Accelerator inputs are staged to host
// memory first and results are host tensors allocated in the first input's arena;
// callers move them to another device when needed. Decompositions use
// gonum.org/v1/gonum/mat; LU with partial pivoting is implemented here so the
// singular-pivot rule and the permutation layout are under our control.
package linalg

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// matrix is a dense row-major host copy of a rank-2 tensor.
type matrix struct {
	rows, cols int
	data       []float64
}

func (m matrix) at(i, j int) float64 { return m.data[i*m.cols+j] }

func (m matrix) dense() *mat.Dense { return mat.NewDense(m.rows, m.cols, m.data) }

// asMatrix copies a rank-2 tensor to the host.
func asMatrix(op string, t *tensor.RawTensor) (matrix, error) {
	if t.Rank() != 2 {
		return matrix{}, errors.Wrapf(tensor.ErrRankMismatch, "%s: expected a matrix, got shape %v", op, t.Shape())
	}
	values, err := t.Values()
	if err != nil {
		return matrix{}, errors.WithMessage(err, op)
	}
	return matrix{rows: t.Shape()[0], cols: t.Shape()[1], data: values}, nil
}

// asSquare copies a non-empty square rank-2 tensor to the host.
func asSquare(op string, t *tensor.RawTensor) (matrix, error) {
	m, err := asMatrix(op, t)
	if err != nil {
		return m, err
	}
	if m.rows != m.cols {
		return m, errors.Wrapf(tensor.ErrNotSquare, "%s: shape %v", op, t.Shape())
	}
	return m, nil
}

// asNonEmpty rejects matrices gonum cannot factorize.
func asNonEmpty(op string, m matrix) error {
	if m.rows == 0 || m.cols == 0 {
		return errors.Wrapf(tensor.ErrInvalidShape, "%s: empty matrix (%d, %d)", op, m.rows, m.cols)
	}
	return nil
}

// hostTensor allocates a host tensor next to like.
func hostTensor(like *tensor.RawTensor, shape tensor.Shape, values []float64) (*tensor.RawTensor, error) {
	return tensor.FromValues(like.Arena(), tensor.HostDevice, shape, values)
}

func denseTensor(like *tensor.RawTensor, d mat.Matrix) (*tensor.RawTensor, error) {
	r, c := d.Dims()
	values := make([]float64, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			values[i*c+j] = d.At(i, j)
		}
	}
	return hostTensor(like, tensor.Shape{r, c}, values)
}

// releaseAll drops tensors built before a later step failed.
func releaseAll(ts ...*tensor.RawTensor) {
	for _, t := range ts {
		if t != nil {
			t.Release()
		}
	}
}

// hostOperand returns a host operand for t, staging accelerator data.
// The returned func releases the staging copy.
func hostOperand(t *tensor.RawTensor) (tensor.Operand, func(), error) {
	src := t
	done := func() {}
	if !t.Device().IsHost() {
		staged, err := t.CopyTo(tensor.HostDevice)
		if err != nil {
			return tensor.Operand{}, nil, err
		}
		src = staged
		done = staged.Release
	}
	op, _, err := src.Operand()
	if err != nil {
		done()
		return tensor.Operand{}, nil, err
	}
	return op, done, nil
}
