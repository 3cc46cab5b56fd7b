package linalg

import (
	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// MatMul is the matrix product with batching.
//
// The last two axes are matrices and leading axes broadcast as in elementwise ops.
// A rank-1 a is treated as a row vector and a rank-1 b as a column vector;
// the added axis is removed from the result.
func MatMul(a, b *tensor.RawTensor, cfg parallel.Config) (*tensor.RawTensor, error) {
	if a.Rank() == 0 || b.Rank() == 0 {
		return nil, errors.Wrapf(tensor.ErrRankMismatch, "matmul: scalar operand (%v @ %v)", a.Shape(), b.Shape())
	}
	aOp, aDone, err := hostOperand(a)
	if err != nil {
		return nil, err
	}
	defer aDone()
	bOp, bDone, err := hostOperand(b)
	if err != nil {
		return nil, err
	}
	defer bDone()

	// Promote vectors.
	aVec, bVec := a.Rank() == 1, b.Rank() == 1
	if aVec {
		aOp.Shape = tensor.Shape{1, aOp.Shape[0]}
		aOp.Strides = []int{0, aOp.Strides[0]}
	}
	if bVec {
		bOp.Shape = tensor.Shape{bOp.Shape[0], 1}
		bOp.Strides = []int{bOp.Strides[0], 0}
	}

	ra, rb := len(aOp.Shape), len(bOp.Shape)
	m, k := aOp.Shape[ra-2], aOp.Shape[ra-1]
	k2, n := bOp.Shape[rb-2], bOp.Shape[rb-1]
	if k != k2 {
		return nil, errors.Wrapf(tensor.ErrIncompatible, "matmul: %v @ %v, inner dimensions %d != %d",
			a.Shape(), b.Shape(), k, k2)
	}
	batch, err := tensor.BroadcastShapes(aOp.Shape[:ra-2], bOp.Shape[:rb-2])
	if err != nil {
		return nil, errors.WithMessagef(err, "matmul: batch axes of %v @ %v", a.Shape(), b.Shape())
	}

	full := func(rows, cols int) tensor.Shape {
		s := append(batch.Clone(), rows, cols)
		return s
	}
	outShape := full(m, n)
	out, err := tensor.NewRaw(a.Arena(), tensor.HostDevice, outShape)
	if err != nil {
		return nil, err
	}
	dst, _, err := out.Operand()
	if err != nil {
		out.Release()
		return nil, err
	}
	cpu.NewWithConfig(cfg).MatMul(dst, aOp.BroadcastTo(full(m, k)), bOp.BroadcastTo(full(k, n)))

	final := outShape
	switch {
	case aVec && bVec:
		final = batch.Clone()
	case aVec:
		final = append(batch.Clone(), n)
	case bVec:
		final = append(batch.Clone(), m)
	}
	if len(final) == len(outShape) {
		return out, nil
	}
	defer out.Release()
	return out.Reshape(final)
}

// Dot follows the classic dot product rules: scalars multiply, vectors give the
// inner product, matrices multiply, and for higher ranks the last axis of a is
// contracted with the second-to-last axis of b.
func Dot(a, b *tensor.RawTensor, cfg parallel.Config) (*tensor.RawTensor, error) {
	switch {
	case a.Rank() == 0 || b.Rank() == 0:
		return scale(a, b)
	case a.Rank() <= 2 && b.Rank() <= 2:
		return MatMul(a, b, cfg)
	}

	av, err := a.Values()
	if err != nil {
		return nil, err
	}
	bv, err := b.Values()
	if err != nil {
		return nil, err
	}
	as, bs := a.Shape(), b.Shape()
	k := as[len(as)-1]
	kAxis := max(len(bs)-2, 0)
	if bs[kAxis] != k {
		return nil, errors.Wrapf(tensor.ErrIncompatible, "dot: %v . %v, contracted dimensions %d != %d", as, bs, k, bs[kAxis])
	}
	// b viewed as [pre, k, post].
	pre := bs[:kAxis].NumElements()
	post := bs[kAxis+1:].NumElements()
	rowsA := as[:len(as)-1].NumElements()

	outShape := append(as[:len(as)-1].Clone(), bs[:kAxis]...)
	outShape = append(outShape, bs[kAxis+1:]...)
	out := make([]float64, rowsA*pre*post)
	for i := 0; i < rowsA; i++ {
		for p := 0; p < pre; p++ {
			for q := 0; q < post; q++ {
				sum := 0.0
				for kk := 0; kk < k; kk++ {
					sum += av[i*k+kk] * bv[(p*k+kk)*post+q]
				}
				out[(i*pre+p)*post+q] = sum
			}
		}
	}
	return hostTensor(a, outShape, out)
}

// scale multiplies when one side is a scalar.
func scale(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.Rank() != 0 {
		a, b = b, a
	}
	s, err := a.Item()
	if err != nil {
		return nil, err
	}
	values, err := b.Values()
	if err != nil {
		return nil, err
	}
	for i := range values {
		values[i] *= s
	}
	return hostTensor(b, b.Shape(), values)
}

// Inner contracts the last axes of a and b.
func Inner(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.Rank() == 0 || b.Rank() == 0 {
		return scale(a, b)
	}
	as, bs := a.Shape(), b.Shape()
	k := as[len(as)-1]
	if bs[len(bs)-1] != k {
		return nil, errors.Wrapf(tensor.ErrIncompatible, "inner: last dimensions of %v and %v differ", as, bs)
	}
	av, err := a.Values()
	if err != nil {
		return nil, err
	}
	bv, err := b.Values()
	if err != nil {
		return nil, err
	}
	rowsA := as[:len(as)-1].NumElements()
	rowsB := bs[:len(bs)-1].NumElements()
	out := make([]float64, rowsA*rowsB)
	for i := 0; i < rowsA; i++ {
		for j := 0; j < rowsB; j++ {
			sum := 0.0
			for kk := 0; kk < k; kk++ {
				sum += av[i*k+kk] * bv[j*k+kk]
			}
			out[i*rowsB+j] = sum
		}
	}
	shape := append(as[:len(as)-1].Clone(), bs[:len(bs)-1]...)
	return hostTensor(a, shape, out)
}

// Outer returns the outer product of the flattened inputs.
func Outer(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	av, err := a.Values()
	if err != nil {
		return nil, err
	}
	bv, err := b.Values()
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(av)*len(bv))
	for i, x := range av {
		for j, y := range bv {
			out[i*len(bv)+j] = x * y
		}
	}
	return hostTensor(a, tensor.Shape{len(av), len(bv)}, out)
}

// Trace sums the main diagonal over the first two axes.
// The result has the remaining axes' shape.
func Trace(a *tensor.RawTensor) (*tensor.RawTensor, error) {
	if a.Rank() < 2 {
		return nil, errors.Wrapf(tensor.ErrRankMismatch, "trace: rank %d < 2", a.Rank())
	}
	d, err := a.Diagonal(0, 0, 1)
	if err != nil {
		return nil, err
	}
	defer d.Release()
	values, err := d.Values()
	if err != nil {
		return nil, err
	}
	shape := d.Shape()
	n := shape[len(shape)-1]
	rest := shape[:len(shape)-1].Clone()
	out := make([]float64, rest.NumElements())
	for i := range out {
		for j := 0; j < n; j++ {
			out[i] += values[i*n+j]
		}
	}
	return hostTensor(a, rest, out)
}

// Diag builds a square matrix with v on the k-th diagonal when v is a vector,
// or extracts a copy of the k-th diagonal when v is a matrix.
func Diag(v *tensor.RawTensor, k int) (*tensor.RawTensor, error) {
	switch v.Rank() {
	case 1:
		values, err := v.Values()
		if err != nil {
			return nil, err
		}
		n := len(values) + abs(k)
		out := make([]float64, n*n)
		for i, x := range values {
			row, col := i, i+k
			if k < 0 {
				row, col = i-k, i
			}
			out[row*n+col] = x
		}
		return hostTensor(v, tensor.Shape{n, n}, out)
	case 2:
		d, err := v.Diagonal(k, 0, 1)
		if err != nil {
			return nil, err
		}
		defer d.Release()
		values, err := d.Values()
		if err != nil {
			return nil, err
		}
		return hostTensor(v, d.Shape().Clone(), values)
	}
	return nil, errors.Wrapf(tensor.ErrRankMismatch, "diag: rank must be 1 or 2, got %d", v.Rank())
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
