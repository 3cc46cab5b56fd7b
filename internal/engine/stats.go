package engine

import (
	"math"
	"slices"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// lanes copies x to the host as the row-major sequence of lanes along axis
// (every element in one lane when axis is nil).
func lanes(x *tensor.RawTensor, axis *int) (out [][]float64, n int, err error) {
	src := x
	n = x.Size()
	outer := 1
	if axis != nil {
		moved, err := x.MoveAxis(*axis, -1)
		if err != nil {
			return nil, 0, err
		}
		defer moved.Release()
		src = moved
		n = x.Shape()[*axis]
		outer = tensor.ReducedShape(x.Shape(), axis, false).NumElements()
	}
	values, err := src.Values()
	if err != nil {
		return nil, 0, err
	}
	out = make([][]float64, outer)
	for i := range out {
		out[i] = values[i*n : (i+1)*n]
	}
	return out, n, nil
}

// laneStat reduces every lane of a with f into a host tensor.
func (e *Engine) laneStat(name string, a any, axis *int, keepDims bool, f func([]float64) float64) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	defer done()
	var normalized *int
	if axis != nil {
		ax, err := tensor.NormalizeAxis(*axis, x.Rank())
		if err != nil {
			return nil, errors.WithMessage(err, name)
		}
		normalized = &ax
	}
	ls, n, err := lanes(x, normalized)
	if err != nil {
		return nil, err
	}
	if n == 0 && len(ls) > 0 {
		return nil, errors.Wrapf(tensor.ErrInvalidShape, "%s: empty reduction over %v", name, x.Shape())
	}
	values := make([]float64, len(ls))
	for i, l := range ls {
		values[i] = f(l)
	}
	return tensor.FromValues(e.arena, tensor.HostDevice, tensor.ReducedShape(x.Shape(), normalized, keepDims), values)
}

// Quantile returns the q-th quantile (q in [0, 1]) along axis, interpolating
// linearly between the two order statistics bracketing q·(n-1).
// A lane containing NaN yields NaN. The result is a host tensor.
func (e *Engine) Quantile(a any, q float64, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "quantile: q must be in [0, 1], got %g", q)
	}
	return e.laneStat("quantile", a, axis, keepDims, func(l []float64) float64 {
		return quantile(l, q)
	})
}

// Median is Quantile(a, 0.5).
func (e *Engine) Median(a any, axis *int, keepDims bool) (*tensor.RawTensor, error) {
	return e.laneStat("median", a, axis, keepDims, func(l []float64) float64 {
		return quantile(l, 0.5)
	})
}

func quantile(lane []float64, q float64) float64 {
	sorted := slices.Clone(lane)
	for _, v := range sorted {
		if math.IsNaN(v) {
			return math.NaN()
		}
	}
	slices.Sort(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Average is the weighted mean along axis. Nil weights give the plain mean.
// Weights have a's shape, or are a vector as long as the reduced axis.
// The result is a host tensor.
func (e *Engine) Average(a, weights any, axis *int) (*tensor.RawTensor, error) {
	if weights == nil {
		return e.Mean(a, axis, false)
	}
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, "average")
	}
	defer done()
	w, wDone, err := e.lift(weights)
	if err != nil {
		return nil, errors.WithMessage(err, "average weights")
	}
	defer wDone()

	var normalized *int
	if axis != nil {
		ax, err := tensor.NormalizeAxis(*axis, x.Rank())
		if err != nil {
			return nil, errors.WithMessage(err, "average")
		}
		normalized = &ax
	}

	ls, n, err := lanes(x, normalized)
	if err != nil {
		return nil, err
	}
	var wls [][]float64
	switch {
	case w.Shape().Equal(x.Shape()):
		if wls, _, err = lanes(w, normalized); err != nil {
			return nil, err
		}
	case normalized != nil && w.Rank() == 1 && w.Shape()[0] == n:
		wv, err := w.Values()
		if err != nil {
			return nil, err
		}
		wls = make([][]float64, len(ls))
		for i := range wls {
			wls[i] = wv
		}
	default:
		return nil, errors.Wrapf(tensor.ErrIncompatible, "average: weights %v for array %v", w.Shape(), x.Shape())
	}

	values := make([]float64, len(ls))
	for i, l := range ls {
		if sum := sumOf(wls[i]); sum == 0 {
			return nil, errors.Wrapf(tensor.ErrInvalidArgument, "average: weights sum to zero")
		}
		values[i] = stat.Mean(l, wls[i])
	}
	return tensor.FromValues(e.arena, tensor.HostDevice, tensor.ReducedShape(x.Shape(), normalized, false), values)
}

func sumOf(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

// AllClose reports whether |a - b| <= atol + rtol·|b| for every broadcast pair.
// NaNs never compare close.
func (e *Engine) AllClose(a, b any, rtol, atol float64) (bool, error) {
	ts, done, err := e.liftAll([]any{a, b})
	if err != nil {
		return false, errors.WithMessage(err, "allclose")
	}
	defer done()
	shape, err := tensor.BroadcastShapes(ts[0].Shape(), ts[1].Shape())
	if err != nil {
		return false, errors.WithMessage(err, "allclose")
	}
	var values [2][]float64
	for i, t := range ts {
		bt, err := t.BroadcastTo(shape)
		if err != nil {
			return false, err
		}
		values[i], err = bt.Values()
		bt.Release()
		if err != nil {
			return false, err
		}
	}
	for i, x := range values[0] {
		y := values[1][i]
		if x == y {
			continue
		}
		if !(math.Abs(x-y) <= atol+rtol*math.Abs(y)) {
			return false, nil
		}
	}
	return true, nil
}
