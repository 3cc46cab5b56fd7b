package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// lane is the sequence of elements one output of a reduction consumes.
type lane struct {
	data   []float64
	start  int
	stride int
	n      int
}

func (l lane) at(k int) float64 { return l.data[l.start+k*l.stride] }

// ReduceKernel reduces x along axis into the contiguous dst.
// With axis < 0 every element of x is reduced into dst.Data[dst.Offset].
// Each output is accumulated sequentially in index order.
func ReduceKernel(op tensor.ReduceOp, dst, x View, axis int, cfg parallel.Config) {
	f := reduceFunc(op)
	if axis < 0 {
		dst.Data[dst.Offset] = f(flatLane(x))
		return
	}

	outer := make(tensor.Shape, 0, len(x.Shape)-1)
	outerStrides := make([]int, 0, len(x.Shape)-1)
	for i, d := range x.Shape {
		if i != axis {
			outer = append(outer, d)
			outerStrides = append(outerStrides, x.Strides[i])
		}
	}
	base := View{Data: x.Data, Shape: outer, Strides: outerStrides, Offset: x.Offset}
	n := outer.NumElements()
	parallel.ForRange(n, func(start, end int) {
		c := newCursor(outer, start, base)
		for o := start; o < end; o++ {
			l := lane{data: x.Data, start: c.pos[0], stride: x.Strides[axis], n: x.Shape[axis]}
			dst.Data[dst.Offset+o] = f(l)
			c.next()
		}
	}, cfg)
}

// flatLane exposes all of x as one lane, materializing it when x is strided.
func flatLane(x View) lane {
	n := x.Size()
	if x.dense() {
		return lane{data: x.Data, start: x.Offset, stride: 1, n: n}
	}
	values := make([]float64, n)
	if n > 0 {
		c := newCursor(x.Shape, 0, x)
		for i := range values {
			values[i] = x.Data[c.pos[0]]
			c.next()
		}
	}
	return lane{data: values, stride: 1, n: n}
}

func reduceFunc(op tensor.ReduceOp) func(lane) float64 {
	switch op {
	case tensor.OpSum:
		return sumLane
	case tensor.OpProd:
		return func(l lane) float64 {
			p := 1.0
			for k := 0; k < l.n; k++ {
				p *= l.at(k)
			}
			return p
		}
	case tensor.OpMax:
		return func(l lane) float64 { return l.at(extremeIndex(l, func(a, b float64) bool { return a > b })) }
	case tensor.OpMin:
		return func(l lane) float64 { return l.at(extremeIndex(l, func(a, b float64) bool { return a < b })) }
	case tensor.OpArgMax:
		return func(l lane) float64 { return float64(extremeIndex(l, func(a, b float64) bool { return a > b })) }
	case tensor.OpArgMin:
		return func(l lane) float64 { return float64(extremeIndex(l, func(a, b float64) bool { return a < b })) }
	case tensor.OpMean:
		return func(l lane) float64 { return sumLane(l) / float64(l.n) }
	case tensor.OpVariance:
		return varianceLane
	case tensor.OpAll:
		return func(l lane) float64 {
			for k := 0; k < l.n; k++ {
				if l.at(k) == 0 {
					return 0
				}
			}
			return 1
		}
	}
	panic(errors.Errorf("cpu: unknown reduce op %d", op))
}

func sumLane(l lane) float64 {
	s := 0.0
	for k := 0; k < l.n; k++ {
		s += l.at(k)
	}
	return s
}

// varianceLane is the two-pass population variance.
func varianceLane(l lane) float64 {
	mean := sumLane(l) / float64(l.n)
	s := 0.0
	for k := 0; k < l.n; k++ {
		d := l.at(k) - mean
		s += d * d
	}
	return s / float64(l.n)
}

// extremeIndex returns the first index whose value beats every other under better.
// The first NaN wins, matching NaN propagation of max and min.
// Callers guarantee l.n > 0.
func extremeIndex(l lane, better func(a, b float64) bool) int {
	best := 0
	bestV := l.at(0)
	if math.IsNaN(bestV) {
		return 0
	}
	for k := 1; k < l.n; k++ {
		v := l.at(k)
		if math.IsNaN(v) {
			return k
		}
		if better(v, bestV) {
			best, bestV = k, v
		}
	}
	return best
}
