package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// BinaryFunc returns the scalar function behind a binary kernel.
func BinaryFunc(op tensor.BinaryOp) func(a, b float64) float64 {
	switch op {
	case tensor.OpAdd:
		return func(a, b float64) float64 { return a + b }
	case tensor.OpSubtract:
		return func(a, b float64) float64 { return a - b }
	case tensor.OpMultiply:
		return func(a, b float64) float64 { return a * b }
	case tensor.OpDivide:
		return func(a, b float64) float64 { return a / b }
	case tensor.OpMod:
		return floorMod
	case tensor.OpPow:
		return math.Pow
	case tensor.OpMaximum:
		return maximum
	case tensor.OpMinimum:
		return minimum
	case tensor.OpArctan2:
		return math.Atan2
	case tensor.OpEqual:
		return func(a, b float64) float64 { return boolToFloat(a == b) }
	case tensor.OpNotEqual:
		return func(a, b float64) float64 { return boolToFloat(a != b) }
	case tensor.OpGreater:
		return func(a, b float64) float64 { return boolToFloat(a > b) }
	case tensor.OpGreaterEqual:
		return func(a, b float64) float64 { return boolToFloat(a >= b) }
	case tensor.OpLess:
		return func(a, b float64) float64 { return boolToFloat(a < b) }
	case tensor.OpLessEqual:
		return func(a, b float64) float64 { return boolToFloat(a <= b) }
	}
	panic(errors.Errorf("cpu: unknown binary op %d", op))
}

// floorMod returns the remainder with the sign of the divisor.
func floorMod(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// maximum propagates NaN from either side.
func maximum(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return math.Max(a, b)
}

func minimum(a, b float64) float64 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.NaN()
	}
	return math.Min(a, b)
}

func boolToFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// BinaryKernel computes dst = op(a, b). a and b are already broadcast to dst.Shape.
func BinaryKernel(op tensor.BinaryOp, dst, a, b View, cfg parallel.Config) {
	f := BinaryFunc(op)
	n := dst.Size()
	if dst.dense() && a.dense() && b.dense() {
		d := dst.Data[dst.Offset : dst.Offset+n]
		x := a.Data[a.Offset : a.Offset+n]
		y := b.Data[b.Offset : b.Offset+n]
		parallel.ForRange(n, func(start, end int) {
			for i := start; i < end; i++ {
				d[i] = f(x[i], y[i])
			}
		}, cfg)
		return
	}
	parallel.ForRange(n, func(start, end int) {
		c := newCursor(dst.Shape, start, dst, a, b)
		for i := start; i < end; i++ {
			dst.Data[c.pos[0]] = f(a.Data[c.pos[1]], b.Data[c.pos[2]])
			c.next()
		}
	}, cfg)
}
