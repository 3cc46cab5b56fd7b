package cpu

import (
	"math"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// UnaryFunc returns the scalar function behind a unary kernel.
func UnaryFunc(op tensor.UnaryOp) func(x float64) float64 {
	switch op {
	case tensor.OpNegative:
		return func(x float64) float64 { return -x }
	case tensor.OpPositive:
		return func(x float64) float64 { return x }
	case tensor.OpReciprocal:
		return func(x float64) float64 { return 1 / x }
	case tensor.OpExp:
		return math.Exp
	case tensor.OpExp2:
		return math.Exp2
	case tensor.OpExpm1:
		return math.Expm1
	case tensor.OpLog:
		return math.Log
	case tensor.OpLog1p:
		return math.Log1p
	case tensor.OpLog2:
		return math.Log2
	case tensor.OpLog10:
		return math.Log10
	case tensor.OpLogb:
		return math.Logb
	case tensor.OpSqrt:
		return math.Sqrt
	case tensor.OpRsqrt:
		return func(x float64) float64 { return 1 / math.Sqrt(x) }
	case tensor.OpSquare:
		return func(x float64) float64 { return x * x }
	case tensor.OpAbs:
		return math.Abs
	case tensor.OpSign:
		return sign
	case tensor.OpSinc:
		return sinc
	case tensor.OpCeil:
		return math.Ceil
	case tensor.OpFloor:
		return math.Floor
	case tensor.OpRint:
		return math.RoundToEven
	case tensor.OpRound:
		return math.Round
	case tensor.OpTrunc, tensor.OpFix:
		return math.Trunc
	case tensor.OpSin:
		return math.Sin
	case tensor.OpCos:
		return math.Cos
	case tensor.OpTan:
		return math.Tan
	case tensor.OpArcsin:
		return math.Asin
	case tensor.OpArccos:
		return math.Acos
	case tensor.OpArctan:
		return math.Atan
	case tensor.OpSinh:
		return math.Sinh
	case tensor.OpCosh:
		return math.Cosh
	case tensor.OpTanh:
		return math.Tanh
	case tensor.OpArcsinh:
		return math.Asinh
	case tensor.OpArccosh:
		return math.Acosh
	case tensor.OpArctanh:
		return math.Atanh
	case tensor.OpDegrees:
		return func(x float64) float64 { return x * 180 / math.Pi }
	case tensor.OpRadians:
		return func(x float64) float64 { return x * math.Pi / 180 }
	}
	panic(errors.Errorf("cpu: unknown unary op %d", op))
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x // 0, -0 or NaN
}

// sinc is the normalized sinc, sin(πx)/(πx).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// UnaryKernel computes dst = op(x). x has dst.Shape.
func UnaryKernel(op tensor.UnaryOp, dst, x View, cfg parallel.Config) {
	f := UnaryFunc(op)
	n := dst.Size()
	if dst.dense() && x.dense() {
		d := dst.Data[dst.Offset : dst.Offset+n]
		s := x.Data[x.Offset : x.Offset+n]
		parallel.ForRange(n, func(start, end int) {
			for i := start; i < end; i++ {
				d[i] = f(s[i])
			}
		}, cfg)
		return
	}
	parallel.ForRange(n, func(start, end int) {
		c := newCursor(dst.Shape, start, dst, x)
		for i := start; i < end; i++ {
			dst.Data[c.pos[0]] = f(x.Data[c.pos[1]])
			c.next()
		}
	}, cfg)
}
