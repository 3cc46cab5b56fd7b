package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Binary applies op elementwise over the broadcast shape of a and b.
//
// The result lives on the operand device with the higher priority; the other
// operand is staged there for the call. Operands on two different accelerators
// fail with ErrMultiDeviceAccelerators.
func (e *Engine) Binary(op tensor.BinaryOp, a, b any) (*tensor.RawTensor, error) {
	x, xDone, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, op.String())
	}
	defer xDone()
	y, yDone, err := e.lift(b)
	if err != nil {
		return nil, errors.WithMessage(err, op.String())
	}
	defer yDone()

	shape, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		return nil, errors.WithMessage(err, op.String())
	}
	device, err := placement(x.Device(), y.Device())
	if err != nil {
		return nil, errors.WithMessage(err, op.String())
	}
	xs, xsDone, err := stage(x, device)
	if err != nil {
		return nil, err
	}
	defer xsDone()
	ys, ysDone, err := stage(y, device)
	if err != nil {
		return nil, err
	}
	defer ysDone()

	xo, _, err := xs.Operand()
	if err != nil {
		return nil, err
	}
	yo, _, err := ys.Operand()
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(e.arena, device, shape)
	if err != nil {
		return nil, err
	}
	dst, backend, err := out.Operand()
	if err != nil {
		out.Release()
		return nil, err
	}
	backend.Binary(op, dst, xo.BroadcastTo(shape), yo.BroadcastTo(shape))
	return out, nil
}

// Unary applies op elementwise. The result has a's shape and device.
func (e *Engine) Unary(op tensor.UnaryOp, a any) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, op.String())
	}
	defer done()
	src, _, err := x.Operand()
	if err != nil {
		return nil, err
	}
	out, err := tensor.NewRaw(e.arena, x.Device(), x.Shape())
	if err != nil {
		return nil, err
	}
	dst, backend, err := out.Operand()
	if err != nil {
		out.Release()
		return nil, err
	}
	backend.Unary(op, dst, src)
	return out, nil
}

// Clip limits a to [lo, hi]; lo and hi broadcast against a. NaN stays NaN.
func (e *Engine) Clip(a, lo, hi any) (*tensor.RawTensor, error) {
	floor, err := e.Binary(tensor.OpMaximum, a, lo)
	if err != nil {
		return nil, errors.WithMessage(err, "clip")
	}
	defer floor.Release()
	out, err := e.Binary(tensor.OpMinimum, floor, hi)
	if err != nil {
		return nil, errors.WithMessage(err, "clip")
	}
	return out, nil
}

// Add returns a + b elementwise.
func (e *Engine) Add(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpAdd, a, b) }

// Subtract returns a - b elementwise.
func (e *Engine) Subtract(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpSubtract, a, b) }

// Multiply returns a * b elementwise.
func (e *Engine) Multiply(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpMultiply, a, b) }

// Divide follows IEEE-754: x/0 is ±Inf and 0/0 is NaN.
func (e *Engine) Divide(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpDivide, a, b) }

// Mod is the floored remainder; the result has the sign of b.
func (e *Engine) Mod(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpMod, a, b) }

// Pow raises a to the power b elementwise.
func (e *Engine) Pow(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpPow, a, b) }

// Maximum returns the elementwise larger of a and b.
func (e *Engine) Maximum(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpMaximum, a, b) }

// Minimum returns the elementwise smaller of a and b.
func (e *Engine) Minimum(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpMinimum, a, b) }

// Arctan2 returns the angle of the point (b, a) elementwise.
func (e *Engine) Arctan2(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpArctan2, a, b) }

// Comparisons produce 1 where the relation holds and 0 elsewhere.

// Equal compares a == b elementwise.
func (e *Engine) Equal(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpEqual, a, b) }

// NotEqual compares a != b elementwise.
func (e *Engine) NotEqual(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpNotEqual, a, b) }

// Greater compares a > b elementwise.
func (e *Engine) Greater(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpGreater, a, b) }

// GreaterEqual compares a >= b elementwise.
func (e *Engine) GreaterEqual(a, b any) (*tensor.RawTensor, error) {
	return e.Binary(tensor.OpGreaterEqual, a, b)
}

// Less compares a < b elementwise.
func (e *Engine) Less(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpLess, a, b) }

// LessEqual compares a <= b elementwise.
func (e *Engine) LessEqual(a, b any) (*tensor.RawTensor, error) { return e.Binary(tensor.OpLessEqual, a, b) }

// Negative returns -a.
func (e *Engine) Negative(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpNegative, a) }

// Positive returns a copy of a.
func (e *Engine) Positive(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpPositive, a) }

// Reciprocal returns 1/a.
func (e *Engine) Reciprocal(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpReciprocal, a) }

// Exp returns e**a.
func (e *Engine) Exp(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpExp, a) }

// Exp2 returns 2**a.
func (e *Engine) Exp2(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpExp2, a) }

// Expm1 returns e**a - 1, accurate near zero.
func (e *Engine) Expm1(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpExpm1, a) }

// Log returns the natural logarithm of a.
func (e *Engine) Log(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpLog, a) }

// Log1p returns log(1 + a), accurate near zero.
func (e *Engine) Log1p(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpLog1p, a) }

// Log2 returns the base-2 logarithm of a.
func (e *Engine) Log2(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpLog2, a) }

// Log10 returns the base-10 logarithm of a.
func (e *Engine) Log10(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpLog10, a) }

// Logb returns the binary exponent of a.
func (e *Engine) Logb(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpLogb, a) }

// Sqrt returns the square root of a.
func (e *Engine) Sqrt(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpSqrt, a) }

// Rsqrt returns 1/sqrt(a).
func (e *Engine) Rsqrt(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpRsqrt, a) }

// Square returns a*a.
func (e *Engine) Square(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpSquare, a) }

// Abs returns |a|.
func (e *Engine) Abs(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpAbs, a) }

// Sign returns -1, 0 or 1 following the sign of a.
func (e *Engine) Sign(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpSign, a) }

// Sinc returns the normalized sinc of a.
func (e *Engine) Sinc(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpSinc, a) }

// Ceil rounds a up.
func (e *Engine) Ceil(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpCeil, a) }

// Floor rounds a down.
func (e *Engine) Floor(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpFloor, a) }

// Rint rounds half to even.
func (e *Engine) Rint(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpRint, a) }

// Round rounds half away from zero.
func (e *Engine) Round(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpRound, a) }

// Trunc rounds a toward zero.
func (e *Engine) Trunc(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpTrunc, a) }

// Fix rounds a toward zero.
func (e *Engine) Fix(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpFix, a) }

// Sin returns the sine of a.
func (e *Engine) Sin(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpSin, a) }

// Cos returns the cosine of a.
func (e *Engine) Cos(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpCos, a) }

// Tan returns the tangent of a.
func (e *Engine) Tan(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpTan, a) }

// Arcsin returns the inverse sine of a.
func (e *Engine) Arcsin(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpArcsin, a) }

// Arccos returns the inverse cosine of a.
func (e *Engine) Arccos(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpArccos, a) }

// Arctan returns the inverse tangent of a.
func (e *Engine) Arctan(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpArctan, a) }

// Sinh returns the hyperbolic sine of a.
func (e *Engine) Sinh(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpSinh, a) }

// Cosh returns the hyperbolic cosine of a.
func (e *Engine) Cosh(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpCosh, a) }

// Tanh returns the hyperbolic tangent of a.
func (e *Engine) Tanh(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpTanh, a) }

// Arcsinh returns the inverse hyperbolic sine of a.
func (e *Engine) Arcsinh(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpArcsinh, a) }

// Arccosh returns the inverse hyperbolic cosine of a.
func (e *Engine) Arccosh(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpArccosh, a) }

// Arctanh returns the inverse hyperbolic tangent of a.
func (e *Engine) Arctanh(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpArctanh, a) }

// Degrees converts radians to degrees.
func (e *Engine) Degrees(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpDegrees, a) }

// Radians converts degrees to radians.
func (e *Engine) Radians(a any) (*tensor.RawTensor, error) { return e.Unary(tensor.OpRadians, a) }
