// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

// Binary operations broadcast their operands. The result lives on the
// highest-priority operand device.

// Add returns a + b elementwise.
func Add(a, b any) (*Tensor, error) { return Default().Add(a, b) }

// Subtract returns a - b elementwise.
func Subtract(a, b any) (*Tensor, error) { return Default().Subtract(a, b) }

// Multiply returns a * b elementwise.
func Multiply(a, b any) (*Tensor, error) { return Default().Multiply(a, b) }

// Divide returns a / b elementwise.
func Divide(a, b any) (*Tensor, error) { return Default().Divide(a, b) }

// Mod returns the floored remainder of a / b elementwise.
func Mod(a, b any) (*Tensor, error) { return Default().Mod(a, b) }

// Pow raises a to the power b elementwise.
func Pow(a, b any) (*Tensor, error) { return Default().Pow(a, b) }

// Maximum returns the elementwise larger of a and b.
func Maximum(a, b any) (*Tensor, error) { return Default().Maximum(a, b) }

// Minimum returns the elementwise smaller of a and b.
func Minimum(a, b any) (*Tensor, error) { return Default().Minimum(a, b) }

// Arctan2 returns the angle of the point (b, a) elementwise.
func Arctan2(a, b any) (*Tensor, error) { return Default().Arctan2(a, b) }

// Comparisons yield 1 where the relation holds and 0 elsewhere.

// Equal compares a == b elementwise.
func Equal(a, b any) (*Tensor, error) { return Default().Equal(a, b) }

// NotEqual compares a != b elementwise.
func NotEqual(a, b any) (*Tensor, error) { return Default().NotEqual(a, b) }

// Greater compares a > b elementwise.
func Greater(a, b any) (*Tensor, error) { return Default().Greater(a, b) }

// GreaterEqual compares a >= b elementwise.
func GreaterEqual(a, b any) (*Tensor, error) { return Default().GreaterEqual(a, b) }

// Less compares a < b elementwise.
func Less(a, b any) (*Tensor, error) { return Default().Less(a, b) }

// LessEqual compares a <= b elementwise.
func LessEqual(a, b any) (*Tensor, error) { return Default().LessEqual(a, b) }

// Negative returns -a.
func Negative(a any) (*Tensor, error) { return Default().Negative(a) }

// Positive returns a copy of a.
func Positive(a any) (*Tensor, error) { return Default().Positive(a) }

// Reciprocal returns 1/a.
func Reciprocal(a any) (*Tensor, error) { return Default().Reciprocal(a) }

// Exp returns e**a.
func Exp(a any) (*Tensor, error) { return Default().Exp(a) }

// Exp2 returns 2**a.
func Exp2(a any) (*Tensor, error) { return Default().Exp2(a) }

// Expm1 returns e**a - 1, accurate near zero.
func Expm1(a any) (*Tensor, error) { return Default().Expm1(a) }

// Log returns the natural logarithm of a.
func Log(a any) (*Tensor, error) { return Default().Log(a) }

// Log1p returns log(1 + a), accurate near zero.
func Log1p(a any) (*Tensor, error) { return Default().Log1p(a) }

// Log2 returns the base-2 logarithm of a.
func Log2(a any) (*Tensor, error) { return Default().Log2(a) }

// Log10 returns the base-10 logarithm of a.
func Log10(a any) (*Tensor, error) { return Default().Log10(a) }

// Logb returns the binary exponent of a.
func Logb(a any) (*Tensor, error) { return Default().Logb(a) }

// Sqrt returns the square root of a.
func Sqrt(a any) (*Tensor, error) { return Default().Sqrt(a) }

// Rsqrt returns 1/sqrt(a).
func Rsqrt(a any) (*Tensor, error) { return Default().Rsqrt(a) }

// Square returns a*a.
func Square(a any) (*Tensor, error) { return Default().Square(a) }

// Abs returns |a|.
func Abs(a any) (*Tensor, error) { return Default().Abs(a) }

// Sign returns -1, 0 or 1 following the sign of a.
func Sign(a any) (*Tensor, error) { return Default().Sign(a) }

// Sinc returns the normalized sinc of a.
func Sinc(a any) (*Tensor, error) { return Default().Sinc(a) }

// Ceil rounds a up.
func Ceil(a any) (*Tensor, error) { return Default().Ceil(a) }

// Floor rounds a down.
func Floor(a any) (*Tensor, error) { return Default().Floor(a) }

// Rint rounds half to even.
func Rint(a any) (*Tensor, error) { return Default().Rint(a) }

// Round rounds half away from zero.
func Round(a any) (*Tensor, error) { return Default().Round(a) }

// Trunc rounds a toward zero.
func Trunc(a any) (*Tensor, error) { return Default().Trunc(a) }

// Fix rounds a toward zero.
func Fix(a any) (*Tensor, error) { return Default().Fix(a) }

// Sin returns the sine of a.
func Sin(a any) (*Tensor, error) { return Default().Sin(a) }

// Cos returns the cosine of a.
func Cos(a any) (*Tensor, error) { return Default().Cos(a) }

// Tan returns the tangent of a.
func Tan(a any) (*Tensor, error) { return Default().Tan(a) }

// Arcsin returns the inverse sine of a.
func Arcsin(a any) (*Tensor, error) { return Default().Arcsin(a) }

// Arccos returns the inverse cosine of a.
func Arccos(a any) (*Tensor, error) { return Default().Arccos(a) }

// Arctan returns the inverse tangent of a.
func Arctan(a any) (*Tensor, error) { return Default().Arctan(a) }

// Sinh returns the hyperbolic sine of a.
func Sinh(a any) (*Tensor, error) { return Default().Sinh(a) }

// Cosh returns the hyperbolic cosine of a.
func Cosh(a any) (*Tensor, error) { return Default().Cosh(a) }

// Tanh returns the hyperbolic tangent of a.
func Tanh(a any) (*Tensor, error) { return Default().Tanh(a) }

// Arcsinh returns the inverse hyperbolic sine of a.
func Arcsinh(a any) (*Tensor, error) { return Default().Arcsinh(a) }

// Arccosh returns the inverse hyperbolic cosine of a.
func Arccosh(a any) (*Tensor, error) { return Default().Arccosh(a) }

// Arctanh returns the inverse hyperbolic tangent of a.
func Arctanh(a any) (*Tensor, error) { return Default().Arctanh(a) }

// Degrees converts radians to degrees.
func Degrees(a any) (*Tensor, error) { return Default().Degrees(a) }

// Radians converts degrees to radians.
func Radians(a any) (*Tensor, error) { return Default().Radians(a) }

// Clip limits every element to [lo, hi].
func Clip(a, lo, hi any) (*Tensor, error) { return Default().Clip(a, lo, hi) }
