package tensor

// Memory is element storage owned by one backend.
// Only the backend that allocated it may interpret it.
type Memory interface {
	Len() int
}

// HostMemory is host-resident element storage.
type HostMemory []float64

// Len returns the number of elements.
func (m HostMemory) Len() int { return len(m) }

// Operand describes a strided window into a Memory.
// Element at coordinates c lives at Offset + Σ c[i]*Strides[i].
type Operand struct {
	Mem     Memory
	Shape   Shape
	Strides []int
	Offset  int
}

// Size returns the number of elements the operand covers.
func (o Operand) Size() int { return o.Shape.NumElements() }

// BroadcastTo returns o read as if it had shape, using zero strides on broadcast axes.
func (o Operand) BroadcastTo(shape Shape) Operand {
	return Operand{
		Mem:     o.Mem,
		Shape:   shape,
		Strides: BroadcastStrides(o.Shape, o.Strides, shape),
		Offset:  o.Offset,
	}
}

// Backend executes kernels for exactly one device.
//
// Kernel methods assume their operands were validated by the caller:
// Binary inputs are already broadcast to dst.Shape, Unary input has dst.Shape,
// and Reduce writes a contiguous dst holding the reduced shape.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Metadata
	Name() string
	Device() Device

	// Memory management. Alloc returns zeroed storage.
	Alloc(n int) (Memory, error)
	Free(m Memory)
	Upload(dst Memory, src []float64) error
	Download(src Memory, dst []float64) error

	// Raw strided copy and fill. dst and src have the same shape.
	Copy(dst, src Operand)
	Fill(dst Operand, value float64)

	// Elementwise kernels.
	Binary(op BinaryOp, dst, a, b Operand)
	Unary(op UnaryOp, dst, x Operand)

	// Reduce reduces x along axis into dst. axis < 0 reduces every element into a scalar.
	Reduce(op ReduceOp, dst, x Operand, axis int)
}

// BinaryOp enumerates elementwise binary kernels.
type BinaryOp int

// Binary kernels. Comparisons produce 1 for true and 0 for false.
const (
	OpAdd BinaryOp = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpMod
	OpPow
	OpMaximum
	OpMinimum
	OpArctan2
	OpEqual
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
)

var binaryOpNames = [...]string{
	"add", "subtract", "multiply", "divide", "mod", "pow", "maximum", "minimum", "arctan2",
	"equal", "not_equal", "greater", "greater_equal", "less", "less_equal",
}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpNames) {
		return "unknown"
	}
	return binaryOpNames[op]
}

// UnaryOp enumerates elementwise unary kernels.
type UnaryOp int

// Unary kernels.
const (
	OpNegative UnaryOp = iota
	OpPositive
	OpReciprocal
	OpExp
	OpExp2
	OpExpm1
	OpLog
	OpLog1p
	OpLog2
	OpLog10
	OpLogb
	OpSqrt
	OpRsqrt
	OpSquare
	OpAbs
	OpSign
	OpSinc
	OpCeil
	OpFloor
	OpRint
	OpRound
	OpTrunc
	OpFix
	OpSin
	OpCos
	OpTan
	OpArcsin
	OpArccos
	OpArctan
	OpSinh
	OpCosh
	OpTanh
	OpArcsinh
	OpArccosh
	OpArctanh
	OpDegrees
	OpRadians
)

var unaryOpNames = [...]string{
	"negative", "positive", "reciprocal", "exp", "exp2", "expm1", "log", "log1p", "log2",
	"log10", "logb", "sqrt", "rsqrt", "square", "abs", "sign", "sinc", "ceil", "floor",
	"rint", "round", "trunc", "fix", "sin", "cos", "tan", "arcsin", "arccos", "arctan",
	"sinh", "cosh", "tanh", "arcsinh", "arccosh", "arctanh", "degrees", "radians",
}

func (op UnaryOp) String() string {
	if op < 0 || int(op) >= len(unaryOpNames) {
		return "unknown"
	}
	return unaryOpNames[op]
}

// ReduceOp enumerates axis reductions.
type ReduceOp int

// Reductions. ArgMax and ArgMin store indices as float64.
// Variance is the population variance.
const (
	OpSum ReduceOp = iota
	OpProd
	OpMax
	OpMin
	OpMean
	OpVariance
	OpArgMax
	OpArgMin
	OpAll
)

var reduceOpNames = [...]string{
	"sum", "prod", "max", "min", "mean", "variance", "argmax", "argmin", "all",
}

func (op ReduceOp) String() string {
	if op < 0 || int(op) >= len(reduceOpNames) {
		return "unknown"
	}
	return reduceOpNames[op]
}

// NeedsElements reports whether op is undefined on an empty axis.
func (op ReduceOp) NeedsElements() bool {
	switch op {
	case OpMax, OpMin, OpArgMax, OpArgMin:
		return true
	}
	return false
}
