package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

const epsilon = 1e-12

func operand(data []float64, shape tensor.Shape) tensor.Operand {
	return tensor.Operand{Mem: tensor.HostMemory(data), Shape: shape, Strides: shape.ComputeStrides()}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

func TestBinaryBroadcast(t *testing.T) {
	backend := New()

	// [2,3] + [3] -> [2,3]
	a := operand([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := operand([]float64{10, 20, 30}, tensor.Shape{3})
	out := make([]float64, 6)
	dst := operand(out, tensor.Shape{2, 3})

	backend.Binary(tensor.OpAdd, dst, a.BroadcastTo(dst.Shape), b.BroadcastTo(dst.Shape))

	expected := []float64{11, 22, 33, 14, 25, 36}
	if !floatsEqual(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestBinaryOps(t *testing.T) {
	backend := New()

	tests := []struct {
		name     string
		op       tensor.BinaryOp
		a, b     []float64
		expected []float64
	}{
		{"subtract", tensor.OpSubtract, []float64{5, 1}, []float64{2, 3}, []float64{3, -2}},
		{"divide by zero", tensor.OpDivide, []float64{1, -1, 0}, []float64{0, 0, 0}, []float64{math.Inf(1), math.Inf(-1), math.NaN()}},
		{"mod floored", tensor.OpMod, []float64{7, -7, 7, -7}, []float64{3, 3, -3, -3}, []float64{1, 2, -2, -1}},
		{"pow", tensor.OpPow, []float64{2, 9}, []float64{10, 0.5}, []float64{1024, 3}},
		{"maximum nan", tensor.OpMaximum, []float64{1, math.NaN()}, []float64{2, 0}, []float64{2, math.NaN()}},
		{"minimum", tensor.OpMinimum, []float64{1, 5}, []float64{2, 0}, []float64{1, 0}},
		{"arctan2", tensor.OpArctan2, []float64{1, 0}, []float64{1, -1}, []float64{math.Pi / 4, math.Pi}},
		{"equal", tensor.OpEqual, []float64{1, 2}, []float64{1, 3}, []float64{1, 0}},
		{"not equal", tensor.OpNotEqual, []float64{1, 2}, []float64{1, 3}, []float64{0, 1}},
		{"greater", tensor.OpGreater, []float64{1, 4}, []float64{2, 3}, []float64{0, 1}},
		{"greater equal", tensor.OpGreaterEqual, []float64{3, 2}, []float64{3, 3}, []float64{1, 0}},
		{"less", tensor.OpLess, []float64{1, 4}, []float64{2, 3}, []float64{1, 0}},
		{"less equal", tensor.OpLessEqual, []float64{3, 4}, []float64{3, 3}, []float64{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := tensor.Shape{len(tt.a)}
			out := make([]float64, len(tt.a))
			backend.Binary(tt.op, operand(out, shape), operand(tt.a, shape), operand(tt.b, shape))
			if !floatsEqual(out, tt.expected) {
				t.Errorf("%s: expected %v, got %v", tt.op, tt.expected, out)
			}
		})
	}
}

func TestUnaryOps(t *testing.T) {
	backend := New()

	tests := []struct {
		op       tensor.UnaryOp
		input    []float64
		expected []float64
	}{
		{tensor.OpNegative, []float64{1, -2}, []float64{-1, 2}},
		{tensor.OpReciprocal, []float64{2, 0}, []float64{0.5, math.Inf(1)}},
		{tensor.OpRsqrt, []float64{4}, []float64{0.5}},
		{tensor.OpSign, []float64{-3, 0, 2}, []float64{-1, 0, 1}},
		{tensor.OpSinc, []float64{0, 1}, []float64{1, 0}},
		{tensor.OpRound, []float64{0.5, 1.5, -0.5, 2.4}, []float64{1, 2, -1, 2}},
		{tensor.OpRint, []float64{0.5, 1.5, -0.5, 2.6}, []float64{0, 2, 0, 3}},
		{tensor.OpFix, []float64{-1.7, 1.7}, []float64{-1, 1}},
		{tensor.OpCeil, []float64{-1.7, 1.2}, []float64{-1, 2}},
		{tensor.OpFloor, []float64{-1.2, 1.7}, []float64{-2, 1}},
		{tensor.OpDegrees, []float64{math.Pi}, []float64{180}},
		{tensor.OpRadians, []float64{90}, []float64{math.Pi / 2}},
		{tensor.OpLog, []float64{0, -1}, []float64{math.Inf(-1), math.NaN()}},
		{tensor.OpSquare, []float64{-3}, []float64{9}},
		{tensor.OpExp2, []float64{3}, []float64{8}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			shape := tensor.Shape{len(tt.input)}
			out := make([]float64, len(tt.input))
			backend.Unary(tt.op, operand(out, shape), operand(tt.input, shape))
			if !floatsEqual(out, tt.expected) {
				t.Errorf("%s: expected %v, got %v", tt.op, tt.expected, out)
			}
		})
	}
}

func TestUnaryStridedInput(t *testing.T) {
	backend := New()

	// Transposed [[1,2],[3,4]] read through strides.
	x := tensor.Operand{Mem: tensor.HostMemory{1, 2, 3, 4}, Shape: tensor.Shape{2, 2}, Strides: []int{1, 2}}
	out := make([]float64, 4)
	backend.Unary(tensor.OpNegative, operand(out, tensor.Shape{2, 2}), x)

	expected := []float64{-1, -3, -2, -4}
	if !floatsEqual(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestReduce(t *testing.T) {
	backend := New()
	// [[1, 5, 3],
	//  [4, 2, 6]]
	x := operand([]float64{1, 5, 3, 4, 2, 6}, tensor.Shape{2, 3})

	tests := []struct {
		name     string
		op       tensor.ReduceOp
		axis     int
		expected []float64
	}{
		{"sum all", tensor.OpSum, -1, []float64{21}},
		{"sum axis 0", tensor.OpSum, 0, []float64{5, 7, 9}},
		{"sum axis 1", tensor.OpSum, 1, []float64{9, 12}},
		{"prod axis 1", tensor.OpProd, 1, []float64{15, 48}},
		{"max axis 0", tensor.OpMax, 0, []float64{4, 5, 6}},
		{"min all", tensor.OpMin, -1, []float64{1}},
		{"mean axis 1", tensor.OpMean, 1, []float64{3, 4}},
		{"variance axis 0", tensor.OpVariance, 0, []float64{2.25, 2.25, 2.25}},
		{"argmax all", tensor.OpArgMax, -1, []float64{5}},
		{"argmax axis 1", tensor.OpArgMax, 1, []float64{1, 2}},
		{"argmin axis 0", tensor.OpArgMin, 0, []float64{0, 1, 0}},
		{"all", tensor.OpAll, -1, []float64{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]float64, len(tt.expected))
			backend.Reduce(tt.op, operand(out, tensor.Shape{len(out)}), x, tt.axis)
			if !floatsEqual(out, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, out)
			}
		})
	}
}

func TestReduceArgTiesPickLowestIndex(t *testing.T) {
	backend := New()
	x := operand([]float64{3, 7, 7, 1, 1}, tensor.Shape{5})

	out := make([]float64, 1)
	backend.Reduce(tensor.OpArgMax, operand(out, tensor.Shape{}), x, -1)
	if out[0] != 1 {
		t.Errorf("argmax: expected 1, got %v", out[0])
	}
	backend.Reduce(tensor.OpArgMin, operand(out, tensor.Shape{}), x, -1)
	if out[0] != 3 {
		t.Errorf("argmin: expected 3, got %v", out[0])
	}
}

func TestReduceDeterministicAcrossWorkers(t *testing.T) {
	n := 1 << 14
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(float64(i)) * 1e3
	}
	x := operand(data, tensor.Shape{128, n / 128})

	var reference []float64
	for _, workers := range []int{1, 2, 3, 8} {
		cfg := parallel.Config{Enabled: workers > 1, NumWorkers: workers, MinChunkSize: 1}
		backend := NewWithConfig(cfg)
		out := make([]float64, 128)
		backend.Reduce(tensor.OpSum, operand(out, tensor.Shape{128}), x, 1)
		if reference == nil {
			reference = out
			continue
		}
		for i := range out {
			if out[i] != reference[i] {
				t.Fatalf("workers=%d: output %d differs: %v vs %v", workers, i, out[i], reference[i])
			}
		}
	}
}

func TestCopyAndFillStrided(t *testing.T) {
	backend := New()
	data := []float64{0, 1, 2, 3, 4, 5}

	// Every other element: [0, 2, 4].
	src := tensor.Operand{Mem: tensor.HostMemory(data), Shape: tensor.Shape{3}, Strides: []int{2}}
	out := make([]float64, 3)
	backend.Copy(operand(out, tensor.Shape{3}), src)
	if !floatsEqual(out, []float64{0, 2, 4}) {
		t.Errorf("copy: got %v", out)
	}

	backend.Fill(tensor.Operand{Mem: tensor.HostMemory(data), Shape: tensor.Shape{3}, Strides: []int{2}, Offset: 1}, -1)
	if !floatsEqual(data, []float64{0, -1, 2, -1, 4, -1}) {
		t.Errorf("fill: got %v", data)
	}
}

func TestMatMulKernel(t *testing.T) {
	backend := New()

	// [2,3] @ [3,2]
	a := operand([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := operand([]float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
	out := make([]float64, 4)
	backend.MatMul(operand(out, tensor.Shape{2, 2}), a, b)

	expected := []float64{58, 64, 139, 154}
	if !floatsEqual(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}

func TestMatMulKernelBroadcastBatch(t *testing.T) {
	backend := New()

	// a: [2, 2, 2] batch, b: [2, 2] shared by both batches (stride 0 on batch axis).
	a := operand([]float64{1, 0, 0, 1, 2, 0, 0, 2}, tensor.Shape{2, 2, 2})
	b := tensor.Operand{Mem: tensor.HostMemory{1, 2, 3, 4}, Shape: tensor.Shape{2, 2, 2}, Strides: []int{0, 2, 1}}
	out := make([]float64, 8)
	backend.MatMul(operand(out, tensor.Shape{2, 2, 2}), a, b)

	expected := []float64{1, 2, 3, 4, 2, 4, 6, 8}
	if !floatsEqual(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
}
