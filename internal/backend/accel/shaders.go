//go:build webgpu

package accel

import (
	"strings"

	"github.com/born-ml/ndarray/internal/tensor"
)

// workgroupSize is the number of threads per workgroup.
const workgroupSize = 256

const binaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = a[idx];
        let y = b[idx];
        result[idx] = EXPR;
    }
}
`

const unaryShaderTemplate = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        result[idx] = EXPR;
    }
}
`

// binaryExpressions are the WGSL bodies of the binary kernels offloaded to the GPU.
var binaryExpressions = map[tensor.BinaryOp]string{
	tensor.OpAdd:      "x + y",
	tensor.OpSubtract: "x - y",
	tensor.OpMultiply: "x * y",
	tensor.OpDivide:   "x / y",
	tensor.OpPow:      "pow(x, y)",
	tensor.OpMaximum:  "max(x, y)",
	tensor.OpMinimum:  "min(x, y)",
	tensor.OpArctan2:  "atan2(x, y)",
}

var unaryExpressions = map[tensor.UnaryOp]string{
	tensor.OpNegative: "-x",
	tensor.OpExp:      "exp(x)",
	tensor.OpLog:      "log(x)",
	tensor.OpSqrt:     "sqrt(x)",
	tensor.OpRsqrt:    "inverseSqrt(x)",
	tensor.OpAbs:      "abs(x)",
	tensor.OpSin:      "sin(x)",
	tensor.OpCos:      "cos(x)",
	tensor.OpTan:      "tan(x)",
	tensor.OpTanh:     "tanh(x)",
	tensor.OpFloor:    "floor(x)",
	tensor.OpCeil:     "ceil(x)",
	tensor.OpSquare:   "x * x",
}

func binaryShader(expr string) string {
	return strings.Replace(binaryShaderTemplate, "EXPR", expr, 1)
}

func unaryShader(expr string) string {
	return strings.Replace(unaryShaderTemplate, "EXPR", expr, 1)
}
