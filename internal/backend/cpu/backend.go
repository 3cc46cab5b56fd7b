// Package cpu implements the host backend: kernels over []float64.
//
// Kernels partition output elements across goroutines (see internal/parallel)
// and accumulate every output element sequentially, so results are
// bit-identical for any worker count.
package cpu

import (
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// CPUBackend implements tensor.Backend on host memory.
type CPUBackend struct {
	device tensor.Device
	cfg    parallel.Config
}

// New creates a new CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend using cfg for kernel fan-out.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.HostDevice,
		cfg:    cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Parallel returns the kernel fan-out configuration.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.cfg
}

// Alloc returns zeroed host storage.
func (cpu *CPUBackend) Alloc(n int) (tensor.Memory, error) {
	return make(tensor.HostMemory, n), nil
}

// Free is a no-op: host storage is reclaimed by the garbage collector.
func (cpu *CPUBackend) Free(tensor.Memory) {}

// Upload copies src into dst.
func (cpu *CPUBackend) Upload(dst tensor.Memory, src []float64) error {
	d, err := hostMemory(dst)
	if err != nil {
		return err
	}
	if len(src) > len(d) {
		return errors.Wrapf(tensor.ErrSizeMismatch, "upload %d elements into %d", len(src), len(d))
	}
	copy(d, src)
	return nil
}

// Download copies src into dst.
func (cpu *CPUBackend) Download(src tensor.Memory, dst []float64) error {
	s, err := hostMemory(src)
	if err != nil {
		return err
	}
	if len(dst) < len(s) {
		return errors.Wrapf(tensor.ErrSizeMismatch, "download %d elements into %d", len(s), len(dst))
	}
	copy(dst, s)
	return nil
}

// Copy copies the strided src into dst.
func (cpu *CPUBackend) Copy(dst, src tensor.Operand) {
	CopyKernel(view(dst), view(src), cpu.cfg)
}

// Fill writes value into every element of dst.
func (cpu *CPUBackend) Fill(dst tensor.Operand, value float64) {
	FillKernel(view(dst), value, cpu.cfg)
}

// Binary computes dst = op(a, b).
func (cpu *CPUBackend) Binary(op tensor.BinaryOp, dst, a, b tensor.Operand) {
	BinaryKernel(op, view(dst), view(a), view(b), cpu.cfg)
}

// Unary computes dst = op(x).
func (cpu *CPUBackend) Unary(op tensor.UnaryOp, dst, x tensor.Operand) {
	UnaryKernel(op, view(dst), view(x), cpu.cfg)
}

// Reduce reduces x along axis into dst.
func (cpu *CPUBackend) Reduce(op tensor.ReduceOp, dst, x tensor.Operand, axis int) {
	ReduceKernel(op, view(dst), view(x), axis, cpu.cfg)
}

// MatMul multiplies host operands, see MatMulKernel.
func (cpu *CPUBackend) MatMul(dst, a, b tensor.Operand) {
	MatMulKernel(view(dst), view(a), view(b), cpu.cfg)
}

func hostMemory(m tensor.Memory) (tensor.HostMemory, error) {
	h, ok := m.(tensor.HostMemory)
	if !ok {
		return nil, errors.Wrapf(tensor.ErrInvalidDevice, "cpu backend cannot access %T", m)
	}
	return h, nil
}

// view converts a host operand. Operands reach a backend only after the arena
// matched them to it, so foreign memory here is a programming error.
func view(o tensor.Operand) View {
	h, err := hostMemory(o.Mem)
	if err != nil {
		panic(err)
	}
	return View{Data: h, Shape: o.Shape, Strides: o.Strides, Offset: o.Offset}
}

var _ tensor.Backend = (*CPUBackend)(nil)
