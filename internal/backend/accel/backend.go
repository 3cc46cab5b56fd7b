// Package accel implements the accelerator backend.
//
// Accelerator memory is disjoint from host memory: buffers are only reachable
// through Upload and Download, and scalar access through the arena fails.
// Kernels run through a Kernels capability. Without a hardware kernel set,
// or for layouts a kernel set declines, the portable emulation executes the
// host kernels on the accelerator-resident storage.
package accel

import (
	"sync"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Memory is accelerator-resident storage.
type Memory struct {
	device tensor.Device
	data   []float64
}

// Len returns the number of elements.
func (m *Memory) Len() int { return len(m.data) }

// Kernels is a hardware kernel set. Each method reports false when it cannot
// handle the given layout, in which case the backend emulates the kernel.
type Kernels interface {
	Name() string
	Binary(op tensor.BinaryOp, dst, a, b cpu.View) bool
	Unary(op tensor.UnaryOp, dst, x cpu.View) bool
	Close()
}

// Backend implements tensor.Backend for one accelerator.
type Backend struct {
	device  tensor.Device
	kernels Kernels
	cfg     parallel.Config

	mu        sync.Mutex
	liveBytes int64
	peakBytes int64
}

// New creates the backend for accelerator id. kernels may be nil for pure emulation.
func New(id int, kernels Kernels, cfg parallel.Config) *Backend {
	b := &Backend{
		device:  tensor.AcceleratorDevice(id),
		kernels: kernels,
		cfg:     cfg,
	}
	if kernels != nil {
		klog.V(1).Infof("accel: %s using %s kernels", b.device, kernels.Name())
	} else {
		klog.V(1).Infof("accel: %s using emulated kernels", b.device)
	}
	return b
}

// Name returns the backend name.
func (b *Backend) Name() string {
	if b.kernels != nil {
		return "Accelerator(" + b.kernels.Name() + ")"
	}
	return "Accelerator(emulated)"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return b.device
}

// PeakBytes returns the high-water mark of allocated accelerator memory.
func (b *Backend) PeakBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peakBytes
}

// Alloc returns zeroed accelerator storage.
func (b *Backend) Alloc(n int) (tensor.Memory, error) {
	b.mu.Lock()
	b.liveBytes += int64(n) * 8
	b.peakBytes = max(b.peakBytes, b.liveBytes)
	b.mu.Unlock()
	return &Memory{device: b.device, data: make([]float64, n)}, nil
}

// Free releases accelerator storage.
func (b *Backend) Free(m tensor.Memory) {
	mem, ok := m.(*Memory)
	if !ok {
		return
	}
	b.mu.Lock()
	b.liveBytes -= int64(len(mem.data)) * 8
	b.mu.Unlock()
	mem.data = nil
}

// Upload copies host values into accelerator storage.
func (b *Backend) Upload(dst tensor.Memory, src []float64) error {
	mem, err := b.memory(dst)
	if err != nil {
		return err
	}
	if len(src) > len(mem.data) {
		return errors.Wrapf(tensor.ErrSizeMismatch, "upload %d elements into %d", len(src), len(mem.data))
	}
	copy(mem.data, src)
	return nil
}

// Download copies accelerator storage into host memory.
func (b *Backend) Download(src tensor.Memory, dst []float64) error {
	mem, err := b.memory(src)
	if err != nil {
		return err
	}
	if len(dst) < len(mem.data) {
		return errors.Wrapf(tensor.ErrSizeMismatch, "download %d elements into %d", len(mem.data), len(dst))
	}
	copy(dst, mem.data)
	return nil
}

// Copy copies the strided src into dst.
func (b *Backend) Copy(dst, src tensor.Operand) {
	cpu.CopyKernel(b.view(dst), b.view(src), b.cfg)
}

// Fill writes value into every element of dst.
func (b *Backend) Fill(dst tensor.Operand, value float64) {
	cpu.FillKernel(b.view(dst), value, b.cfg)
}

// Binary computes dst = op(a, b).
func (b *Backend) Binary(op tensor.BinaryOp, dst, x, y tensor.Operand) {
	d, vx, vy := b.view(dst), b.view(x), b.view(y)
	if b.kernels != nil && b.kernels.Binary(op, d, vx, vy) {
		return
	}
	cpu.BinaryKernel(op, d, vx, vy, b.cfg)
}

// Unary computes dst = op(x).
func (b *Backend) Unary(op tensor.UnaryOp, dst, x tensor.Operand) {
	d, vx := b.view(dst), b.view(x)
	if b.kernels != nil && b.kernels.Unary(op, d, vx) {
		return
	}
	cpu.UnaryKernel(op, d, vx, b.cfg)
}

// Reduce reduces x along axis into dst.
func (b *Backend) Reduce(op tensor.ReduceOp, dst, x tensor.Operand, axis int) {
	cpu.ReduceKernel(op, b.view(dst), b.view(x), axis, b.cfg)
}

// Close releases the kernel set.
func (b *Backend) Close() {
	if b.kernels != nil {
		b.kernels.Close()
	}
}

func (b *Backend) memory(m tensor.Memory) (*Memory, error) {
	mem, ok := m.(*Memory)
	if !ok || mem.device != b.device {
		return nil, errors.Wrapf(tensor.ErrInvalidDevice, "%s cannot access %T", b.device, m)
	}
	return mem, nil
}

func (b *Backend) view(o tensor.Operand) cpu.View {
	mem, err := b.memory(o.Mem)
	if err != nil {
		panic(err)
	}
	return cpu.View{Data: mem.data, Shape: o.Shape, Strides: o.Strides, Offset: o.Offset}
}

var _ tensor.Backend = (*Backend)(nil)
