// Package tensor provides the core tensor types of the engine: shapes, devices,
// the reference-counted buffer arena and strided RawTensor views over it.
package tensor

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// RawTensor is the low-level tensor representation.
// It is a strided window (shape, strides, offset) over an arena buffer.
// Several RawTensors may share one buffer; each holds its own reference.
type RawTensor struct {
	arena    *Arena
	handle   Handle
	shape    Shape
	strides  []int
	offset   int
	device   Device
	released *atomic.Bool
}

// cleanupRef is what the GC cleanup needs to drop a forgotten reference.
type cleanupRef struct {
	arena    *Arena
	handle   Handle
	released *atomic.Bool
}

func releaseForgotten(ref cleanupRef) {
	if ref.released.CompareAndSwap(false, true) {
		klog.V(2).Infof("tensor: releasing unreleased reference to buffer %d", ref.handle)
		_ = ref.arena.Release(ref.handle)
	}
}

// wrap builds a tensor over an already-referenced handle.
// The reference is owned by the returned tensor.
func wrap(arena *Arena, h Handle, device Device, shape Shape, strides []int, offset int) *RawTensor {
	r := &RawTensor{
		arena:    arena,
		handle:   h,
		shape:    shape,
		strides:  strides,
		offset:   offset,
		device:   device,
		released: new(atomic.Bool),
	}
	runtime.AddCleanup(r, releaseForgotten, cleanupRef{arena: arena, handle: h, released: r.released})
	return r
}

// NewRaw allocates a zeroed contiguous tensor on device.
func NewRaw(arena *Arena, device Device, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	h, err := arena.Allocate(device, shape.NumElements())
	if err != nil {
		return nil, err
	}
	shape = shape.Clone()
	return wrap(arena, h, device, shape, shape.ComputeStrides(), 0), nil
}

// FromValues creates a contiguous tensor on device holding a copy of values in row-major order.
func FromValues(arena *Arena, device Device, shape Shape, values []float64) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(values) {
		return nil, errors.Wrapf(ErrSizeMismatch, "%d values for shape %v", len(values), shape)
	}
	h, err := arena.Upload(device, values)
	if err != nil {
		return nil, err
	}
	shape = shape.Clone()
	return wrap(arena, h, device, shape, shape.ComputeStrides(), 0), nil
}

// Arena returns the arena owning the tensor's buffer.
func (r *RawTensor) Arena() *Arena { return r.arena }

// Handle returns the arena handle of the tensor's buffer.
func (r *RawTensor) Handle() Handle { return r.handle }

// Shape returns the tensor's shape. Callers must not modify it.
func (r *RawTensor) Shape() Shape { return r.shape }

// Strides returns the tensor's element strides.
func (r *RawTensor) Strides() []int { return r.strides }

// Offset returns the element offset of the first element.
func (r *RawTensor) Offset() int { return r.offset }

// Device returns the device holding the tensor's buffer.
func (r *RawTensor) Device() Device { return r.device }

// IsGPU reports whether the tensor lives in accelerator memory.
func (r *RawTensor) IsGPU() bool { return r.device.Kind == Accelerator }

// Size returns the number of elements.
func (r *RawTensor) Size() int { return r.shape.NumElements() }

// Rank returns the number of axes.
func (r *RawTensor) Rank() int { return len(r.shape) }

// IsContiguous reports whether the tensor is laid out densely in row-major order.
func (r *RawTensor) IsContiguous() bool { return IsContiguous(r.shape, r.strides) }

// RefCount returns the number of live references to the tensor's buffer.
func (r *RawTensor) RefCount() int { return r.arena.RefCount(r.handle) }

// IsView reports whether the tensor aliases a buffer it does not exclusively own
// or reads it through a non-canonical layout.
func (r *RawTensor) IsView() bool {
	return r.offset != 0 || !r.IsContiguous() || r.RefCount() > 1
}

// Released reports whether Release was already called.
func (r *RawTensor) Released() bool { return r.released.Load() }

// Release drops the tensor's reference to its buffer. Releasing twice is a no-op.
func (r *RawTensor) Release() {
	if r.released.CompareAndSwap(false, true) {
		_ = r.arena.Release(r.handle)
	}
}

// Operand returns the strided window the tensor reads together with its backend.
func (r *RawTensor) Operand() (Operand, Backend, error) {
	if r.released.Load() {
		return Operand{}, nil, errors.Wrapf(ErrReleased, "tensor %v on %s", r.shape, r.device)
	}
	mem, _, b, err := r.arena.Lookup(r.handle)
	if err != nil {
		return Operand{}, nil, err
	}
	return Operand{Mem: mem, Shape: r.shape, Strides: r.strides, Offset: r.offset}, b, nil
}

// Fill writes value into every element the tensor can reach.
// It fails with ErrOwnership when another tensor shares the buffer.
func (r *RawTensor) Fill(value float64) error {
	if r.released.Load() {
		return errors.Wrapf(ErrReleased, "fill: tensor %v", r.shape)
	}
	err := r.arena.WriteExclusive(r.handle, func(mem Memory, b Backend) {
		b.Fill(Operand{Mem: mem, Shape: r.shape, Strides: r.strides, Offset: r.offset}, value)
	})
	return errors.WithMessage(err, "fill")
}

// SetAt writes value at the given coordinates. Host tensors only.
// It fails with ErrOwnership when another tensor shares the buffer.
func (r *RawTensor) SetAt(coords []int, value float64) error {
	pos, err := r.position("set", coords)
	if err != nil {
		return err
	}
	if !r.device.IsHost() {
		return errors.Wrapf(ErrHostOnly, "set: tensor lives on %s", r.device)
	}
	err = r.arena.WriteExclusive(r.handle, func(mem Memory, _ Backend) {
		mem.(HostMemory)[pos] = value
	})
	return errors.WithMessage(err, "set")
}

// Assign copies value into the region of r selected by specs.
// value broadcasts to the region's shape and is staged to host when needed.
// Host tensors only. It fails with ErrOwnership when another tensor shares
// r's buffer, which includes value being a view of r.
func (r *RawTensor) Assign(specs []SliceSpec, value *RawTensor) error {
	if !r.device.IsHost() {
		return errors.Wrapf(ErrHostOnly, "assign: tensor lives on %s", r.device)
	}
	if r.released.Load() || value.released.Load() {
		return errors.Wrapf(ErrReleased, "assign %v into %v", value.shape, r.shape)
	}
	if value.arena != r.arena {
		return errors.Wrap(ErrInvalidDevice, "assign: value belongs to another arena")
	}
	if value.handle == r.handle {
		return errors.Wrap(ErrOwnership, "assign: value shares the target buffer, copy it first")
	}
	shape, strides, offset, err := r.sliceLayout(specs)
	if err != nil {
		return errors.WithMessage(err, "assign")
	}
	if out, err := BroadcastShapes(value.shape, shape); err != nil || !out.Equal(shape) {
		return errors.Wrapf(ErrIncompatible, "assign: cannot broadcast %v into region %v", value.shape, shape)
	}
	src := value
	if !value.device.IsHost() {
		staged, err := value.CopyTo(HostDevice)
		if err != nil {
			return errors.WithMessage(err, "assign")
		}
		defer staged.Release()
		src = staged
	}
	srcOp, _, err := src.Operand()
	if err != nil {
		return err
	}
	srcOp = srcOp.BroadcastTo(shape)
	err = r.arena.WriteExclusive(r.handle, func(mem Memory, b Backend) {
		b.Copy(Operand{Mem: mem, Shape: shape, Strides: strides, Offset: offset}, srcOp)
	})
	return errors.WithMessage(err, "assign")
}

// Values returns the tensor's elements in row-major order as a new host slice.
// Accelerator tensors are downloaded.
func (r *RawTensor) Values() ([]float64, error) {
	op, _, err := r.Operand()
	if err != nil {
		return nil, err
	}
	var data []float64
	if mem, ok := op.Mem.(HostMemory); ok {
		data = mem
	} else {
		if data, err = r.arena.Download(r.handle); err != nil {
			return nil, err
		}
	}
	n := r.Size()
	out := make([]float64, n)
	if r.offset == 0 && r.IsContiguous() {
		copy(out, data[:n])
		return out, nil
	}
	for i := range out {
		out[i] = data[StridedOffset(i, r.shape, r.strides, r.offset)]
	}
	return out, nil
}

// At returns the element at the given coordinates. Host tensors only.
func (r *RawTensor) At(coords ...int) (float64, error) {
	pos, err := r.position("at", coords)
	if err != nil {
		return 0, err
	}
	return r.arena.ReadScalar(r.handle, pos)
}

// position returns the buffer index of coords.
func (r *RawTensor) position(op string, coords []int) (int, error) {
	if len(coords) != len(r.shape) {
		return 0, errors.Wrapf(ErrRankMismatch, "%s: %d coordinates for rank %d", op, len(coords), len(r.shape))
	}
	pos := r.offset
	for i, c := range coords {
		if c < 0 || c >= r.shape[i] {
			return 0, errors.Wrapf(ErrAxisOutOfBounds, "%s: index %d for axis %d of size %d", op, c, i, r.shape[i])
		}
		pos += c * r.strides[i]
	}
	if r.released.Load() {
		return 0, errors.Wrapf(ErrReleased, "%s: tensor %v", op, r.shape)
	}
	return pos, nil
}

// Item returns the single element of a tensor with size 1.
func (r *RawTensor) Item() (float64, error) {
	if r.Size() != 1 {
		return 0, errors.Wrapf(ErrSizeMismatch, "item: tensor of shape %v has %d elements", r.shape, r.Size())
	}
	values, err := r.Values()
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// ToArray returns the elements as nested []any slices of float64 following the shape.
// A rank-0 tensor yields a bare float64.
func (r *RawTensor) ToArray() (any, error) {
	values, err := r.Values()
	if err != nil {
		return nil, err
	}
	if len(r.shape) == 0 {
		return values[0], nil
	}
	nested, _ := nest(values, r.shape)
	return nested, nil
}

func nest(values []float64, shape Shape) (any, []float64) {
	if len(shape) == 0 {
		return values[0], values[1:]
	}
	out := make([]any, shape[0])
	for i := range out {
		out[i], values = nest(values, shape[1:])
	}
	return out, values
}

// String formats the tensor's elements, e.g. "[[1 2] [3 4]]".
func (r *RawTensor) String() string {
	arr, err := r.ToArray()
	if err != nil {
		return fmt.Sprintf("<tensor %v: %v>", r.shape, err)
	}
	return fmt.Sprint(arr)
}

// Dump writes a diagnostic description of the tensor to w.
func (r *RawTensor) Dump(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "tensor %v on %s\n", r.shape, r.device)
	fmt.Fprintf(&sb, "  strides:  %v\n", r.strides)
	fmt.Fprintf(&sb, "  offset:   %d\n", r.offset)
	fmt.Fprintf(&sb, "  buffer:   #%d (%d refs)\n", r.handle, r.RefCount())
	fmt.Fprintf(&sb, "  size:     %d elements (%s)\n", r.Size(), humanize.Bytes(uint64(r.Size())*8))
	fmt.Fprintf(&sb, "  view:     %t\n", r.IsView())
	fmt.Fprintf(&sb, "  values:   %s\n", r.String())
	_, err := io.WriteString(w, sb.String())
	return err
}
