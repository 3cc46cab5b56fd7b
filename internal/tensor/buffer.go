package tensor

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Handle identifies a buffer inside an Arena. The zero Handle is never valid.
type Handle uint64

// buffer is reference-counted element storage bound to one device.
type buffer struct {
	device Device
	length int
	mem    Memory
	refs   int
}

// DeviceStats summarizes arena usage on one device.
type DeviceStats struct {
	Device      Device
	Backend     string
	LiveBuffers int
	LiveBytes   int64
	Allocations int64
	Frees       int64
}

// Arena owns every buffer of an engine, keyed by Handle.
// Tensors hold handles, so aliasing between views is an explicit reference count.
// An Arena is safe for concurrent use.
type Arena struct {
	mu       sync.Mutex
	backends map[Device]Backend
	buffers  map[Handle]*buffer
	stats    map[Device]*DeviceStats
	next     Handle
}

// NewArena creates an arena serving the given backends.
func NewArena(backends ...Backend) *Arena {
	a := &Arena{
		backends: make(map[Device]Backend),
		buffers:  make(map[Handle]*buffer),
		stats:    make(map[Device]*DeviceStats),
	}
	for _, b := range backends {
		a.Register(b)
	}
	return a
}

// Register adds (or replaces) the backend for its device.
func (a *Arena) Register(b Backend) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := b.Device()
	a.backends[d] = b
	if _, ok := a.stats[d]; !ok {
		a.stats[d] = &DeviceStats{Device: d}
	}
	a.stats[d].Backend = b.Name()
	klog.V(1).Infof("arena: registered backend %q for %s", b.Name(), d)
}

// Backend returns the backend serving device.
func (a *Arena) Backend(device Device) (Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.backends[device]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidDevice, "no backend for device %s", device)
	}
	return b, nil
}

// Devices lists the registered devices, host first.
func (a *Arena) Devices() []Device {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Device, 0, len(a.backends))
	for d := range a.backends {
		out = append(out, d)
	}
	slices.SortFunc(out, func(x, y Device) int {
		if x.Kind != y.Kind {
			return int(x.Kind) - int(y.Kind)
		}
		return x.ID - y.ID
	})
	return out
}

// Allocate creates a zeroed buffer of length elements on device with one reference.
func (a *Arena) Allocate(device Device, length int) (Handle, error) {
	if length < 0 {
		return 0, errors.Wrapf(ErrInvalidShape, "allocate: negative length %d", length)
	}
	b, err := a.Backend(device)
	if err != nil {
		return 0, err
	}
	mem, err := b.Alloc(length)
	if err != nil {
		return 0, errors.WithMessagef(err, "allocate %d elements on %s", length, device)
	}
	return a.adopt(device, length, mem), nil
}

// adopt registers mem as a new buffer with one reference.
func (a *Arena) adopt(device Device, length int, mem Memory) Handle {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	h := a.next
	a.buffers[h] = &buffer{device: device, length: length, mem: mem, refs: 1}
	st := a.stats[device]
	st.LiveBuffers++
	st.LiveBytes += int64(length) * 8
	st.Allocations++
	return h
}

// Retain adds a reference to h.
func (a *Arena) Retain(h Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[h]
	if !ok {
		return errors.Wrapf(ErrReleased, "retain handle %d", h)
	}
	buf.refs++
	return nil
}

// Release drops a reference to h and frees the buffer through its backend on the last one.
func (a *Arena) Release(h Handle) error {
	a.mu.Lock()
	buf, ok := a.buffers[h]
	if !ok {
		a.mu.Unlock()
		return errors.Wrapf(ErrReleased, "release handle %d", h)
	}
	buf.refs--
	if buf.refs > 0 {
		a.mu.Unlock()
		return nil
	}
	delete(a.buffers, h)
	st := a.stats[buf.device]
	st.LiveBuffers--
	st.LiveBytes -= int64(buf.length) * 8
	st.Frees++
	backend := a.backends[buf.device]
	a.mu.Unlock()

	klog.V(3).Infof("arena: freeing buffer %d (%d elements) on %s", h, buf.length, buf.device)
	backend.Free(buf.mem)
	return nil
}

// RefCount returns the number of live references to h, 0 once freed.
func (a *Arena) RefCount(h Handle) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if buf, ok := a.buffers[h]; ok {
		return buf.refs
	}
	return 0
}

// Lookup returns the storage, length, and backend behind h.
func (a *Arena) Lookup(h Handle) (Memory, int, Backend, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[h]
	if !ok {
		return nil, 0, nil, errors.Wrapf(ErrReleased, "lookup handle %d", h)
	}
	return buf.mem, buf.length, a.backends[buf.device], nil
}

// DeviceOf returns the device h lives on.
func (a *Arena) DeviceOf(h Handle) (Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[h]
	if !ok {
		return Device{}, errors.Wrapf(ErrReleased, "device of handle %d", h)
	}
	return buf.device, nil
}

// Upload allocates a buffer on device holding a copy of values.
func (a *Arena) Upload(device Device, values []float64) (Handle, error) {
	h, err := a.Allocate(device, len(values))
	if err != nil {
		return 0, err
	}
	mem, _, b, err := a.Lookup(h)
	if err == nil {
		err = b.Upload(mem, values)
	}
	if err != nil {
		_ = a.Release(h)
		return 0, errors.WithMessagef(err, "upload %d elements to %s", len(values), device)
	}
	return h, nil
}

// Download copies the whole buffer behind h into host memory.
func (a *Arena) Download(h Handle) ([]float64, error) {
	mem, length, b, err := a.Lookup(h)
	if err != nil {
		return nil, err
	}
	out := make([]float64, length)
	if err := b.Download(mem, out); err != nil {
		return nil, errors.WithMessagef(err, "download handle %d", h)
	}
	return out, nil
}

// Transfer copies the buffer behind h into a new buffer on target.
// A copy is always made, even when target is the buffer's own device.
func (a *Arena) Transfer(h Handle, target Device) (Handle, error) {
	source, err := a.DeviceOf(h)
	if err != nil {
		return 0, err
	}
	if source == target {
		mem, length, b, err := a.Lookup(h)
		if err != nil {
			return 0, err
		}
		dst, err := a.Allocate(target, length)
		if err != nil {
			return 0, err
		}
		dstMem, _, _, _ := a.Lookup(dst)
		shape := Shape{length}
		b.Copy(Operand{Mem: dstMem, Shape: shape, Strides: []int{1}},
			Operand{Mem: mem, Shape: shape, Strides: []int{1}})
		return dst, nil
	}
	values, err := a.Download(h)
	if err != nil {
		return 0, err
	}
	klog.V(2).Infof("arena: staging %d elements %s -> %s", len(values), source, target)
	return a.Upload(target, values)
}

// ReadScalar returns element i of a host buffer.
func (a *Arena) ReadScalar(h Handle, i int) (float64, error) {
	mem, err := a.hostMemory(h, i)
	if err != nil {
		return 0, err
	}
	return mem[i], nil
}

// WriteScalar sets element i of a host buffer.
func (a *Arena) WriteScalar(h Handle, i int, v float64) error {
	mem, err := a.hostMemory(h, i)
	if err != nil {
		return err
	}
	mem[i] = v
	return nil
}

// WriteExclusive runs write on the storage behind h while holding the arena lock,
// so no new reference to h can appear before the write finishes.
// It fails with ErrOwnership when h has more than one live reference.
// write must not call back into the arena.
func (a *Arena) WriteExclusive(h Handle, write func(mem Memory, b Backend)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[h]
	if !ok {
		return errors.Wrapf(ErrReleased, "write to handle %d", h)
	}
	if buf.refs > 1 {
		return errors.Wrapf(ErrOwnership, "buffer %d has %d live references, copy the tensor first", h, buf.refs)
	}
	write(buf.mem, a.backends[buf.device])
	return nil
}

func (a *Arena) hostMemory(h Handle, i int) (HostMemory, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	buf, ok := a.buffers[h]
	if !ok {
		return nil, errors.Wrapf(ErrReleased, "scalar access to handle %d", h)
	}
	if !buf.device.IsHost() {
		return nil, errors.Wrapf(ErrHostOnly, "buffer %d lives on %s", h, buf.device)
	}
	if i < 0 || i >= buf.length {
		return nil, errors.Wrapf(ErrAxisOutOfBounds, "index %d for buffer of length %d", i, buf.length)
	}
	mem, ok := buf.mem.(HostMemory)
	if !ok {
		return nil, errors.Wrapf(ErrHostOnly, "buffer %d has no host storage", h)
	}
	return mem, nil
}

// Stats returns a snapshot of per-device usage, host first.
func (a *Arena) Stats() []DeviceStats {
	devices := a.Devices()
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]DeviceStats, 0, len(devices))
	for _, d := range devices {
		out = append(out, *a.stats[d])
	}
	return out
}
