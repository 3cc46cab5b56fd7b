//go:build webgpu

package accel

import (
	"encoding/binary"
	"math"
	"sync"
	"unsafe"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// WebGPUAvailable reports whether this build carries the WebGPU kernel set.
const WebGPUAvailable = true

// webGPUKernels runs dense elementwise kernels as WGSL compute shaders.
// Shaders compute in f32, so results carry single precision.
type webGPUKernels struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	mu        sync.Mutex
	pipelines map[string]*wgpu.ComputePipeline
}

// NewWebGPUKernels initializes a WebGPU device.
// It fails when the native WebGPU library or a GPU adapter is unavailable.
func NewWebGPUKernels() (k Kernels, err error) {
	// wgpu panics when the native library cannot be loaded.
	defer func() {
		if r := recover(); r != nil {
			k = nil
			err = errors.Wrapf(tensor.ErrInvalidDevice, "webgpu: native library not available: %v", r)
		}
	}()

	if err := wgpu.Init(); err != nil {
		return nil, errors.Wrap(tensor.ErrInvalidDevice, "webgpu: init: "+err.Error())
	}
	instance, err := wgpu.CreateInstance(nil)
	if err != nil {
		return nil, errors.Wrap(tensor.ErrInvalidDevice, "webgpu: create instance: "+err.Error())
	}
	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		instance.Release()
		return nil, errors.Wrap(tensor.ErrInvalidDevice, "webgpu: request adapter: "+err.Error())
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.Wrap(tensor.ErrInvalidDevice, "webgpu: request device: "+err.Error())
	}
	klog.V(1).Infof("webgpu: device ready")
	return &webGPUKernels{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     device.GetQueue(),
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

func (k *webGPUKernels) Name() string { return "webgpu" }

func (k *webGPUKernels) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, p := range k.pipelines {
		p.Release()
	}
	k.pipelines = nil
	k.device.Release()
	k.adapter.Release()
	k.instance.Release()
}

// Binary runs op on dense operands of equal shape.
func (k *webGPUKernels) Binary(op tensor.BinaryOp, dst, a, b cpu.View) bool {
	expr, ok := binaryExpressions[op]
	if !ok || !dense(dst) || !dense(a) || !dense(b) || dst.Size() == 0 {
		return false
	}
	n := dst.Size()
	out, err := k.run("binary_"+op.String(), binaryShader(expr), n,
		a.Data[a.Offset:a.Offset+n], b.Data[b.Offset:b.Offset+n])
	if err != nil {
		klog.Warningf("webgpu: %s failed, emulating: %v", op, err)
		return false
	}
	copy(dst.Data[dst.Offset:dst.Offset+n], out)
	return true
}

// Unary runs op on dense operands.
func (k *webGPUKernels) Unary(op tensor.UnaryOp, dst, x cpu.View) bool {
	expr, ok := unaryExpressions[op]
	if !ok || !dense(dst) || !dense(x) || dst.Size() == 0 {
		return false
	}
	n := dst.Size()
	out, err := k.run("unary_"+op.String(), unaryShader(expr), n, x.Data[x.Offset:x.Offset+n])
	if err != nil {
		klog.Warningf("webgpu: %s failed, emulating: %v", op, err)
		return false
	}
	copy(dst.Data[dst.Offset:dst.Offset+n], out)
	return true
}

func dense(v cpu.View) bool {
	return tensor.IsContiguous(v.Shape, v.Strides)
}

func (k *webGPUKernels) pipeline(name, code string) *wgpu.ComputePipeline {
	k.mu.Lock()
	defer k.mu.Unlock()
	if p, ok := k.pipelines[name]; ok {
		return p
	}
	shader := k.device.CreateShaderModuleWGSL(code)
	defer shader.Release()
	p := k.device.CreateComputePipelineSimple(nil, shader, "main")
	k.pipelines[name] = p
	return p
}

// run binds inputs at bindings 0..len(inputs)-1, the result after them and
// the size uniform last, dispatches, and reads the result back.
func (k *webGPUKernels) run(name, code string, n int, inputs ...[]float64) ([]float64, error) {
	p := k.pipeline(name, code)
	size := uint64(n) * 4

	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	for i, in := range inputs {
		buf := k.createBuffer(toF32Bytes(in), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer buf.Release()
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buf, 0, size))
	}
	result := k.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer result.Release()
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(inputs)), result, 0, size))

	params := make([]byte, 16)
	binary.LittleEndian.PutUint32(params[0:4], uint32(n))
	uniform := k.createBuffer(params, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	defer uniform.Release()
	entries = append(entries, wgpu.BufferBindingEntry(uint32(len(inputs)+1), uniform, 0, 16))

	bindGroup := k.device.CreateBindGroupSimple(p.GetBindGroupLayout(0), entries)
	defer bindGroup.Release()

	encoder := k.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(uint32((n+workgroupSize-1)/workgroupSize), 1, 1)
	pass.End()
	k.queue.Submit(encoder.Finish(nil))

	raw, err := k.readBuffer(result, size)
	if err != nil {
		return nil, err
	}
	return fromF32Bytes(raw), nil
}

func (k *webGPUKernels) createBuffer(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := (uint64(len(data)) + 15) &^ 15
	buffer := k.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := unsafe.Slice((*byte)(buffer.GetMappedRange(0, size)), size)
	copy(mapped, data)
	buffer.Unmap()
	return buffer
}

// readBuffer copies a storage buffer through a mappable staging buffer.
func (k *webGPUKernels) readBuffer(src *wgpu.Buffer, size uint64) ([]byte, error) {
	staging := k.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer staging.Release()

	encoder := k.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	k.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(k.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, errors.Wrap(err, "map staging buffer")
	}
	mapped := unsafe.Slice((*byte)(staging.GetMappedRange(0, size)), size)
	out := make([]byte, size)
	copy(out, mapped)
	staging.Unmap()
	return out, nil
}

func toF32Bytes(values []float64) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
	}
	return out
}

func fromF32Bytes(raw []byte) []float64 {
	out := make([]float64, len(raw)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return out
}
