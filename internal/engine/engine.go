// Package engine ties the arena, the device backends and the numeric packages
// together behind one value.
//
// Every operation accepts TensorLike operands (any): an existing
// *tensor.RawTensor, a Go number, or nested slices of numbers. Non-tensor
// operands are lifted to host tensors for the duration of the call.
// Results are fresh tensors owned by the caller, who releases them.
package engine

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/born-ml/ndarray/internal/backend/accel"
	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/config"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/random"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Engine owns an arena, a host backend, the accelerator backends and a random generator.
// It is safe for concurrent use.
type Engine struct {
	cfg    config.Config
	par    parallel.Config
	arena  *tensor.Arena
	host   *cpu.CPUBackend
	accels []*accel.Backend
	rng    *random.Generator

	mu          sync.RWMutex
	accelerator int
}

// New creates an engine from cfg.
func New(cfg config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	par := parallel.DefaultConfig().WithWorkers(cfg.Workers)
	par.MinChunkSize = cfg.MinChunk

	e := &Engine{
		cfg:  cfg,
		par:  par,
		host: cpu.NewWithConfig(par),
		rng:  random.New(cfg.Seed),
	}
	e.rng.SetMaxRedraws(cfg.MaxRedraws)
	e.arena = tensor.NewArena(e.host)

	for id := 0; id < cfg.Accelerators; id++ {
		var kernels accel.Kernels
		if cfg.WebGPU && id == 0 {
			k, err := accel.NewWebGPUKernels()
			if err != nil {
				klog.Warningf("engine: webgpu kernels unavailable, emulating accelerator 0: %v", err)
			} else {
				kernels = k
			}
		}
		b := accel.New(id, kernels, par)
		e.accels = append(e.accels, b)
		e.arena.Register(b)
	}
	if cfg.DefaultDevice.Kind == tensor.Accelerator {
		e.accelerator = cfg.DefaultDevice.ID
	}
	klog.V(1).Infof("engine: %d accelerator(s), default device %s, %d workers", cfg.Accelerators, e.DefaultDevice(), cfg.Workers)
	return e, nil
}

// Close releases accelerator kernel resources.
func (e *Engine) Close() {
	for _, b := range e.accels {
		b.Close()
	}
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config { return e.cfg }

// Arena returns the arena holding every buffer of the engine.
func (e *Engine) Arena() *tensor.Arena { return e.arena }

// Generator returns the engine's random generator.
func (e *Engine) Generator() *random.Generator { return e.rng }

// Parallel returns the kernel fan-out configuration.
func (e *Engine) Parallel() parallel.Config { return e.par }

// SetDevice selects the default accelerator id used by Gpu and by factories
// when the configured default device is an accelerator.
func (e *Engine) SetDevice(id int) error {
	if id < 0 || id >= len(e.accels) {
		return errors.Wrapf(tensor.ErrInvalidDevice, "set device: id %d, %d accelerator(s) available", id, len(e.accels))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.accelerator = id
	return nil
}

// Accelerator returns the default accelerator device.
func (e *Engine) Accelerator() tensor.Device {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return tensor.AcceleratorDevice(e.accelerator)
}

// DefaultDevice returns where factories place their results by default.
func (e *Engine) DefaultDevice() tensor.Device {
	if e.cfg.DefaultDevice.Kind == tensor.Accelerator {
		return e.Accelerator()
	}
	return tensor.HostDevice
}

// DumpDevices writes the registered devices and their memory usage to w.
func (e *Engine) DumpDevices(w io.Writer) error {
	current := e.Accelerator()
	var sb strings.Builder
	for _, st := range e.arena.Stats() {
		marker := " "
		if st.Device == current {
			marker = "*"
		}
		fmt.Fprintf(&sb, "%s %-8s %-24s live=%d (%s) allocations=%d frees=%d",
			marker, st.Device, st.Backend, st.LiveBuffers, humanize.Bytes(uint64(st.LiveBytes)), st.Allocations, st.Frees)
		if st.Device.Kind == tensor.Accelerator && st.Device.ID < len(e.accels) {
			fmt.Fprintf(&sb, " peak=%s", humanize.Bytes(uint64(e.accels[st.Device.ID].PeakBytes())))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Option adjusts where a factory or sampler places its result.
type Option func(*options)

type options struct {
	device *tensor.Device
}

// WithDevice places the result on device instead of the default device.
func WithDevice(device tensor.Device) Option {
	return func(o *options) { o.device = &device }
}

// target resolves the device for a factory call.
func (e *Engine) target(opts []Option) (tensor.Device, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	device := e.DefaultDevice()
	if o.device != nil {
		device = *o.device
	}
	if _, err := e.arena.Backend(device); err != nil {
		return tensor.Device{}, err
	}
	return device, nil
}
