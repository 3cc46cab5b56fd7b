package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// CopyTo returns a copy of a on device. A new buffer is allocated even when
// a already lives there; the source is never modified.
func (e *Engine) CopyTo(a any, device tensor.Device) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, "copy")
	}
	defer done()
	out, err := x.CopyTo(device)
	if err != nil {
		return nil, errors.WithMessagef(err, "copy %v to %s", x.Shape(), device)
	}
	return out, nil
}

// Copy returns an owned contiguous copy of a on its own device.
func (e *Engine) Copy(a any) (*tensor.RawTensor, error) {
	x, done, err := e.lift(a)
	if err != nil {
		return nil, errors.WithMessage(err, "copy")
	}
	defer done()
	return x.Copy()
}

// Cpu copies a to host memory.
func (e *Engine) Cpu(a any) (*tensor.RawTensor, error) {
	return e.CopyTo(a, tensor.HostDevice)
}

// Gpu copies a to the default accelerator.
func (e *Engine) Gpu(a any) (*tensor.RawTensor, error) {
	return e.CopyTo(a, e.Accelerator())
}
