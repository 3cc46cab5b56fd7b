package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// AsTensor coerces a TensorLike value into a tensor.
//
// An existing tensor is returned as is, without taking a new reference.
// Numbers and nested slices of numbers become new host tensors owned by the caller.
func (e *Engine) AsTensor(v any) (*tensor.RawTensor, error) {
	t, _, err := e.lift(v)
	return t, err
}

// lift is AsTensor plus a release func that drops what lift allocated.
func (e *Engine) lift(v any) (*tensor.RawTensor, func(), error) {
	if t, ok := v.(*tensor.RawTensor); ok {
		if t == nil {
			return nil, nil, errors.Wrap(tensor.ErrUnsupportedValue, "nil tensor")
		}
		if t.Arena() != e.arena {
			return nil, nil, errors.Wrap(tensor.ErrInvalidDevice, "tensor belongs to another engine")
		}
		if t.Released() {
			return nil, nil, errors.Wrapf(tensor.ErrReleased, "tensor %v", t.Shape())
		}
		return t, func() {}, nil
	}
	shape, values, err := tensor.FlattenValue(v)
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "cannot convert %T to a tensor", v)
	}
	t, err := tensor.FromValues(e.arena, tensor.HostDevice, shape, values)
	if err != nil {
		return nil, nil, err
	}
	return t, t.Release, nil
}

// liftAll lifts every value; on failure nothing stays allocated.
func (e *Engine) liftAll(vs []any) ([]*tensor.RawTensor, func(), error) {
	ts := make([]*tensor.RawTensor, 0, len(vs))
	dones := make([]func(), 0, len(vs))
	done := func() {
		for _, d := range dones {
			d()
		}
	}
	for i, v := range vs {
		t, d, err := e.lift(v)
		if err != nil {
			done()
			return nil, nil, errors.WithMessagef(err, "operand %d", i)
		}
		ts = append(ts, t)
		dones = append(dones, d)
	}
	return ts, done, nil
}

// placement picks the output device of a multi-operand op: accelerators win
// over host, and two different accelerators cannot be mixed.
func placement(devices ...tensor.Device) (tensor.Device, error) {
	out := tensor.HostDevice
	for _, d := range devices {
		switch {
		case d == out:
		case d.Priority() > out.Priority():
			out = d
		case d.Kind == tensor.Accelerator && out.Kind == tensor.Accelerator:
			return tensor.Device{}, errors.Wrapf(tensor.ErrMultiDeviceAccelerators, "operands on %s and %s", out, d)
		}
	}
	return out, nil
}

// stage returns t on device, copying it there when needed.
func stage(t *tensor.RawTensor, device tensor.Device) (*tensor.RawTensor, func(), error) {
	if t.Device() == device {
		return t, func() {}, nil
	}
	klog.V(2).Infof("engine: staging %v from %s to %s", t.Shape(), t.Device(), device)
	c, err := t.CopyTo(device)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Release, nil
}
