//go:build !webgpu

package accel

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// WebGPUAvailable reports whether this build carries the WebGPU kernel set.
const WebGPUAvailable = false

// NewWebGPUKernels always fails: build with -tags webgpu to enable WebGPU kernels.
func NewWebGPUKernels() (Kernels, error) {
	return nil, errors.Wrap(tensor.ErrInvalidDevice, "webgpu: not compiled in (build with -tags webgpu)")
}
