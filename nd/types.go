// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

import (
	"github.com/born-ml/ndarray/internal/config"
	"github.com/born-ml/ndarray/internal/engine"
	"github.com/born-ml/ndarray/internal/serialization"
	"github.com/born-ml/ndarray/internal/tensor"
)

// Tensor is an N-dimensional float64 array on a device.
type Tensor = tensor.RawTensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Device identifies where a tensor's buffer lives.
type Device = tensor.Device

// Host is the host device.
var Host = tensor.HostDevice

// Accelerator returns the accelerator device with the given id.
func Accelerator(id int) Device { return tensor.AcceleratorDevice(id) }

// SliceSpec selects part of one axis.
type SliceSpec = tensor.SliceSpec

// Slice spec constructors.
var (
	SliceAll   = tensor.All
	SliceIndex = tensor.Index
	SliceRange = tensor.Range
	SliceFrom  = tensor.From
	SliceUntil = tensor.Until
	SliceStep  = tensor.Step
)

// Engine owns buffers, devices and a random generator.
type Engine = engine.Engine

// Config configures an engine.
type Config = config.Config

// Option adjusts where a factory places its result.
type Option = engine.Option

// Header is the header of a saved tensor file.
type Header = serialization.Header

// WithDevice places a factory result on device.
func WithDevice(device Device) Option { return engine.WithDevice(device) }

// Axis selects a single axis for reductions. A nil axis reduces every element.
func Axis(axis int) *int { return engine.Axis(axis) }

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config { return config.Default() }

// ConfigFromEnv returns the configuration described by NDARRAY_* variables.
func ConfigFromEnv() (Config, error) { return config.FromEnv() }

// ErrorKind classifies errors; match with errors.Is.
type ErrorKind = tensor.ErrorKind

// Error kinds.
const (
	ErrShape     = tensor.ErrShape
	ErrAxis      = tensor.ErrAxis
	ErrDevice    = tensor.ErrDevice
	ErrLinAlg    = tensor.ErrLinAlg
	ErrSlice     = tensor.ErrSlice
	ErrOwnership = tensor.ErrOwnership
	ErrArgument  = tensor.ErrArgument
)

// Error codes. Each also matches its kind with errors.Is.
var (
	ErrIncompatible            = tensor.ErrIncompatible
	ErrSizeMismatch            = tensor.ErrSizeMismatch
	ErrRankMismatch            = tensor.ErrRankMismatch
	ErrNotSquare               = tensor.ErrNotSquare
	ErrInvalidShape            = tensor.ErrInvalidShape
	ErrNonUnitSqueeze          = tensor.ErrNonUnitSqueeze
	ErrAxisOutOfBounds         = tensor.ErrAxisOutOfBounds
	ErrInvalidPermutation      = tensor.ErrInvalidPermutation
	ErrMultiDeviceAccelerators = tensor.ErrMultiDeviceAccelerators
	ErrInvalidDevice           = tensor.ErrInvalidDevice
	ErrHostOnly                = tensor.ErrHostOnly
	ErrReleased                = tensor.ErrReleased
	ErrSingular                = tensor.ErrSingular
	ErrNotPositiveDefinite     = tensor.ErrNotPositiveDefinite
	ErrNotConverged            = tensor.ErrNotConverged
	ErrUnsupportedOrder        = tensor.ErrUnsupportedOrder
	ErrZeroStep                = tensor.ErrZeroStep
	ErrInvalidArgument         = tensor.ErrInvalidArgument
	ErrUnsupportedValue        = tensor.ErrUnsupportedValue
)

// KindOf returns the kind of err, or "" when err carries none.
func KindOf(err error) ErrorKind { return tensor.KindOf(err) }
