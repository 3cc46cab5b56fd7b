// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nd provides N-dimensional float64 arrays with NumPy-style semantics.
//
// # Overview
//
// Every function accepts TensorLike operands: an existing *Tensor, a Go number,
// or (nested) slices of numbers. Results are fresh tensors owned by the caller.
// The package exposes:
//   - Factories (Zeros, Ones, Full, Array, Identity, Arange) and samplers
//   - Element-wise math with broadcasting
//   - Reductions, statistics and linear algebra
//   - Views (Reshape, Transpose, Slice, ...) sharing their source buffer
//   - Host and accelerator placement with explicit copies
//
// # Basic Usage
//
//	x, _ := nd.Array([][]float64{{1, 2}, {3, 4}})
//	y, _ := nd.Add(x, 10)
//	z, _ := nd.MatMul(x, y)
//	fmt.Println(z)
//	z.Release()
//
// # Devices
//
// Tensors live on the host or on an accelerator. Operations with operands on
// the host and one accelerator run on that accelerator; operands on two
// different accelerators are rejected with ErrMultiDeviceAccelerators.
// Gpu and Cpu always copy.
//
// # Engines
//
// The package-level functions use a default engine configured from the
// environment (see config.FromEnv). NewEngine creates an independent engine
// with its own buffers, devices and random generator.
//
// # Memory
//
// Release drops a tensor's reference to its buffer. Views keep the buffer alive
// until they are released as well. Tensors that are never released are
// reclaimed by the garbage collector.
package nd
