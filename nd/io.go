// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

import "io"

// Save writes named tensors and optional metadata to path.
//
// Example:
//
//	err := nd.Save("weights.ndar", map[string]any{"w": w, "b": []float64{0, 1}}, nil)
func Save(path string, tensors map[string]any, metadata map[string]string) error {
	return Default().SaveFile(path, tensors, metadata)
}

// Load reads every tensor saved at path. The file's checksum and layout are
// validated before any tensor is created.
func Load(path string, opts ...Option) (map[string]*Tensor, Header, error) {
	return Default().LoadFile(path, opts...)
}

// Write is Save to an io.Writer.
func Write(w io.Writer, tensors map[string]any, metadata map[string]string) error {
	return Default().Save(w, tensors, metadata)
}

// Read is Load from an io.Reader.
func Read(r io.Reader, opts ...Option) (map[string]*Tensor, Header, error) {
	return Default().Load(r, opts...)
}
