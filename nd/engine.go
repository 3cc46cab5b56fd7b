// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nd

import (
	"io"
	"sync"

	"github.com/born-ml/ndarray/internal/config"
	"github.com/born-ml/ndarray/internal/engine"
	"k8s.io/klog/v2"
)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine, creating it on first use from the
// environment. Invalid NDARRAY_* settings are logged and the built-in
// configuration is used instead.
func Default() *Engine {
	defaultOnce.Do(func() {
		cfg, err := config.FromEnv()
		if err != nil {
			klog.Warningf("nd: %v; using default configuration", err)
			cfg = config.Default()
		}
		e, err := engine.New(cfg)
		if err != nil {
			klog.Fatalf("nd: cannot create default engine: %+v", err)
		}
		defaultEngine = e
	})
	return defaultEngine
}

// NewEngine creates an engine with its own arena, devices and random generator.
// Tensors of one engine cannot be passed to another.
func NewEngine(cfg Config) (*Engine, error) {
	return engine.New(cfg)
}

// SetDevice selects the default accelerator of the default engine.
// It fails with ErrInvalidDevice when id does not name an accelerator.
func SetDevice(id int) error { return Default().SetDevice(id) }

// DumpDevices writes the devices of the default engine and their memory usage to w.
func DumpDevices(w io.Writer) error { return Default().DumpDevices(w) }

// Seed reseeds the random generator of the default engine.
func Seed(seed uint64) { Default().Generator().Reseed(seed) }

// AsTensor coerces a TensorLike value. Tensors are returned unchanged.
func AsTensor(v any) (*Tensor, error) { return Default().AsTensor(v) }
