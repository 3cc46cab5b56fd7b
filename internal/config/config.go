// Package config holds engine configuration and reads it from the environment.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Environment variables read by FromEnv.
const (
	// NDARRAY_DEVICE is the default device for factories: "host", "gpu" or "gpu:<id>".
	NDARRAY_DEVICE = "NDARRAY_DEVICE"
	// NDARRAY_ACCELERATORS is the number of accelerators to register.
	NDARRAY_ACCELERATORS = "NDARRAY_ACCELERATORS"
	// NDARRAY_SEED seeds the engine's random generator.
	NDARRAY_SEED = "NDARRAY_SEED"
	// NDARRAY_WORKERS bounds kernel fan-out; 1 disables parallelism.
	NDARRAY_WORKERS = "NDARRAY_WORKERS"
	// NDARRAY_MAX_REDRAWS bounds truncated normal rejection sampling per element.
	NDARRAY_MAX_REDRAWS = "NDARRAY_MAX_REDRAWS"
	// NDARRAY_WEBGPU enables the WebGPU kernel set when compiled in.
	NDARRAY_WEBGPU = "NDARRAY_WEBGPU"
)

// Config configures an engine.
type Config struct {
	// DefaultDevice receives the output of factories and samplers unless a call overrides it.
	DefaultDevice tensor.Device

	// Accelerators is the number of accelerator devices (ids 0..Accelerators-1).
	Accelerators int

	// Seed of the random generator.
	Seed uint64

	// Workers bounds kernel fan-out. MinChunk is the smallest slice of output one goroutine handles.
	Workers  int
	MinChunk int

	// MaxRedraws bounds the redraws of a single truncated normal sample.
	MaxRedraws int

	// WebGPU requests hardware kernels for accelerator 0.
	WebGPU bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DefaultDevice: tensor.HostDevice,
		Accelerators:  1,
		Seed:          0x5eed,
		Workers:       runtime.NumCPU(),
		MinChunk:      1024,
		MaxRedraws:    1000,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch {
	case c.Accelerators < 0:
		return errors.Wrapf(tensor.ErrInvalidArgument, "accelerators must be >= 0, got %d", c.Accelerators)
	case c.Workers < 1:
		return errors.Wrapf(tensor.ErrInvalidArgument, "workers must be >= 1, got %d", c.Workers)
	case c.MinChunk < 1:
		return errors.Wrapf(tensor.ErrInvalidArgument, "min chunk must be >= 1, got %d", c.MinChunk)
	case c.MaxRedraws < 1:
		return errors.Wrapf(tensor.ErrInvalidArgument, "max redraws must be >= 1, got %d", c.MaxRedraws)
	}
	if c.DefaultDevice.Kind == tensor.Accelerator && c.DefaultDevice.ID >= c.Accelerators {
		return errors.Wrapf(tensor.ErrInvalidDevice, "default device %s with %d accelerators",
			c.DefaultDevice, c.Accelerators)
	}
	return nil
}

// FromEnv returns Default overridden by the NDARRAY_* environment variables.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if v, ok := lookup(NDARRAY_DEVICE); ok {
		d, err := ParseDevice(v)
		if err != nil {
			return cfg, errors.WithMessage(err, NDARRAY_DEVICE)
		}
		cfg.DefaultDevice = d
	}
	intVars := []struct {
		name string
		dst  *int
	}{
		{NDARRAY_ACCELERATORS, &cfg.Accelerators},
		{NDARRAY_WORKERS, &cfg.Workers},
		{NDARRAY_MAX_REDRAWS, &cfg.MaxRedraws},
	}
	for _, iv := range intVars {
		v, ok := lookup(iv.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, errors.Wrapf(tensor.ErrInvalidArgument, "%s=%q is not an integer", iv.name, v)
		}
		*iv.dst = n
	}
	if v, ok := lookup(NDARRAY_SEED); ok {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return cfg, errors.Wrapf(tensor.ErrInvalidArgument, "%s=%q is not an unsigned integer", NDARRAY_SEED, v)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup(NDARRAY_WEBGPU); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, errors.Wrapf(tensor.ErrInvalidArgument, "%s=%q is not a boolean", NDARRAY_WEBGPU, v)
		}
		cfg.WebGPU = b
	}
	return cfg, cfg.Validate()
}

// ParseDevice parses "host", "cpu", "gpu" (accelerator 0) or "gpu:<id>".
func ParseDevice(s string) (tensor.Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "host", "cpu":
		return tensor.HostDevice, nil
	case "gpu", "accelerator":
		return tensor.AcceleratorDevice(0), nil
	}
	name, idStr, found := strings.Cut(s, ":")
	if found && (name == "gpu" || name == "accelerator") {
		id, err := strconv.Atoi(idStr)
		if err == nil && id >= 0 {
			return tensor.AcceleratorDevice(id), nil
		}
	}
	return tensor.Device{}, errors.Wrapf(tensor.ErrInvalidDevice, "cannot parse device %q", s)
}
