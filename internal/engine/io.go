package engine

import (
	"io"
	"os"
	"sort"

	"github.com/born-ml/ndarray/internal/serialization"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Save writes named tensors to w in .ndar format.
func (e *Engine) Save(w io.Writer, tensors map[string]any, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	lifted := make(map[string]*tensor.RawTensor, len(tensors))
	var releases []func()
	defer func() {
		for _, release := range releases {
			release()
		}
	}()
	for _, name := range names {
		t, release, err := e.lift(tensors[name])
		if err != nil {
			return errors.WithMessagef(err, "save %q", name)
		}
		releases = append(releases, release)
		lifted[name] = t
	}
	return serialization.Save(w, lifted, metadata)
}

// SaveFile writes named tensors to path.
func (e *Engine) SaveFile(path string, tensors map[string]any, metadata map[string]string) (err error) {
	//nolint:gosec // G304: path is chosen by the caller
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = errors.Wrapf(cerr, "save %s", path)
		}
	}()
	if err := e.Save(f, tensors, metadata); err != nil {
		return err
	}
	klog.V(1).Infof("saved %d tensors to %s", len(tensors), path)
	return nil
}

// Load reads a .ndar stream and places every tensor on the target device.
func (e *Engine) Load(r io.Reader, opts ...Option) (map[string]*tensor.RawTensor, serialization.Header, error) {
	device, err := e.target(opts)
	if err != nil {
		return nil, serialization.Header{}, err
	}
	return serialization.Load(r, e.arena, device)
}

// LoadFile is Load over the file at path.
func (e *Engine) LoadFile(path string, opts ...Option) (map[string]*tensor.RawTensor, serialization.Header, error) {
	device, err := e.target(opts)
	if err != nil {
		return nil, serialization.Header{}, err
	}
	tensors, header, err := serialization.LoadFile(path, e.arena, device)
	if err != nil {
		return nil, serialization.Header{}, errors.WithMessagef(err, "load %s", path)
	}
	klog.V(1).Infof("loaded %d tensors from %s onto %s", len(tensors), path, device)
	return tensors, header, nil
}
