package engine

import (
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// writable checks that t belongs to this engine and is still live.
func (e *Engine) writable(name string, t *tensor.RawTensor) error {
	if _, _, err := e.lift(t); err != nil {
		return errors.WithMessage(err, name)
	}
	return nil
}

// Set writes value at coords of t in place.
// t must be a host tensor that no other tensor shares.
func (e *Engine) Set(t *tensor.RawTensor, coords []int, value float64) error {
	if err := e.writable("set", t); err != nil {
		return err
	}
	return t.SetAt(coords, value)
}

// Assign copies value into the region of t selected by specs, in place.
// Specs take the forms accepted by Slice and value is TensorLike, broadcast to
// the region's shape. t must be a host tensor that no other tensor shares.
func (e *Engine) Assign(t *tensor.RawTensor, specs []any, value any) error {
	if err := e.writable("assign", t); err != nil {
		return err
	}
	parsed, err := tensor.ParseSliceSpecs(specs...)
	if err != nil {
		return errors.WithMessage(err, "assign")
	}
	v, done, err := e.lift(value)
	if err != nil {
		return errors.WithMessage(err, "assign")
	}
	defer done()
	return t.Assign(parsed, v)
}
