package engine

import (
	"github.com/born-ml/ndarray/internal/signal"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

func (e *Engine) filter2D(name string, a, b any, mode, boundary string, fillValue float64,
	f func(a, b *tensor.RawTensor, opts signal.Options) (*tensor.RawTensor, error)) (*tensor.RawTensor, error) {
	m, err := signal.ParseMode(mode)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	bd, err := signal.ParseBoundary(boundary)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	ts, done, err := e.liftAll([]any{a, b})
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	defer done()
	return f(ts[0], ts[1], signal.Options{Mode: m, Boundary: bd, FillValue: fillValue, Parallel: e.par})
}

// Convolve2D convolves two matrices. mode is "full", "valid" or "same";
// boundary is "fill", "wrap" or "symm". fillValue pads in "fill" mode.
func (e *Engine) Convolve2D(a, b any, mode, boundary string, fillValue float64) (*tensor.RawTensor, error) {
	return e.filter2D("convolve2d", a, b, mode, boundary, fillValue, signal.Convolve2D)
}

// Correlate2D cross-correlates two matrices with the same options as Convolve2D.
func (e *Engine) Correlate2D(a, b any, mode, boundary string, fillValue float64) (*tensor.RawTensor, error) {
	return e.filter2D("correlate2d", a, b, mode, boundary, fillValue, signal.Correlate2D)
}
