// Package signal implements 2-D convolution and correlation.
package signal

import (
	"strings"

	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Mode selects the region of the full convolution that is returned.
type Mode int

const (
	// Full returns every position where the inputs overlap, (M+P-1)×(N+Q-1).
	Full Mode = iota
	// Valid returns only positions computed without padding.
	Valid
	// Same returns an output shaped like the first input, centred on the full result.
	Same
)

var modeNames = [...]string{"full", "valid", "same"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Mode(?)"
}

// ParseMode parses "full", "valid" or "same".
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(i), nil
		}
	}
	return 0, errors.Wrapf(tensor.ErrInvalidArgument, "unknown convolution mode %q", s)
}

// Boundary selects how the first input is extended past its edges.
type Boundary int

const (
	// Fill pads with a constant value.
	Fill Boundary = iota
	// Wrap pads circularly.
	Wrap
	// Symm pads by reflecting at the edge, repeating the edge element.
	Symm
)

var boundaryNames = [...]string{"fill", "wrap", "symm"}

func (b Boundary) String() string {
	if int(b) < len(boundaryNames) {
		return boundaryNames[b]
	}
	return "Boundary(?)"
}

// ParseBoundary parses "fill", "wrap" or "symm".
func ParseBoundary(s string) (Boundary, error) {
	for i, name := range boundaryNames {
		if strings.EqualFold(s, name) {
			return Boundary(i), nil
		}
	}
	return 0, errors.Wrapf(tensor.ErrInvalidArgument, "unknown convolution boundary %q", s)
}

// Options configures Convolve2D and Correlate2D.
type Options struct {
	Mode      Mode
	Boundary  Boundary
	FillValue float64
	Parallel  parallel.Config
}

// grid is a dense row-major host copy of a matrix.
type grid struct {
	rows, cols int
	data       []float64
}

func (g grid) flipped() grid {
	out := grid{rows: g.rows, cols: g.cols, data: make([]float64, len(g.data))}
	for i, v := range g.data {
		out.data[len(g.data)-1-i] = v
	}
	return out
}

func asGrid(op string, t *tensor.RawTensor) (grid, error) {
	if t.Rank() != 2 {
		return grid{}, errors.Wrapf(tensor.ErrRankMismatch, "%s: expected a matrix, got shape %v", op, t.Shape())
	}
	if t.Size() == 0 {
		return grid{}, errors.Wrapf(tensor.ErrInvalidShape, "%s: empty input %v", op, t.Shape())
	}
	values, err := t.Values()
	if err != nil {
		return grid{}, err
	}
	return grid{rows: t.Shape()[0], cols: t.Shape()[1], data: values}, nil
}

// Convolve2D convolves a with the kernel b. Out-of-range reads of a follow
// opts.Boundary. In Valid mode one input must be at least as large as the
// other on both axes; the larger one plays the role of a.
func Convolve2D(a, b *tensor.RawTensor, opts Options) (*tensor.RawTensor, error) {
	ga, err := asGrid("convolve2d", a)
	if err != nil {
		return nil, err
	}
	gb, err := asGrid("convolve2d", b)
	if err != nil {
		return nil, err
	}
	return run("convolve2d", a, ga, gb, opts)
}

// Correlate2D cross-correlates a with b: a convolution with b flipped on both axes.
func Correlate2D(a, b *tensor.RawTensor, opts Options) (*tensor.RawTensor, error) {
	ga, err := asGrid("correlate2d", a)
	if err != nil {
		return nil, err
	}
	gb, err := asGrid("correlate2d", b)
	if err != nil {
		return nil, err
	}
	return run("correlate2d", a, ga, gb.flipped(), opts)
}

func run(op string, like *tensor.RawTensor, in, kernel grid, opts Options) (*tensor.RawTensor, error) {
	if opts.Mode < Full || opts.Mode > Same {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "%s: mode %d", op, opts.Mode)
	}
	if opts.Boundary < Fill || opts.Boundary > Symm {
		return nil, errors.Wrapf(tensor.ErrInvalidArgument, "%s: boundary %d", op, opts.Boundary)
	}

	var rows, cols, top, left int
	switch opts.Mode {
	case Full:
		rows, cols = in.rows+kernel.rows-1, in.cols+kernel.cols-1
	case Same:
		rows, cols = in.rows, in.cols
		top, left = (kernel.rows-1)/2, (kernel.cols-1)/2
	case Valid:
		switch {
		case in.rows >= kernel.rows && in.cols >= kernel.cols:
		case in.rows <= kernel.rows && in.cols <= kernel.cols:
			in, kernel = kernel, in
		default:
			return nil, errors.Wrapf(tensor.ErrIncompatible,
				"%s: valid mode needs one input at least as large as the other, got (%d, %d) and (%d, %d)",
				op, in.rows, in.cols, kernel.rows, kernel.cols)
		}
		rows, cols = in.rows-kernel.rows+1, in.cols-kernel.cols+1
		top, left = kernel.rows-1, kernel.cols-1
	}

	pad := padder{in: in, boundary: opts.Boundary, fill: opts.FillValue}
	out := make([]float64, rows*cols)
	parallel.For(rows, func(r int) {
		i := r + top
		for c := 0; c < cols; c++ {
			j := c + left
			sum := 0.0
			for k := 0; k < kernel.rows; k++ {
				for l := 0; l < kernel.cols; l++ {
					sum += pad.at(i-k, j-l) * kernel.data[k*kernel.cols+l]
				}
			}
			out[r*cols+c] = sum
		}
	}, opts.Parallel)
	return tensor.FromValues(like.Arena(), tensor.HostDevice, tensor.Shape{rows, cols}, out)
}

// padder reads the input with its boundary extension.
type padder struct {
	in       grid
	boundary Boundary
	fill     float64
}

func (p padder) at(i, j int) float64 {
	if i >= 0 && i < p.in.rows && j >= 0 && j < p.in.cols {
		return p.in.data[i*p.in.cols+j]
	}
	switch p.boundary {
	case Wrap:
		i, j = wrap(i, p.in.rows), wrap(j, p.in.cols)
	case Symm:
		i, j = reflect(i, p.in.rows), reflect(j, p.in.cols)
	default:
		return p.fill
	}
	return p.in.data[i*p.in.cols+j]
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// reflect maps i into [0, n) mirroring at the edges with the edge repeated:
// -1 -> 0, -2 -> 1, n -> n-1.
func reflect(i, n int) int {
	i = wrap(i, 2*n)
	if i >= n {
		i = 2*n - 1 - i
	}
	return i
}
