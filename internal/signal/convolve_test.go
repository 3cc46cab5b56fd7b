package signal

import (
	"testing"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var arena = tensor.NewArena(cpu.New())

func grid2D(rows, cols int, values ...float64) *tensor.RawTensor {
	return must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{rows, cols}, values))
}

func TestConvolve2DModes(t *testing.T) {
	a := grid2D(2, 2, 1, 2, 3, 4)
	b := grid2D(2, 2, 1, 1, 1, 1)

	tests := []struct {
		mode  Mode
		shape tensor.Shape
		want  []float64
	}{
		{Full, tensor.Shape{3, 3}, []float64{1, 3, 2, 4, 10, 6, 3, 7, 4}},
		{Same, tensor.Shape{2, 2}, []float64{1, 3, 4, 10}},
		{Valid, tensor.Shape{1, 1}, []float64{10}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out, err := Convolve2D(a, b, Options{Mode: tt.mode, Parallel: parallel.Sequential()})
			require.NoError(t, err)
			assert.Equal(t, tt.shape, out.Shape())
			assert.Equal(t, tt.want, must.M1(out.Values()))
		})
	}
}

func TestConvolve2DBoundaries(t *testing.T) {
	a := grid2D(1, 3, 1, 2, 3)
	b := grid2D(1, 2, 1, 1)

	tests := []struct {
		name string
		opts Options
		want []float64
	}{
		{"fill", Options{Boundary: Fill}, []float64{1, 3, 5, 3}},
		{"fill value", Options{Boundary: Fill, FillValue: 10}, []float64{11, 3, 5, 13}},
		{"wrap", Options{Boundary: Wrap}, []float64{4, 3, 5, 4}},
		{"symm", Options{Boundary: Symm}, []float64{2, 3, 5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Parallel = parallel.DefaultConfig()
			out, err := Convolve2D(a, b, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tensor.Shape{1, 4}, out.Shape())
			assert.Equal(t, tt.want, must.M1(out.Values()))
		})
	}
}

func TestCorrelate2D(t *testing.T) {
	out, err := Correlate2D(grid2D(1, 3, 1, 2, 3), grid2D(1, 2, 1, 2), Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5, 8, 3}, must.M1(out.Values()))

	out, err = Correlate2D(grid2D(1, 3, 1, 2, 3), grid2D(1, 2, 1, 2), Options{Mode: Valid})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 8}, must.M1(out.Values()))
}

func TestValidModeSwapsInputs(t *testing.T) {
	out, err := Convolve2D(grid2D(1, 1, 2), grid2D(2, 2, 1, 2, 3, 4), Options{Mode: Valid})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float64{2, 4, 6, 8}, must.M1(out.Values()))

	_, err = Convolve2D(grid2D(1, 3, 1, 2, 3), grid2D(3, 1, 1, 2, 3), Options{Mode: Valid})
	require.ErrorIs(t, err, tensor.ErrIncompatible)
	assert.ErrorIs(t, err, tensor.ErrShape)
}

func TestInvalidArguments(t *testing.T) {
	_, err := ParseMode("bogus")
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	_, err = ParseBoundary("reflect")
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	m, err := ParseMode("SAME")
	require.NoError(t, err)
	assert.Equal(t, Same, m)
	bd, err := ParseBoundary("wrap")
	require.NoError(t, err)
	assert.Equal(t, Wrap, bd)

	a := grid2D(1, 1, 1)
	_, err = Convolve2D(a, a, Options{Mode: Mode(7)})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	_, err = Convolve2D(a, a, Options{Boundary: Boundary(-1)})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)

	vec := must.M1(tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{2}, []float64{1, 2}))
	_, err = Convolve2D(vec, a, Options{})
	assert.ErrorIs(t, err, tensor.ErrRankMismatch)
}
