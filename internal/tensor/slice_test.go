package tensor_test

import (
	"testing"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	arena := newArena()
	m := fromValues(arena, tensor.Shape{3, 4},
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11)

	tests := []struct {
		name  string
		specs []tensor.SliceSpec
		shape tensor.Shape
		want  []float64
	}{
		{"first row", []tensor.SliceSpec{tensor.Index(0)}, tensor.Shape{4}, []float64{0, 1, 2, 3}},
		{"last column", []tensor.SliceSpec{tensor.All(), tensor.Index(-1)}, tensor.Shape{3}, []float64{3, 7, 11}},
		{"range", []tensor.SliceSpec{tensor.Range(1, 3, 1), tensor.Until(2)}, tensor.Shape{2, 2}, []float64{4, 5, 8, 9}},
		{"step", []tensor.SliceSpec{tensor.All(), tensor.Range(0, 4, 2)}, tensor.Shape{3, 2}, []float64{0, 2, 4, 6, 8, 10}},
		{"reverse", []tensor.SliceSpec{tensor.Step(-1), tensor.Index(0)}, tensor.Shape{3}, []float64{8, 4, 0}},
		{"from", []tensor.SliceSpec{tensor.From(2)}, tensor.Shape{1, 4}, []float64{8, 9, 10, 11}},
		{"clamped", []tensor.SliceSpec{tensor.Range(-10, 10, 1), tensor.Range(5, 9, 1)}, tensor.Shape{3, 0}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := must.M1(m.Slice(tt.specs...))
			assert.Equal(t, tt.shape, s.Shape())
			assert.Equal(t, tt.want, must.M1(s.Values()))
		})
	}
}

func TestSliceErrors(t *testing.T) {
	arena := newArena()
	m := fromValues(arena, tensor.Shape{2, 2}, 1, 2, 3, 4)

	_, err := m.Slice(tensor.Step(0))
	assert.ErrorIs(t, err, tensor.ErrZeroStep)
	assert.Equal(t, tensor.ErrSlice, tensor.KindOf(err))

	_, err = m.Slice(tensor.Index(2))
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfBounds)

	_, err = m.Slice(tensor.All(), tensor.All(), tensor.All())
	assert.ErrorIs(t, err, tensor.ErrRankMismatch)

	row := must.M1(m.SliceAny(1, nil))
	assert.Equal(t, []float64{3, 4}, must.M1(row.Values()))
	_, err = m.SliceAny("x")
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	_, err = m.SliceAny([]int{0, 1, 1, 1})
	assert.ErrorIs(t, err, tensor.ErrInvalidArgument)
	assert.Equal(t, "1:2:2", tensor.Range(1, 2, 2).String())
	assert.Equal(t, ":", tensor.All().String())
}
