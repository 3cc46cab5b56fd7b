package tensor_test

import (
	"testing"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name    string
		a, b    tensor.Shape
		want    tensor.Shape
		wantErr bool
	}{
		{"same", tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false},
		{"unit", tensor.Shape{2, 3}, tensor.Shape{1}, tensor.Shape{2, 3}, false},
		{"scalar", tensor.Shape{4}, tensor.Shape{}, tensor.Shape{4}, false},
		{"column by row", tensor.Shape{3, 1}, tensor.Shape{1, 5}, tensor.Shape{3, 5}, false},
		{"leading", tensor.Shape{5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, false},
		{"zero size", tensor.Shape{0, 1}, tensor.Shape{3}, tensor.Shape{0, 3}, false},
		{"incompatible", tensor.Shape{3, 4}, tensor.Shape{3, 5}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tensor.BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				assert.ErrorIs(t, err, tensor.ErrIncompatible)
				assert.Equal(t, tensor.ErrShape, tensor.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	all, err := tensor.BroadcastAll(tensor.Shape{2, 1, 1}, tensor.Shape{3, 1}, tensor.Shape{4})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3, 4}, all)
}

func TestShapeBasics(t *testing.T) {
	s := tensor.Shape{2, 3, 4}
	assert.Equal(t, 24, s.NumElements())
	assert.Equal(t, 3, s.Rank())
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, "(2, 3, 4)", s.String())
	assert.Equal(t, "(3,)", tensor.Shape{3}.String())
	assert.Equal(t, 1, tensor.Shape{}.NumElements())
	assert.Equal(t, 0, tensor.Shape{2, 0}.NumElements())

	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 2, s[0])

	assert.ErrorIs(t, tensor.Shape{2, -1}.Validate(), tensor.ErrInvalidShape)
	assert.True(t, tensor.IsContiguous(tensor.Shape{2, 1, 3}, []int{3, 100, 1}))
	assert.False(t, tensor.IsContiguous(tensor.Shape{2, 3}, []int{1, 2}))
}

func TestAxes(t *testing.T) {
	ax, err := tensor.NormalizeAxis(-1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, ax)

	_, err = tensor.NormalizeAxis(3, 3)
	assert.ErrorIs(t, err, tensor.ErrAxisOutOfBounds)
	assert.Equal(t, tensor.ErrAxis, tensor.KindOf(err))

	_, err = tensor.NormalizeAxes([]int{0, -3}, 3)
	assert.ErrorIs(t, err, tensor.ErrInvalidPermutation)

	one := 1
	assert.Equal(t, tensor.Shape{2, 4}, tensor.ReducedShape(tensor.Shape{2, 3, 4}, &one, false))
	assert.Equal(t, tensor.Shape{2, 1, 4}, tensor.ReducedShape(tensor.Shape{2, 3, 4}, &one, true))
	assert.Equal(t, tensor.Shape{}, tensor.ReducedShape(tensor.Shape{2, 3}, nil, false))
	assert.Equal(t, tensor.Shape{1, 1}, tensor.ReducedShape(tensor.Shape{2, 3}, nil, true))

	assert.Equal(t, []int{0, 0, 1}, tensor.BroadcastStrides(tensor.Shape{1, 3}, []int{3, 1}, tensor.Shape{2, 1, 3}))
}
