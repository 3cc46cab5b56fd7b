package cpu

import (
	"github.com/born-ml/ndarray/internal/parallel"
	"github.com/born-ml/ndarray/internal/tensor"
)

// View is a strided window over a host slice.
// The accelerator emulation reuses the kernels below on its own storage through View.
type View struct {
	Data    []float64
	Shape   tensor.Shape
	Strides []int
	Offset  int
}

// Contiguous returns a dense row-major View over data.
func Contiguous(data []float64, shape tensor.Shape) View {
	return View{Data: data, Shape: shape, Strides: shape.ComputeStrides()}
}

// Size returns the number of elements covered by v.
func (v View) Size() int { return v.Shape.NumElements() }

func (v View) dense() bool {
	return tensor.IsContiguous(v.Shape, v.Strides)
}

// cursor walks the row-major coordinates of shape and tracks the
// buffer position of every operand as it goes.
type cursor struct {
	shape   tensor.Shape
	coords  []int
	pos     []int
	strides [][]int
}

func newCursor(shape tensor.Shape, flat int, views ...View) *cursor {
	c := &cursor{
		shape:   shape,
		coords:  make([]int, len(shape)),
		pos:     make([]int, len(views)),
		strides: make([][]int, len(views)),
	}
	rest := flat
	for i := len(shape) - 1; i >= 0; i-- {
		if shape[i] > 0 {
			c.coords[i] = rest % shape[i]
			rest /= shape[i]
		}
	}
	for k, v := range views {
		c.strides[k] = v.Strides
		p := v.Offset
		for i, x := range c.coords {
			p += x * v.Strides[i]
		}
		c.pos[k] = p
	}
	return c
}

// next advances to the following row-major coordinate.
func (c *cursor) next() {
	for axis := len(c.shape) - 1; axis >= 0; axis-- {
		c.coords[axis]++
		for k := range c.pos {
			c.pos[k] += c.strides[k][axis]
		}
		if c.coords[axis] < c.shape[axis] {
			return
		}
		for k := range c.pos {
			c.pos[k] -= c.strides[k][axis] * c.shape[axis]
		}
		c.coords[axis] = 0
	}
}

// CopyKernel copies src into dst element by element. Both share a shape.
func CopyKernel(dst, src View, cfg parallel.Config) {
	n := dst.Size()
	if dst.dense() && src.dense() {
		copy(dst.Data[dst.Offset:dst.Offset+n], src.Data[src.Offset:src.Offset+n])
		return
	}
	parallel.ForRange(n, func(start, end int) {
		c := newCursor(dst.Shape, start, dst, src)
		for i := start; i < end; i++ {
			dst.Data[c.pos[0]] = src.Data[c.pos[1]]
			c.next()
		}
	}, cfg)
}

// FillKernel writes value into every element of dst.
func FillKernel(dst View, value float64, cfg parallel.Config) {
	n := dst.Size()
	if dst.dense() {
		data := dst.Data[dst.Offset : dst.Offset+n]
		for i := range data {
			data[i] = value
		}
		return
	}
	parallel.ForRange(n, func(start, end int) {
		c := newCursor(dst.Shape, start, dst)
		for i := start; i < end; i++ {
			dst.Data[c.pos[0]] = value
			c.next()
		}
	}, cfg)
}
