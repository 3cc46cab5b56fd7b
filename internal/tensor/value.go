package tensor

import (
	"reflect"

	"github.com/pkg/errors"
)

// FlattenValue converts a Go scalar or (nested) slice of numbers into a shape and
// its row-major float64 elements. Nesting depth becomes the rank.
// Bools convert to 1 and 0. Sub-slices must have regular shapes.
func FlattenValue(v any) (Shape, []float64, error) {
	switch x := v.(type) {
	case float64:
		return Shape{}, []float64{x}, nil
	case []float64:
		out := make([]float64, len(x))
		copy(out, x)
		return Shape{len(x)}, out, nil
	case [][]float64:
		return flattenMatrix(x)
	}
	if v == nil {
		return nil, nil, errors.Wrapf(ErrUnsupportedValue, "nil value")
	}
	var shape Shape
	if err := shapeForValue(&shape, reflect.ValueOf(v)); err != nil {
		return nil, nil, err
	}
	values := make([]float64, 0, shape.NumElements())
	values = appendValues(values, reflect.ValueOf(v))
	return shape, values, nil
}

func flattenMatrix(x [][]float64) (Shape, []float64, error) {
	if len(x) == 0 {
		return Shape{0}, []float64{}, nil
	}
	cols := len(x[0])
	values := make([]float64, 0, len(x)*cols)
	for i, row := range x {
		if len(row) != cols {
			return nil, nil, errors.Wrapf(ErrUnsupportedValue, "row %d has %d elements, row 0 has %d", i, len(row), cols)
		}
		values = append(values, row...)
	}
	return Shape{len(x), cols}, values, nil
}

func shapeForValue(shape *Shape, v reflect.Value) error {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return errors.Wrapf(ErrUnsupportedValue, "nil element")
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		*shape = append(*shape, v.Len())
		if v.Len() == 0 {
			return nil
		}
		prefix := shape.Clone()
		if err := shapeForValue(shape, v.Index(0)); err != nil {
			return err
		}
		for i := 1; i < v.Len(); i++ {
			sub := prefix.Clone()
			if err := shapeForValue(&sub, v.Index(i)); err != nil {
				return err
			}
			if !sub.Equal(*shape) {
				return errors.Wrapf(ErrUnsupportedValue, "sub-slices have irregular shapes %v and %v", *shape, sub)
			}
		}
		return nil
	case reflect.Float32, reflect.Float64, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	}
	return errors.Wrapf(ErrUnsupportedValue, "cannot convert %s to a tensor element", v.Type())
}

func appendValues(out []float64, v reflect.Value) []float64 {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			out = appendValues(out, v.Index(i))
		}
		return out
	case reflect.Float32, reflect.Float64:
		return append(out, v.Float())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return append(out, float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return append(out, float64(v.Uint()))
	case reflect.Bool:
		if v.Bool() {
			return append(out, 1)
		}
		return append(out, 0)
	}
	panic(errors.Errorf("appendValues: unexpected kind %s", v.Kind()))
}
