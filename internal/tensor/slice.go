package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// SliceSpec selects part of one axis.
type SliceSpec struct {
	index bool
	i     int
	start *int
	stop  *int
	step  int
}

// All selects a whole axis.
func All() SliceSpec { return SliceSpec{step: 1} }

// Index fixes an axis at position i and removes it from the result.
// Negative i counts from the end.
func Index(i int) SliceSpec { return SliceSpec{index: true, i: i} }

// Range selects start:stop:step. Bounds follow Python conventions:
// negative values count from the end and out-of-range values clamp.
func Range(start, stop, step int) SliceSpec {
	return SliceSpec{start: &start, stop: &stop, step: step}
}

// From selects start: with step 1.
func From(start int) SliceSpec { return SliceSpec{start: &start, step: 1} }

// Until selects :stop with step 1.
func Until(stop int) SliceSpec { return SliceSpec{stop: &stop, step: 1} }

// Step selects the whole axis with the given step, e.g. Step(-1) reverses it.
func Step(step int) SliceSpec { return SliceSpec{step: step} }

// String renders the spec in Python slice notation.
func (s SliceSpec) String() string {
	if s.index {
		return fmt.Sprint(s.i)
	}
	out := ""
	if s.start != nil {
		out += fmt.Sprint(*s.start)
	}
	out += ":"
	if s.stop != nil {
		out += fmt.Sprint(*s.stop)
	}
	if s.step != 1 {
		out += fmt.Sprintf(":%d", s.step)
	}
	return out
}

// ParseSliceSpec converts a loosely typed slice description.
// Accepted forms: nil or []int{} (whole axis), an int (fixed index),
// []int{stop}, []int{start, stop}, []int{start, stop, step}.
func ParseSliceSpec(v any) (SliceSpec, error) {
	switch s := v.(type) {
	case nil:
		return All(), nil
	case SliceSpec:
		return s, nil
	case int:
		return Index(s), nil
	case int64:
		return Index(int(s)), nil
	case []int:
		switch len(s) {
		case 0:
			return All(), nil
		case 1:
			return Until(s[0]), nil
		case 2:
			return Range(s[0], s[1], 1), nil
		case 3:
			return Range(s[0], s[1], s[2]), nil
		}
		return SliceSpec{}, errors.Wrapf(ErrInvalidArgument, "slice spec %v has %d elements, at most 3", s, len(s))
	}
	return SliceSpec{}, errors.Wrapf(ErrInvalidArgument, "unsupported slice spec of type %T", v)
}

// resolve returns start, length, and step for an axis of size dim.
func (s SliceSpec) resolve(dim int) (start, n, step int, err error) {
	if s.index {
		i := s.i
		if i < 0 {
			i += dim
		}
		if i < 0 || i >= dim {
			return 0, 0, 0, errors.Wrapf(ErrAxisOutOfBounds, "index %d for axis of size %d", s.i, dim)
		}
		return i, 1, 1, nil
	}
	step = s.step
	if step == 0 {
		return 0, 0, 0, errors.WithStack(ErrZeroStep)
	}

	// Python slice.indices semantics.
	var lower, upper int
	if step > 0 {
		lower, upper = 0, dim
	} else {
		lower, upper = -1, dim-1
	}
	clamp := func(v *int, def int) int {
		if v == nil {
			return def
		}
		x := *v
		if x < 0 {
			x += dim
			if x < lower {
				x = lower
			}
		} else if x > upper {
			x = upper
		}
		return x
	}
	if step > 0 {
		start = clamp(s.start, lower)
		stop := clamp(s.stop, upper)
		if stop > start {
			n = (stop - start + step - 1) / step
		}
	} else {
		start = clamp(s.start, upper)
		stop := clamp(s.stop, lower)
		if start > stop {
			n = (start - stop - step - 1) / -step
		}
	}
	return start, n, step, nil
}

// Slice returns a view selecting part of each leading axis.
// Axes without a spec are kept whole; Index specs remove their axis.
func (r *RawTensor) Slice(specs ...SliceSpec) (*RawTensor, error) {
	shape, strides, offset, err := r.sliceLayout(specs)
	if err != nil {
		return nil, err
	}
	return r.view(shape, strides, offset)
}

// sliceLayout resolves specs against r's layout without touching the buffer.
func (r *RawTensor) sliceLayout(specs []SliceSpec) (Shape, []int, int, error) {
	rank := len(r.shape)
	if len(specs) > rank {
		return nil, nil, 0, errors.Wrapf(ErrRankMismatch, "slice: %d specs for rank %d", len(specs), rank)
	}
	shape := make(Shape, 0, rank)
	strides := make([]int, 0, rank)
	offset := r.offset
	for axis := 0; axis < rank; axis++ {
		spec := All()
		if axis < len(specs) {
			spec = specs[axis]
		}
		start, n, step, err := spec.resolve(r.shape[axis])
		if err != nil {
			return nil, nil, 0, errors.WithMessagef(err, "slice axis %d", axis)
		}
		if n > 0 {
			offset += start * r.strides[axis]
		}
		if spec.index {
			continue
		}
		shape = append(shape, n)
		strides = append(strides, step*r.strides[axis])
	}
	return shape, strides, offset, nil
}

// ParseSliceSpecs applies ParseSliceSpec to each element of specs.
func ParseSliceSpecs(specs ...any) ([]SliceSpec, error) {
	parsed := make([]SliceSpec, len(specs))
	for i, s := range specs {
		var err error
		if parsed[i], err = ParseSliceSpec(s); err != nil {
			return nil, err
		}
	}
	return parsed, nil
}

// SliceAny parses each spec with ParseSliceSpec and slices.
func (r *RawTensor) SliceAny(specs ...any) (*RawTensor, error) {
	parsed, err := ParseSliceSpecs(specs...)
	if err != nil {
		return nil, err
	}
	return r.Slice(parsed...)
}
