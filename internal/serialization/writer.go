package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// Library identifies the writer in file headers.
const Library = "ndarray/0.1.0"

// Writer writes tensors in .ndar format.
type Writer struct {
	w      io.Writer
	closer io.Closer
	closed bool
}

// NewWriter returns a Writer that writes to w. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// CreateFile creates (or truncates) path and returns a Writer for it.
func CreateFile(path string) (*Writer, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return &Writer{w: file, closer: file}, nil
}

// encodeTensors builds the header entries and the data section. Tensors are
// downloaded to the host and laid out row-major in sorted name order.
func encodeTensors(tensors map[string]*tensor.RawTensor) ([]TensorMeta, []byte, error) {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	metas := make([]TensorMeta, 0, len(names))
	var data []byte
	for _, name := range names {
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		t := tensors[name]
		if t == nil {
			return nil, nil, errors.Errorf("tensor %q is nil", name)
		}
		values, err := t.Values()
		if err != nil {
			return nil, nil, errors.WithMessagef(err, "failed to read tensor %q", name)
		}
		meta := TensorMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Shape:  []int(t.Shape().Clone()),
			Offset: int64(len(data)),
			Size:   int64(len(values) * ElementSize),
		}
		for _, v := range values {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}
		metas = append(metas, meta)
	}
	return metas, data, nil
}

// WriteTensors writes tensors with optional metadata.
func (w *Writer) WriteTensors(tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	if w.closed {
		return ErrClosed
	}
	metas, data, err := encodeTensors(tensors)
	if err != nil {
		return err
	}
	header := Header{
		FormatVersion: FormatVersion,
		Library:       Library,
		CreatedAt:     time.Now().UTC(),
		Tensors:       metas,
		Metadata:      metadata,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	bw := bufio.NewWriter(w.w)
	prefix := make([]byte, 0, PrefixSize)
	prefix = append(prefix, MagicBytes...)
	prefix = binary.LittleEndian.AppendUint32(prefix, FormatVersion)
	prefix = binary.LittleEndian.AppendUint64(prefix, uint64(len(headerJSON)))
	checksum := ComputeChecksum(data)
	for _, part := range [][]byte{prefix, headerJSON, checksum[:], data} {
		if _, err := bw.Write(part); err != nil {
			return errors.Wrap(err, "failed to write tensor file")
		}
	}
	return errors.Wrap(bw.Flush(), "failed to flush tensor file")
}

// Close closes the underlying file when the Writer owns one.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Save writes tensors to w.
func Save(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	return NewWriter(w).WriteTensors(tensors, metadata)
}

// SaveFile writes tensors to path.
func SaveFile(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	w, err := CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	return w.WriteTensors(tensors, metadata)
}
