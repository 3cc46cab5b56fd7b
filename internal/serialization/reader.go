package serialization

import (
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/born-ml/ndarray/internal/tensor"
	"github.com/pkg/errors"
)

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool
	ValidationLevel        ValidationLevel
}

// Reader holds a decoded .ndar file. The data section is kept in memory and
// tensors are materialized on demand.
type Reader struct {
	header   Header
	checksum [ChecksumSize]byte
	data     []byte
	closed   bool
}

// NewReader decodes and validates a .ndar stream.
func NewReader(r io.Reader, opts ReaderOptions) (*Reader, error) {
	reader := &Reader{}
	if err := reader.parse(r); err != nil {
		return nil, errors.WithMessage(err, "failed to parse header")
	}
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(reader.data), reader.checksum); err != nil {
			return nil, err
		}
	}
	if err := ValidateHeader(&reader.header, int64(len(reader.data)), opts.ValidationLevel); err != nil {
		return nil, errors.WithMessage(err, "validation failed")
	}
	return reader, nil
}

// OpenFile reads and validates the .ndar file at path.
func OpenFile(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: path is chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer func() { _ = file.Close() }()
	return NewReader(file, opts)
}

func (r *Reader) parse(in io.Reader) error {
	prefix := make([]byte, PrefixSize)
	if _, err := io.ReadFull(in, prefix); err != nil {
		return errors.Wrap(err, "failed to read file prefix")
	}
	if string(prefix[:4]) != MagicBytes {
		return errors.Wrapf(ErrInvalidMagic, "got %q, expected %q", prefix[:4], MagicBytes)
	}
	if version := binary.LittleEndian.Uint32(prefix[4:8]); version != FormatVersion {
		return errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", version, FormatVersion)
	}
	headerSize := binary.LittleEndian.Uint64(prefix[8:16])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return errors.Wrap(err, "failed to read header")
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return errors.Wrap(err, "failed to parse header JSON")
	}
	if _, err := io.ReadFull(in, r.checksum[:]); err != nil {
		return errors.Wrap(err, "failed to read checksum")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "failed to read tensor data")
	}
	r.data = data
	return nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns tensor names in file order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns the header entry for name.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, errors.Wrapf(ErrTensorNotFound, "%q", name)
}

// ReadValues decodes the elements of the named tensor.
func (r *Reader) ReadValues(name string) ([]float64, error) {
	if r.closed {
		return nil, ErrClosed
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(r.data)) {
		return nil, errors.Wrapf(ErrOutOfBounds, "tensor %q", name)
	}
	raw := r.data[meta.Offset : meta.Offset+meta.Size]
	values := make([]float64, len(raw)/ElementSize)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*ElementSize:]))
	}
	return values, nil
}

// LoadTensor materializes the named tensor on device.
func (r *Reader) LoadTensor(name string, arena *tensor.Arena, device tensor.Device) (*tensor.RawTensor, error) {
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	shape := tensor.Shape(meta.Shape).Clone()
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessagef(err, "invalid shape for tensor %s", name)
	}
	values, err := r.ReadValues(name)
	if err != nil {
		return nil, err
	}
	return tensor.FromValues(arena, device, shape, values)
}

// ReadAll materializes every tensor on device. On error nothing stays allocated.
func (r *Reader) ReadAll(arena *tensor.Arena, device tensor.Device) (map[string]*tensor.RawTensor, error) {
	if r.closed {
		return nil, ErrClosed
	}
	out := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		t, err := r.LoadTensor(meta.Name, arena, device)
		if err != nil {
			for _, loaded := range out {
				loaded.Release()
			}
			return nil, errors.WithMessagef(err, "failed to load tensor %s", meta.Name)
		}
		out[meta.Name] = t
	}
	return out, nil
}

// Close drops the in-memory data section.
func (r *Reader) Close() error {
	r.closed = true
	r.data = nil
	return nil
}

// Load decodes a stream with strict validation and materializes every tensor on device.
func Load(in io.Reader, arena *tensor.Arena, device tensor.Device) (map[string]*tensor.RawTensor, Header, error) {
	r, err := NewReader(in, ReaderOptions{ValidationLevel: ValidationStrict})
	if err != nil {
		return nil, Header{}, err
	}
	tensors, err := r.ReadAll(arena, device)
	if err != nil {
		return nil, Header{}, err
	}
	return tensors, r.Header(), nil
}

// LoadFile is Load over the file at path.
func LoadFile(path string, arena *tensor.Arena, device tensor.Device) (map[string]*tensor.RawTensor, Header, error) {
	r, err := OpenFile(path, ReaderOptions{ValidationLevel: ValidationStrict})
	if err != nil {
		return nil, Header{}, err
	}
	tensors, err := r.ReadAll(arena, device)
	if err != nil {
		return nil, Header{}, err
	}
	return tensors, r.Header(), nil
}
