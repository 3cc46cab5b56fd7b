package serialization

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/tensor"
)

func testTensors(t *testing.T, arena *tensor.Arena) map[string]*tensor.RawTensor {
	t.Helper()
	w, err := tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	b, err := tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{}, []float64{-0.5})
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	return map[string]*tensor.RawTensor{"weight": w, "bias": b}
}

func TestSaveLoad(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	tensors := testTensors(t, arena)

	var buf bytes.Buffer
	if err := Save(&buf, tensors, map[string]string{"note": "test"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, header, err := Load(bytes.NewReader(buf.Bytes()), arena, tensor.HostDevice)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if header.Metadata["note"] != "test" {
		t.Errorf("metadata = %v", header.Metadata)
	}
	if header.Tensors[0].Name != "bias" || header.Tensors[1].Name != "weight" {
		t.Errorf("tensors not in sorted order: %v", header.Tensors)
	}
	for name, want := range tensors {
		got := loaded[name]
		if got == nil {
			t.Fatalf("tensor %q missing", name)
		}
		if !got.Shape().Equal(want.Shape()) {
			t.Errorf("%s: shape %v, want %v", name, got.Shape(), want.Shape())
		}
		gv, _ := got.Values()
		wv, _ := want.Values()
		for i := range wv {
			if gv[i] != wv[i] {
				t.Errorf("%s[%d] = %v, want %v", name, i, gv[i], wv[i])
			}
		}
	}
}

func TestSaveTransposedView(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	m, _ := tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{2, 2}, []float64{1, 2, 3, 4})
	mt, err := m.Transpose()
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}

	path := filepath.Join(t.TempDir(), "view.ndar")
	if err := SaveFile(path, map[string]*tensor.RawTensor{"mt": mt}, nil); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	reader, err := OpenFile(path, ReaderOptions{})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer reader.Close()

	values, err := reader.ReadValues("mt")
	if err != nil {
		t.Fatalf("ReadValues: %v", err)
	}
	want := []float64{1, 3, 2, 4}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("values = %v, want %v", values, want)
			break
		}
	}
	if _, err := reader.TensorInfo("missing"); !errors.Is(err, ErrTensorNotFound) {
		t.Errorf("TensorInfo(missing) = %v, want ErrTensorNotFound", err)
	}
}

func TestLoadRejectsCorruption(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	var buf bytes.Buffer
	if err := Save(&buf, testTensors(t, arena), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	good := buf.Bytes()

	flipped := bytes.Clone(good)
	flipped[len(flipped)-1] ^= 0xff
	if _, _, err := Load(bytes.NewReader(flipped), arena, tensor.HostDevice); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("corrupted data: got %v, want ErrChecksumMismatch", err)
	}

	badMagic := bytes.Clone(good)
	copy(badMagic, "BORN")
	if _, _, err := Load(bytes.NewReader(badMagic), arena, tensor.HostDevice); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("bad magic: got %v, want ErrInvalidMagic", err)
	}

	badVersion := bytes.Clone(good)
	badVersion[4] = 9
	if _, _, err := Load(bytes.NewReader(badVersion), arena, tensor.HostDevice); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("bad version: got %v, want ErrUnsupportedVersion", err)
	}

	if _, _, err := Load(bytes.NewReader(good[:10]), arena, tensor.HostDevice); err == nil {
		t.Error("truncated file should fail to load")
	}

	r, err := NewReader(bytes.NewReader(flipped), ReaderOptions{SkipChecksumValidation: true})
	if err != nil {
		t.Fatalf("skipping checksum validation should accept the file: %v", err)
	}
	if len(r.TensorNames()) != 2 {
		t.Errorf("TensorNames = %v", r.TensorNames())
	}
}

func TestSaveRejectsBadNames(t *testing.T) {
	arena := tensor.NewArena(cpu.New())
	x, _ := tensor.FromValues(arena, tensor.HostDevice, tensor.Shape{1}, []float64{1})
	var buf bytes.Buffer
	if err := Save(&buf, map[string]*tensor.RawTensor{"": x}, nil); !errors.Is(err, ErrInvalidTensorName) {
		t.Errorf("empty name: got %v, want ErrInvalidTensorName", err)
	}
}
