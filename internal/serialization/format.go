package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes    = "NDAR"
	FormatVersion = 1
	PrefixSize    = 4 + 4 + 8 // magic + version + header size
	ChecksumSize  = 32        // SHA-256
	ElementSize   = 8         // float64
	DTypeFloat64  = "float64"
)

// Header is the JSON header of a .ndar file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	Library       string            `json:"library"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes a tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// NumElements returns the element count implied by Shape.
func (m TensorMeta) NumElements() int64 {
	n := int64(1)
	for _, d := range m.Shape {
		n *= int64(d)
	}
	return n
}
