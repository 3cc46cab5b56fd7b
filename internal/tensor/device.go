package tensor

import "fmt"

// DeviceKind is the memory/execution domain of a buffer.
type DeviceKind int

// Supported device kinds. Higher values win when operands of a binary op disagree.
const (
	Host DeviceKind = iota
	Accelerator
)

// String returns a human-readable device kind.
func (k DeviceKind) String() string {
	switch k {
	case Host:
		return "host"
	case Accelerator:
		return "gpu"
	default:
		return "unknown"
	}
}

// Device identifies where a buffer lives.
// ID is only meaningful for accelerators.
type Device struct {
	Kind DeviceKind
	ID   int
}

// HostDevice is the single host device.
var HostDevice = Device{Kind: Host}

// AcceleratorDevice returns the accelerator with the given id.
func AcceleratorDevice(id int) Device {
	return Device{Kind: Accelerator, ID: id}
}

// IsHost reports whether d is host memory.
func (d Device) IsHost() bool { return d.Kind == Host }

// String returns "host" or "gpu:<id>".
func (d Device) String() string {
	if d.Kind == Host {
		return "host"
	}
	return fmt.Sprintf("%s:%d", d.Kind, d.ID)
}

// Priority orders devices for output placement: accelerators before host.
func (d Device) Priority() int {
	return int(d.Kind)
}
