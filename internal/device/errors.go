package device

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is wrapped by every construction-time binding failure.
var ErrConfiguration = errors.New("device: configuration error")

// MissingDeviceError lists every required capability nothing was bound to.
type MissingDeviceError struct {
	Missing []Requirement
}

func (e *MissingDeviceError) Error() string {
	names := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		names[i] = r.String()
	}
	return "device: vehicle needs " + strings.Join(names, ", ") + " to operate"
}

func (e *MissingDeviceError) Unwrap() error { return ErrConfiguration }

// InvalidDeviceError rejects a single provided binding.
type InvalidDeviceError struct {
	Descriptor Descriptor
	Reason     string
}

func (e *InvalidDeviceError) Error() string {
	return fmt.Sprintf("device: %s: %s", e.Descriptor, e.Reason)
}

func (e *InvalidDeviceError) Unwrap() error { return ErrConfiguration }
