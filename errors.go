// errors.go - sentinel error kinds for the simulation core (spec section 7)
// License: GPLv3 or later

package nbody

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Test with errors.Is; a DeviceError additionally
// carries the offending device name.
var (
	ErrDevice    = errors.New("nbody: device unavailable or kernel failed")
	ErrSize      = errors.New("nbody: body count incompatible with buffer/work-group size")
	ErrState     = errors.New("nbody: operation not permitted in current worker state")
	ErrInitEmpty = errors.New("nbody: script configuration produced no bodies")
	ErrLost      = errors.New("nbody: device lost during kernel execution")
)

// DeviceError wraps one of the sentinels above with the device name that
// raised it, so callers can log which facade failed without string-matching.
type DeviceError struct {
	Device string
	Kind   error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("nbody: device %q: %v", e.Device, e.Kind)
}

func (e *DeviceError) Unwrap() error { return e.Kind }

func newDeviceError(device string, kind error) *DeviceError {
	return &DeviceError{Device: device, Kind: kind}
}
