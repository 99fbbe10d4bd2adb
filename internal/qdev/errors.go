package qdev

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the qdev package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, qdev.ErrBusNoHotplug) {
//	    // the target bus is fixed at machine creation
//	}
var (
	// ErrUnknownType is returned when no registered class matches a driver name.
	ErrUnknownType = errors.New("qdev: unknown device type")

	// ErrNotUserCreatable is returned when a user request names a no-user class.
	ErrNotUserCreatable = errors.New("qdev: device type is not user creatable")

	// ErrInitFailed wraps the error returned by a driver's Init.
	ErrInitFailed = errors.New("qdev: device initialization failed")

	// ErrBadBusForDevice is returned when the requested bus has the wrong class.
	ErrBadBusForDevice = errors.New("qdev: bus type does not match device")

	// ErrNoBusForDevice is returned when no bus of the required class exists.
	ErrNoBusForDevice = errors.New("qdev: no bus for device")

	// ErrBusNoHotplug is returned when the bus does not accept hot-plug.
	ErrBusNoHotplug = errors.New("qdev: bus does not support hot-plug")

	// ErrMachineNotReady is returned when unplugging before the machine is ready.
	ErrMachineNotReady = errors.New("qdev: machine not ready for hot-plug")

	// ErrDeviceNotFound is returned when a device path element or id matches nothing.
	ErrDeviceNotFound = errors.New("qdev: device not found")

	// ErrBusNotFound is returned when a bus path element matches nothing.
	ErrBusNotFound = errors.New("qdev: bus not found")

	// ErrDeviceNoBus is returned when a path ends on a device without child buses.
	ErrDeviceNoBus = errors.New("qdev: device has no child bus")

	// ErrDeviceMultipleBuses is returned when a path ends on a device with
	// several child buses.
	ErrDeviceMultipleBuses = errors.New("qdev: device has multiple child buses")

	// ErrDeviceNoState is returned by Show for classes without a state description.
	ErrDeviceNoState = errors.New("qdev: device has no state description")

	// ErrMissingDriver is returned when an add request names no driver.
	ErrMissingDriver = errors.New("qdev: driver not specified")
)

// PathError reports a path element that could not be resolved.
type PathError struct {
	Path string
	Elem string
	Err  error

	// Where is the bus or device the lookup stopped at, and Candidates the
	// names available there.
	Where      string
	Candidates []string
}

func (e *PathError) Error() string {
	msg := fmt.Sprintf("%v: %q", e.Err, e.Elem)
	if e.Path != e.Elem {
		msg += fmt.Sprintf(" in path %q", e.Path)
	}
	if e.Where != "" {
		msg += fmt.Sprintf(" (at %q: %s)", e.Where, strings.Join(e.Candidates, ", "))
	}
	return msg
}

func (e *PathError) Unwrap() error { return e.Err }

// ContractViolation is the panic value raised when a class or caller breaks
// the device model's programming contract (initializing twice, unplugging a
// class without an unplug handler, reusing a freed device).
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("qdev: contract violation in %s: %s", e.Op, e.Reason)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Reason: fmt.Sprintf(format, args...)})
}
