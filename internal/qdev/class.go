package qdev

import (
	"io"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

// Driver is the behaviour every device class provides.
//
// A Driver may also implement Exiter, Resetter and Unplugger.
type Driver interface {
	// Init brings a created device to life. Properties are already set.
	// Returning an error discards the device.
	Init(d *Device) error
}

// Exiter is called while an initialized device is freed, after its child
// buses are gone.
type Exiter interface {
	Exit(d *Device) error
}

// Resetter restores a device to its power-on state.
type Resetter interface {
	Reset(d *Device) error
}

// Unplugger handles a hot-unplug request. Classes without one cannot be
// unplugged.
type Unplugger interface {
	Unplug(d *Device) error
}

// InitFunc adapts a function to the Driver interface.
type InitFunc func(d *Device) error

// Init implements Driver.
func (f InitFunc) Init(d *Device) error { return f(d) }

// SimpleUnplug is an Unplugger that frees the device immediately. Embed it
// in a driver to make the class hot-unpluggable.
type SimpleUnplug struct{}

// Unplug implements Unplugger.
func (SimpleUnplug) Unplug(d *Device) error {
	d.Free()
	return nil
}

// DeviceClass is a registered device type.
type DeviceClass struct {
	Name  string
	Alias string
	Desc  string

	// NoUser hides the class from user add requests and device help.
	NoUser bool

	// Bus is the class of bus the device plugs into.
	Bus *BusClass

	Props  []property.Descriptor
	Driver Driver

	// VMState describes the persisted fields shown by Model.Show. It is
	// walked over the instance state returned by New, or over the *Device
	// when New is nil.
	VMState *vmstate.Description

	// New allocates the per-instance state of the class.
	New func() any
}

// BusResetter resets a bus before its devices are reset.
type BusResetter interface {
	ResetBus(b *Bus) error
}

// DevicePrinter adds bus-specific lines to the tree dump of a device.
type DevicePrinter interface {
	PrintDevice(w io.Writer, d *Device, indent int)
}

// FirmwarePather names a device inside a firmware device path.
type FirmwarePather interface {
	FirmwareName(d *Device) string
}

// BusClass is a type of bus.
type BusClass struct {
	Name string

	// Props are bus-level properties every device on such a bus carries.
	Props []property.Descriptor

	// Ops optionally implements BusResetter, DevicePrinter and FirmwarePather.
	Ops any
}

// SystemBus is the class of the root bus.
var SystemBus = &BusClass{Name: "System"}
