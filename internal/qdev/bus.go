package qdev

import (
	"fmt"
	"strings"
)

// Bus connects devices of a compatible class. It owns its devices.
type Bus struct {
	Name string

	// AllowHotplug permits adding and removing devices after machine ready.
	AllowHotplug bool

	model    *Model
	class    *BusClass
	parent   *Device
	children []*Device // newest first
	freed    bool
}

// Class returns the bus class.
func (b *Bus) Class() *BusClass { return b.class }

// Parent returns the owning device, or nil for the root bus and detached
// buses.
func (b *Bus) Parent() *Device { return b.parent }

// Children returns the devices on the bus, newest first.
func (b *Bus) Children() []*Device {
	out := make([]*Device, len(b.children))
	copy(out, b.children)
	return out
}

// Path returns the absolute path of the bus. The root bus is "/".
func (b *Bus) Path() string {
	switch {
	case b == b.model.root:
		return "/"
	case b.parent == nil:
		return b.Name
	}
	return b.parent.Path() + "/" + b.Name
}

// NewBus creates a bus of class cls owned by parent. A nil parent yields a
// detached bus that is not reachable from the root.
//
// An empty name is derived from the parent id ("<id>.<n>") or, failing that,
// from the lowercase class name ("<class>.<n>"), where n is the number of
// buses the parent already owns.
func (m *Model) NewBus(cls *BusClass, parent *Device, name string) *Bus {
	if parent != nil {
		parent.mustLive("create bus")
	}
	n := 0
	if parent != nil {
		n = len(parent.buses)
	}
	switch {
	case name != "":
	case parent != nil && parent.ID != "":
		name = fmt.Sprintf("%s.%d", parent.ID, n)
	default:
		name = strings.ToLower(fmt.Sprintf("%s.%d", cls.Name, n))
	}

	b := &Bus{Name: name, class: cls, parent: parent, model: m}
	if parent != nil {
		parent.buses = append([]*Bus{b}, parent.buses...)
	}
	m.logger.Debug("bus created", "name", name, "type", cls.Name)
	return b
}

// Free frees every device on the bus, then detaches the bus from its owner.
// Freeing the root bus is a contract violation.
func (b *Bus) Free() {
	if b == b.model.root {
		violate("free bus", "the root bus is never freed")
	}
	if b.freed {
		violate("free bus", "bus %q used after free", b.Name)
	}
	for len(b.children) > 0 {
		b.children[0].Free()
	}
	if b.parent != nil {
		b.parent.removeBus(b)
	}
	b.freed = true
}

func (b *Bus) insert(d *Device) {
	b.children = append([]*Device{d}, b.children...)
}

func (b *Bus) remove(d *Device) {
	for i, c := range b.children {
		if c == d {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return
		}
	}
}
