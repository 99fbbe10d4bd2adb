package qdev

import (
	"fmt"
	"maps"
	"strings"

	"github.com/nerrad567/devmodel/internal/property"
)

// State is the lifecycle state of a device.
type State int

// Lifecycle states.
const (
	StateCreated State = iota
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Device is a live instance of a DeviceClass.
type Device struct {
	// ID is the optional user-assigned identifier. Ids are not unique.
	ID string

	model  *Model
	class  *DeviceClass
	state  State
	parent *Bus
	buses  []*Bus // newest first
	props  *property.Bag
	inst   any

	gpioIn  []*IRQ
	gpioOut []*IRQ

	hotplugged bool

	aliasID                 int
	aliasRequiredForVersion int
	vmRegistered            bool

	opts  map[string]string
	freed bool
}

// mustLive guards against use after Free.
func (d *Device) mustLive(op string) {
	if d.freed {
		violate(op, "device %q used after free", d.class.Name)
	}
}

// Class returns the device class.
func (d *Device) Class() *DeviceClass { return d.class }

// Name returns the class name.
func (d *Device) Name() string { return d.class.Name }

// State returns the lifecycle state.
func (d *Device) State() State { return d.state }

// Model returns the model the device belongs to.
func (d *Device) Model() *Model { return d.model }

// ParentBus returns the bus the device sits on.
func (d *Device) ParentBus() *Bus { return d.parent }

// Hotplugged reports whether the device was created after machine ready.
func (d *Device) Hotplugged() bool { return d.hotplugged }

// Freed reports whether the device has been freed.
func (d *Device) Freed() bool { return d.freed }

// Instance returns the per-instance state allocated by DeviceClass.New.
func (d *Device) Instance() any { return d.inst }

// stateOpaque is what the class state description is walked over.
func (d *Device) stateOpaque() any {
	if d.inst != nil {
		return d.inst
	}
	return d
}

// Props returns the property values of the device.
func (d *Device) Props() *property.Bag { return d.props }

// SetProp parses value into the property name.
func (d *Device) SetProp(name, value string) error {
	d.mustLive("set property")
	if err := d.props.Parse(name, value); err != nil {
		return fmt.Errorf("%s: %w", d.class.Name, err)
	}
	return nil
}

// SetPropValue stores a typed property value.
func (d *Device) SetPropValue(name string, v any) error {
	d.mustLive("set property")
	if err := d.props.Set(name, v); err != nil {
		return fmt.Errorf("%s: %w", d.class.Name, err)
	}
	return nil
}

// Prop returns the current value of a property.
func (d *Device) Prop(name string) (any, error) {
	return d.props.Get(name)
}

// Options returns the option set of a user-added device, or nil.
func (d *Device) Options() map[string]string {
	return maps.Clone(d.opts)
}

// SetLegacyInstanceID sets the legacy state instance id accepted from images
// of machine versions up to requiredForVersion. Only valid before Initialize.
func (d *Device) SetLegacyInstanceID(aliasID, requiredForVersion int) {
	d.mustLive("set legacy instance id")
	if d.state != StateCreated {
		violate("set legacy instance id", "device %q is %s", d.class.Name, d.state)
	}
	d.aliasID = aliasID
	d.aliasRequiredForVersion = requiredForVersion
}

// ChildBuses returns the buses owned by the device, newest first.
func (d *Device) ChildBuses() []*Bus {
	out := make([]*Bus, len(d.buses))
	copy(out, d.buses)
	return out
}

// ChildBus returns the child bus called name, or nil.
func (d *Device) ChildBus(name string) *Bus {
	for _, b := range d.buses {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// NewChildBus creates a bus owned by the device. See Model.NewBus.
func (d *Device) NewChildBus(cls *BusClass, name string) *Bus {
	return d.model.NewBus(cls, d, name)
}

func (d *Device) removeBus(b *Bus) {
	for i, c := range d.buses {
		if c == b {
			d.buses = append(d.buses[:i], d.buses[i+1:]...)
			return
		}
	}
}

// InstanceNo returns the position of the device among the siblings of the
// same class on its bus, newest first.
func (d *Device) InstanceNo() int {
	n := 0
	for _, s := range d.parent.children {
		if s == d {
			break
		}
		if s.class == d.class {
			n++
		}
	}
	return n
}

// Path returns an absolute path that resolves back to the device while the
// tree is unchanged.
func (d *Device) Path() string {
	seg := fmt.Sprintf("%s.%d", d.class.Name, d.InstanceNo())
	p := d.parent.Path()
	if strings.HasSuffix(p, "/") {
		return p + seg
	}
	return p + "/" + seg
}

// FirmwarePath returns the firmware device path: one element per device
// from the root, named by the parent bus class when it implements
// FirmwarePather and by the class name otherwise.
func (d *Device) FirmwarePath() string {
	var sb strings.Builder
	firmwarePath(&sb, d)
	s := sb.String()
	return s[:len(s)-1]
}

func firmwarePath(sb *strings.Builder, d *Device) {
	if d != nil && d.parent != nil {
		firmwarePath(sb, d.parent.parent)
		if fp, ok := d.parent.class.Ops.(FirmwarePather); ok {
			sb.WriteString(fp.FirmwareName(d))
		} else {
			sb.WriteString(d.class.Name)
		}
	}
	sb.WriteByte('/')
}
