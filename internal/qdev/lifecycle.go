package qdev

import (
	"fmt"
	"maps"
	"slices"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

// Create creates a device of class typeName on bus (nil means the root bus).
// The device has its defaults and global overrides applied and is in state
// Created; set properties, then call Initialize.
//
// Returns ErrUnknownType if no class compatible with the bus matches
// typeName.
func (m *Model) Create(bus *Bus, typeName string) (*Device, error) {
	if bus == nil {
		bus = m.RootBus()
	}
	cls := m.reg.Find(bus.class, typeName)
	if cls == nil {
		return nil, fmt.Errorf("%w: %q for bus %s", ErrUnknownType, typeName, bus.class.Name)
	}
	return m.create(bus, cls)
}

// MustCreate is Create for the fixed machine topology. It panics if the
// device cannot be created.
func (m *Model) MustCreate(bus *Bus, typeName string) *Device {
	d, err := m.Create(bus, typeName)
	if err != nil {
		panic(fmt.Sprintf("qdev: creating %q: %v", typeName, err))
	}
	return d
}

func (m *Model) create(bus *Bus, cls *DeviceClass) (*Device, error) {
	if bus.freed {
		violate("create", "bus %q used after free", bus.Name)
	}
	if bus.class != cls.Bus {
		violate("create", "class %q needs bus %s, got %s", cls.Name, cls.Bus.Name, bus.class.Name)
	}
	if m.hotplug && !bus.AllowHotplug {
		violate("create", "hot-plug of %q on bus %q which does not allow it", cls.Name, bus.Name)
	}

	d := &Device{
		model:   m,
		class:   cls,
		state:   StateCreated,
		parent:  bus,
		aliasID: -1,
	}
	d.props = property.NewBag(cls.Props, bus.class.Props)
	d.props.ApplyDefaults()
	if err := d.props.ApplyGlobals(m.globals, cls.Name, cls.Alias); err != nil {
		d.props.Release()
		return nil, fmt.Errorf("%s: %w", cls.Name, err)
	}
	if cls.New != nil {
		d.inst = cls.New()
	}

	bus.insert(d)
	if m.hotplug {
		d.hotplugged = true
		m.hotAdded = true
	}
	m.logger.Debug("device created", "driver", cls.Name, "bus", bus.Name, "hotplugged", d.hotplugged)
	m.emit(deviceEvent(EventCreated, d))
	return d, nil
}

// Initialize runs the class Init on a created device. On failure the device
// is freed and the returned error wraps ErrInitFailed. On success the class
// state description, if any, is registered and the device becomes
// Initialized.
func (m *Model) Initialize(d *Device) error {
	d.mustLive("initialize")
	if d.state != StateCreated {
		violate("initialize", "device %q is %s", d.class.Name, d.state)
	}

	if err := d.class.Driver.Init(d); err != nil {
		ev := deviceEvent(EventInitFailed, d)
		ev.Error = err.Error()
		m.emit(ev)
		m.logger.Warn("device init failed", "driver", d.class.Name, "id", d.ID, "error", err)
		d.Free()
		return fmt.Errorf("%w: %s: %w", ErrInitFailed, d.class.Name, err)
	}

	if vmsd := d.class.VMState; vmsd != nil {
		m.vmstates.Register(vmstate.AutoInstance, vmsd, d.stateOpaque(), d.aliasID, d.aliasRequiredForVersion)
		d.vmRegistered = true
	}
	d.state = StateInitialized
	m.emit(deviceEvent(EventInitialized, d))
	return nil
}

// MustInitialize is Initialize for the fixed machine topology, where no
// caller can recover. It panics on failure and must not be used for
// hot-plug.
func (m *Model) MustInitialize(d *Device) {
	name := d.class.Name
	if err := m.Initialize(d); err != nil {
		panic(fmt.Sprintf("qdev: initialization of device %s failed: %v", name, err))
	}
}

// AddRequest is a user request to add a device.
type AddRequest struct {
	Driver string `json:"driver" yaml:"driver"`

	// Bus is a bus path. Empty selects the first bus of the right class.
	Bus string `json:"bus,omitempty" yaml:"bus,omitempty"`

	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Props are applied in name order.
	Props map[string]string `json:"props,omitempty" yaml:"props,omitempty"`
}

// AddDevice creates, configures and initializes a device on behalf of a
// user. Any failure frees the partial device and leaves the tree as it was.
func (m *Model) AddDevice(req AddRequest) (*Device, error) {
	if req.Driver == "" {
		return nil, ErrMissingDriver
	}
	cls := m.reg.Find(nil, req.Driver)
	if cls == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, req.Driver)
	}
	if cls.NoUser {
		return nil, fmt.Errorf("%w: %q", ErrNotUserCreatable, req.Driver)
	}

	var bus *Bus
	if req.Bus != "" {
		b, err := m.FindBus(req.Bus)
		if err != nil {
			return nil, err
		}
		if b.class != cls.Bus {
			return nil, fmt.Errorf("%w: %s cannot sit on %s bus %q", ErrBadBusForDevice, cls.Name, b.class.Name, b.Name)
		}
		bus = b
	} else {
		bus = findBus(m.RootBus(), "", cls.Bus)
		if bus == nil {
			return nil, fmt.Errorf("%w: %s needs a %s bus", ErrNoBusForDevice, cls.Name, cls.Bus.Name)
		}
	}
	if m.hotplug && !bus.AllowHotplug {
		return nil, fmt.Errorf("%w: %q", ErrBusNoHotplug, bus.Name)
	}

	if req.ID != "" && m.FindDeviceByID(req.ID) != nil {
		m.logger.Warn("duplicate device id", "id", req.ID, "driver", cls.Name)
	}

	d, err := m.create(bus, cls)
	if err != nil {
		return nil, err
	}
	d.ID = req.ID
	for _, name := range slices.Sorted(maps.Keys(req.Props)) {
		if err := d.SetProp(name, req.Props[name]); err != nil {
			d.Free()
			return nil, err
		}
	}
	if err := m.Initialize(d); err != nil {
		return nil, err
	}

	d.opts = map[string]string{"driver": req.Driver}
	if req.Bus != "" {
		d.opts["bus"] = req.Bus
	}
	if req.ID != "" {
		d.opts["id"] = req.ID
	}
	maps.Copy(d.opts, req.Props)

	m.logger.Info("device added", "driver", cls.Name, "id", d.ID, "bus", bus.Name, "hotplugged", d.hotplugged)
	return d, nil
}

// MustAddDevice is AddDevice for the fixed machine topology. It panics on
// failure.
func (m *Model) MustAddDevice(req AddRequest) *Device {
	d, err := m.AddDevice(req)
	if err != nil {
		panic(fmt.Sprintf("qdev: adding %q: %v", req.Driver, err))
	}
	return d
}

// Unplug asks the device's class to remove it. The bus must allow hot-plug
// and the machine must be ready; a class without an Unplugger is a contract
// violation.
func (m *Model) Unplug(d *Device) error {
	d.mustLive("unplug")
	if !m.hotplug {
		return fmt.Errorf("%w: %s", ErrMachineNotReady, d.class.Name)
	}
	if !d.parent.AllowHotplug {
		return fmt.Errorf("%w: %q", ErrBusNoHotplug, d.parent.Name)
	}
	u, ok := d.class.Driver.(Unplugger)
	if !ok {
		violate("unplug", "class %q has no unplug handler", d.class.Name)
	}

	m.hotRemoved = true
	m.emit(deviceEvent(EventUnplugged, d))
	m.logger.Info("device unplugged", "driver", d.class.Name, "id", d.ID)
	return u.Unplug(d)
}

// DeviceDel unplugs the first device whose id is id.
func (m *Model) DeviceDel(id string) error {
	d := m.FindDeviceByID(id)
	if d == nil {
		return &PathError{Path: id, Elem: id, Err: ErrDeviceNotFound}
	}
	return m.Unplug(d)
}

// Free destroys the device. An initialized device first frees its child
// buses, drops its state registration and runs the class Exit. Every device
// is then detached from its bus and its properties released. The device
// must not be used afterwards.
func (d *Device) Free() {
	d.mustLive("free")
	m := d.model
	ev := deviceEvent(EventFreed, d)

	if d.state == StateInitialized {
		for len(d.buses) > 0 {
			d.buses[0].Free()
		}
		if d.vmRegistered {
			m.vmstates.Unregister(d.class.VMState, d.stateOpaque())
			d.vmRegistered = false
		}
		if ex, ok := d.class.Driver.(Exiter); ok {
			if err := ex.Exit(d); err != nil {
				m.logger.Warn("device exit failed", "driver", d.class.Name, "id", d.ID, "error", err)
			}
		}
		d.opts = nil
	}
	d.parent.remove(d)
	d.props.Release()
	d.freed = true

	m.logger.Debug("device freed", "driver", d.class.Name, "id", d.ID)
	m.emit(ev)
}

// ResetAll resets the device and everything below it.
func (d *Device) ResetAll() error {
	d.mustLive("reset")
	return WalkDevice(d, d.model.resetDevice, resetBus)
}

// ResetAll resets the bus and everything below it.
func (b *Bus) ResetAll() error {
	return WalkBus(b, b.model.resetDevice, resetBus)
}

// Reset resets the whole machine. A failure stops the walk; it is logged and
// returned, never retried.
func (m *Model) Reset() error {
	if err := m.RootBus().ResetAll(); err != nil {
		m.logger.Error("machine reset failed", "error", err)
		return err
	}
	return nil
}

func (m *Model) resetDevice(d *Device) error {
	if r, ok := d.class.Driver.(Resetter); ok {
		if err := r.Reset(d); err != nil {
			return fmt.Errorf("resetting %s: %w", d.Path(), err)
		}
	}
	m.emit(deviceEvent(EventReset, d))
	return nil
}

func resetBus(b *Bus) error {
	if r, ok := b.class.Ops.(BusResetter); ok {
		if err := r.ResetBus(b); err != nil {
			return fmt.Errorf("resetting bus %s: %w", b.Name, err)
		}
	}
	return nil
}
