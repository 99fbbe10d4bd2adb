package qdev

import "iter"

// DeviceFunc is called for each device of a walk.
type DeviceFunc func(d *Device) error

// BusFunc is called for each bus of a walk.
type BusFunc func(b *Bus) error

// WalkDevice visits d, then the buses below it depth-first. Each device is
// visited before its buses and each bus before its devices. Either function
// may be nil. The first error stops the walk and is returned.
func WalkDevice(d *Device, devFn DeviceFunc, busFn BusFunc) error {
	if devFn != nil {
		if err := devFn(d); err != nil {
			return err
		}
	}
	for _, b := range d.ChildBuses() {
		if err := WalkBus(b, devFn, busFn); err != nil {
			return err
		}
	}
	return nil
}

// WalkBus visits b, then the devices below it. See WalkDevice.
func WalkBus(b *Bus, devFn DeviceFunc, busFn BusFunc) error {
	if busFn != nil {
		if err := busFn(b); err != nil {
			return err
		}
	}
	for _, d := range b.Children() {
		if err := WalkDevice(d, devFn, busFn); err != nil {
			return err
		}
	}
	return nil
}

// Devices yields every device below b depth-first: each device, then the
// devices on its child buses.
func (b *Bus) Devices() iter.Seq[*Device] {
	return func(yield func(*Device) bool) {
		b.devices(yield)
	}
}

func (b *Bus) devices(yield func(*Device) bool) bool {
	for _, d := range b.children {
		if !yield(d) {
			return false
		}
		for _, c := range d.buses {
			if !c.devices(yield) {
				return false
			}
		}
	}
	return true
}

// IterateDevices calls fn on every device below b (nil means the root bus)
// in Devices order and returns the first result fn accepts.
func IterateDevices[T any](m *Model, b *Bus, fn func(d *Device) (T, bool)) (T, bool) {
	if b == nil {
		b = m.RootBus()
	}
	for d := range b.Devices() {
		if v, ok := fn(d); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// findBus searches b and the buses below it depth-first for a bus called
// name (empty matches any) of class cls (nil matches any).
func findBus(b *Bus, name string, cls *BusClass) *Bus {
	if (name == "" || b.Name == name) && (cls == nil || b.class == cls) {
		return b
	}
	for _, d := range b.children {
		for _, c := range d.buses {
			if found := findBus(c, name, cls); found != nil {
				return found
			}
		}
	}
	return nil
}
