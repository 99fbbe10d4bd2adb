package qdev

import (
	"fmt"
	"strconv"
	"strings"
)

// FindBus resolves a bus path.
//
// Paths are '/'-separated and alternate device and bus elements. An
// absolute path starts at the root bus. A relative path starts at the first
// bus anywhere in the tree whose name equals the first element; if there is
// none, the first element is tried as a device on the root bus. A device
// element "name.N" picks the N-th device of class name on its bus, newest
// first, and falls back to class aliases. A path ending on a device resolves
// to its only child bus.
func (m *Model) FindBus(path string) (*Bus, error) {
	segs := splitPath(path)
	root := m.RootBus()

	if strings.HasPrefix(path, "/") {
		return m.resolveFrom(path, root, segs)
	}
	if len(segs) == 0 {
		return nil, &PathError{Path: path, Elem: path, Err: ErrBusNotFound}
	}
	if b := findBus(root, segs[0], nil); b != nil {
		return m.resolveFrom(path, b, segs[1:])
	}
	if d := findDevice(root, segs[0]); d != nil {
		return m.resolveAfterDevice(path, d, segs[0], segs[1:])
	}
	return nil, &PathError{Path: path, Elem: segs[0], Err: ErrBusNotFound}
}

// resolveFrom resolves device/bus element pairs starting at bus.
func (m *Model) resolveFrom(path string, bus *Bus, segs []string) (*Bus, error) {
	if len(segs) == 0 {
		return bus, nil
	}
	d := findDevice(bus, segs[0])
	if d == nil {
		return nil, &PathError{
			Path:       path,
			Elem:       segs[0],
			Err:        ErrDeviceNotFound,
			Where:      bus.Name,
			Candidates: deviceNames(bus),
		}
	}
	return m.resolveAfterDevice(path, d, segs[0], segs[1:])
}

func (m *Model) resolveAfterDevice(path string, d *Device, elem string, segs []string) (*Bus, error) {
	if len(segs) == 0 {
		switch len(d.buses) {
		case 0:
			return nil, &PathError{Path: path, Elem: elem, Err: ErrDeviceNoBus}
		case 1:
			return d.buses[0], nil
		default:
			return nil, &PathError{
				Path:       path,
				Elem:       elem,
				Err:        ErrDeviceMultipleBuses,
				Where:      deviceLabel(d),
				Candidates: busNames(d),
			}
		}
	}
	b := d.ChildBus(segs[0])
	if b == nil {
		return nil, &PathError{
			Path:       path,
			Elem:       segs[0],
			Err:        ErrBusNotFound,
			Where:      deviceLabel(d),
			Candidates: busNames(d),
		}
	}
	return m.resolveFrom(path, b, segs[1:])
}

// FindDevice resolves a device path. A relative path is a device id; an
// absolute path is a bus path followed by a device element.
func (m *Model) FindDevice(path string) (*Device, error) {
	if !strings.HasPrefix(path, "/") {
		d := m.FindDeviceByID(path)
		if d == nil {
			return nil, &PathError{Path: path, Elem: path, Err: ErrDeviceNotFound}
		}
		return d, nil
	}

	i := strings.LastIndexByte(path, '/')
	busPath, name := path[:i+1], path[i+1:]
	bus, err := m.FindBus(busPath)
	if err != nil {
		return nil, err
	}
	d := findDevice(bus, name)
	if d == nil {
		return nil, &PathError{
			Path:       path,
			Elem:       name,
			Err:        ErrDeviceNotFound,
			Where:      bus.Name,
			Candidates: deviceNames(bus),
		}
	}
	return d, nil
}

// FindDeviceByID returns the first device in depth-first order whose id is
// id, or nil. Siblings are visited newest first, so among duplicate ids on
// one bus the most recently created device wins.
func (m *Model) FindDeviceByID(id string) *Device {
	if id == "" {
		return nil
	}
	d, _ := IterateDevices(m, nil, func(d *Device) (*Device, bool) {
		return d, d.ID == id
	})
	return d
}

// findDevice matches a device element on bus: class name first, then alias,
// counting same-named siblings newest first.
func findDevice(bus *Bus, elem string) *Device {
	name, instance := splitInstance(elem)

	n := 0
	for _, d := range bus.children {
		if d.class.Name == name {
			if n == instance {
				return d
			}
			n++
		}
	}
	n = 0
	for _, d := range bus.children {
		if d.class.Alias != "" && d.class.Alias == name {
			if n == instance {
				return d
			}
			n++
		}
	}
	return nil
}

// splitInstance splits "name.N" into name and N. Without a numeric suffix
// the whole element is the name and N is 0.
func splitInstance(elem string) (string, int) {
	i := strings.IndexByte(elem, '.')
	if i <= 0 || i == len(elem)-1 {
		return elem, 0
	}
	n, err := strconv.ParseUint(elem[i+1:], 10, 31)
	if err != nil {
		return elem, 0
	}
	return elem[:i], int(n)
}

func splitPath(path string) []string {
	var segs []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

func deviceNames(bus *Bus) []string {
	names := make([]string, 0, len(bus.children))
	for _, d := range bus.children {
		s := strconv.Quote(d.class.Name)
		if d.ID != "" {
			s += "/" + strconv.Quote(d.ID)
		}
		names = append(names, s)
	}
	return names
}

func busNames(d *Device) []string {
	names := make([]string, 0, len(d.buses))
	for _, b := range d.buses {
		names = append(names, strconv.Quote(b.Name))
	}
	return names
}

func deviceLabel(d *Device) string {
	if d.ID != "" {
		return d.ID
	}
	return fmt.Sprintf("%s.%d", d.class.Name, d.InstanceNo())
}
