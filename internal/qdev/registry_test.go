package qdev

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/devmodel/internal/property"
)

func TestRegistryFind(t *testing.T) {
	pci := &BusClass{Name: "PCI"}
	isa := &BusClass{Name: "ISA"}
	noop := InitFunc(func(*Device) error { return nil })

	first := &DeviceClass{Name: "uart", Bus: isa, Driver: noop}
	second := &DeviceClass{Name: "uart", Bus: isa, Driver: noop}
	pciUart := &DeviceClass{Name: "pci-uart", Alias: "uart", Bus: pci, Driver: noop}
	rtl := &DeviceClass{Name: "rtl8139", Alias: "nic", Bus: pci, Driver: noop}

	reg := NewRegistry()
	for _, c := range []*DeviceClass{first, second, pciUart, rtl} {
		reg.Register(c)
	}

	tests := []struct {
		name   string
		bus    *BusClass
		lookup string
		want   *DeviceClass
	}{
		{"first registered wins", nil, "uart", first},
		{"bus filter applies to names", pci, "uart", pciUart},
		{"alias fallback", nil, "nic", rtl},
		{"alias respects bus filter", isa, "nic", nil},
		{"exact name", pci, "rtl8139", rtl},
		{"unknown", nil, "e1000", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Find(tt.bus, tt.lookup); got != tt.want {
				t.Errorf("Find(%q) = %v, want %v", tt.lookup, got, tt.want)
			}
		})
	}
}

func TestRegistryRegisterContract(t *testing.T) {
	noop := InitFunc(func(*Device) error { return nil })
	bus := &BusClass{Name: "X"}

	tests := []struct {
		name string
		cls  *DeviceClass
	}{
		{"nil", nil},
		{"no name", &DeviceClass{Bus: bus, Driver: noop}},
		{"no bus", &DeviceClass{Name: "a", Driver: noop}},
		{"no driver", &DeviceClass{Name: "a", Bus: bus}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			mustViolate(t, func() { reg.Register(tt.cls) })
		})
	}

	t.Run("twice", func(t *testing.T) {
		reg := NewRegistry()
		cls := &DeviceClass{Name: "a", Bus: bus, Driver: noop}
		reg.Register(cls)
		mustViolate(t, func() { reg.Register(cls) })
	})

	t.Run("same name allowed", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register(&DeviceClass{Name: "a", Bus: bus, Driver: noop})
		reg.Register(&DeviceClass{Name: "a", Bus: bus, Driver: noop})
		if reg.Len() != 2 {
			t.Errorf("Len() = %d, want 2", reg.Len())
		}
	})
}

func TestRegistryAllRestartable(t *testing.T) {
	e := newTestEnv(t)
	count := func() int {
		n := 0
		for range e.reg.All() {
			n++
		}
		return n
	}
	if a, b := count(), count(); a != 7 || b != 7 {
		t.Errorf("All() yielded %d then %d, want 7 twice", a, b)
	}

	// Early exit must not disturb later iterations.
	for c := range e.reg.All() {
		if c.Name == "dual" {
			break
		}
	}
	if n := count(); n != 7 {
		t.Errorf("All() after break yielded %d, want 7", n)
	}
}

func TestFprintTypes(t *testing.T) {
	e := newTestEnv(t)
	var sb strings.Builder
	e.reg.FprintTypes(&sb)

	lines := strings.Split(strings.TrimSuffix(sb.String(), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), sb.String())
	}
	wantLeaf := `name "leaf", bus TEST, alias "node", desc "test leaf"`
	if lines[2] != wantLeaf {
		t.Errorf("leaf line = %q, want %q", lines[2], wantLeaf)
	}
	if lines[4] != `name "hidden", bus TEST, no-user` {
		t.Errorf("hidden line = %q", lines[4])
	}
}

func TestFprintDeviceHelp(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&DeviceClass{
		Name: "nic",
		Bus:  SystemBus,
		Props: []property.Descriptor{
			{Name: "mac", Type: property.MAC},
			{Name: "vectors", Type: property.Uint32},
			{Name: "dma", Type: property.Pointer},
		},
		Driver: InitFunc(func(*Device) error { return nil }),
	})
	reg.Register(&DeviceClass{
		Name:   "secret",
		Bus:    SystemBus,
		NoUser: true,
		Driver: InitFunc(func(*Device) error { return nil }),
	})

	var sb strings.Builder
	if err := reg.FprintDeviceHelp(&sb, "nic"); err != nil {
		t.Fatalf("FprintDeviceHelp() error = %v", err)
	}
	want := "nic.mac=macaddr\nnic.vectors=uint32\n"
	if sb.String() != want {
		t.Errorf("help = %q, want %q", sb.String(), want)
	}

	sb.Reset()
	if err := reg.FprintDeviceHelp(&sb, "?"); err != nil {
		t.Fatalf("FprintDeviceHelp(?) error = %v", err)
	}
	if strings.Contains(sb.String(), "secret") {
		t.Errorf("no-user class listed: %q", sb.String())
	}

	if err := reg.FprintDeviceHelp(&sb, "e1000"); !errors.Is(err, ErrUnknownType) {
		t.Errorf("FprintDeviceHelp(e1000) error = %v, want ErrUnknownType", err)
	}
}
