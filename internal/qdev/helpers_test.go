package qdev

import (
	"errors"
	"testing"

	"github.com/nerrad567/devmodel/internal/property"
)

// recorder collects callback names in call order.
type recorder struct {
	calls []string
}

func (r *recorder) add(s string) {
	if r != nil {
		r.calls = append(r.calls, s)
	}
}

func label(d *Device) string {
	if d.ID != "" {
		return d.ID
	}
	return d.class.Name
}

// testDriver is a hot-unpluggable driver with optional hooks.
type testDriver struct {
	SimpleUnplug
	init     func(d *Device) error
	rec      *recorder
	resetErr map[string]error
}

func (t *testDriver) Init(d *Device) error {
	t.rec.add("init " + label(d))
	if t.init != nil {
		return t.init(d)
	}
	return nil
}

func (t *testDriver) Exit(d *Device) error {
	t.rec.add("exit " + label(d))
	return nil
}

func (t *testDriver) Reset(d *Device) error {
	t.rec.add("reset " + label(d))
	return t.resetErr[label(d)]
}

type testBusOps struct {
	rec *recorder
}

func (o *testBusOps) ResetBus(b *Bus) error {
	o.rec.add("bus " + b.Name)
	return nil
}

func (o *testBusOps) FirmwareName(d *Device) string {
	return d.class.Name + "@" + d.ID
}

// testEnv is a registry with a small set of classes:
//
//	bridge  (System) owns one TEST bus, auto-named
//	dual    (System) owns two TEST buses
//	leaf    (TEST, alias "node") level uint32 default 5
//	fixed   (TEST) no unplug handler
//	hidden  (TEST) no-user
//	broken  (TEST) Init always fails
//	hub     (TEST) owns one hot-pluggable TEST bus
type testEnv struct {
	reg     *Registry
	m       *Model
	rec     *recorder
	testBus *BusClass
}

var errBroken = errors.New("hardware on fire")

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rec := &recorder{}
	testBus := &BusClass{
		Name:  "TEST",
		Props: []property.Descriptor{{Name: "addr", Type: property.Hex8}},
		Ops:   &testBusOps{rec: rec},
	}

	reg := NewRegistry()
	reg.Register(&DeviceClass{
		Name: "bridge",
		Bus:  SystemBus,
		Driver: &testDriver{rec: rec, init: func(d *Device) error {
			b := d.NewChildBus(testBus, "")
			b.AllowHotplug = true
			return nil
		}},
	})
	reg.Register(&DeviceClass{
		Name: "dual",
		Bus:  SystemBus,
		Driver: &testDriver{rec: rec, init: func(d *Device) error {
			d.NewChildBus(testBus, d.ID+".bus0")
			d.NewChildBus(testBus, d.ID+".bus1")
			return nil
		}},
	})
	reg.Register(&DeviceClass{
		Name:   "leaf",
		Alias:  "node",
		Desc:   "test leaf",
		Bus:    testBus,
		Props:  []property.Descriptor{{Name: "level", Type: property.Uint32, Default: uint32(5)}},
		Driver: &testDriver{rec: rec},
	})
	reg.Register(&DeviceClass{
		Name:   "fixed",
		Bus:    testBus,
		Driver: InitFunc(func(*Device) error { return nil }),
	})
	reg.Register(&DeviceClass{
		Name:   "hidden",
		Bus:    testBus,
		NoUser: true,
		Driver: &testDriver{rec: rec},
	})
	reg.Register(&DeviceClass{
		Name:   "broken",
		Bus:    testBus,
		Driver: &testDriver{rec: rec, init: func(*Device) error { return errBroken }},
	})

	reg.Register(&DeviceClass{
		Name: "hub",
		Bus:  testBus,
		Driver: &testDriver{rec: rec, init: func(d *Device) error {
			d.NewChildBus(testBus, "").AllowHotplug = true
			return nil
		}},
	})

	return &testEnv{reg: reg, m: NewModel(reg), rec: rec, testBus: testBus}
}

// bridge creates an initialized bridge and returns its child bus.
func (e *testEnv) bridge(t *testing.T, id string) *Bus {
	t.Helper()
	d := e.m.MustCreate(nil, "bridge")
	d.ID = id
	e.m.MustInitialize(d)
	return d.ChildBuses()[0]
}

// leaf creates an initialized leaf on bus.
func (e *testEnv) leaf(t *testing.T, bus *Bus, id string) *Device {
	t.Helper()
	d := e.m.MustCreate(bus, "leaf")
	d.ID = id
	e.m.MustInitialize(d)
	return d
}

func mustViolate(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*ContractViolation); !ok {
			t.Fatalf("recovered %v, want *ContractViolation", r)
		}
	}()
	fn()
}

func contains(list []*Device, d *Device) bool {
	for _, c := range list {
		if c == d {
			return true
		}
	}
	return false
}
