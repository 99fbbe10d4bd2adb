package hw

import (
	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

// pciHost owns the hot-pluggable PCI bus.
type pciHost struct{}

func (pciHost) Init(d *qdev.Device) error {
	d.NewChildBus(PCIBus, "").AllowHotplug = true
	return nil
}

// Backends holds the name tables NIC properties resolve against.
type Backends struct {
	Netdevs *property.NameTable
	VLANs   *property.NameTable
}

func newBackends() *Backends {
	return &Backends{
		Netdevs: property.NewNameTable("netdev"),
		VLANs:   property.NewNameTable("vlan"),
	}
}

const defaultVectors = uint32(3)

type nicRegs struct {
	ctrl   uint32
	status uint32
}

type nicState struct {
	mac   property.MACAddr
	rxLen int32
	rx    []byte
	regs  nicRegs
}

func (s *nicState) receive(frame []byte) {
	s.rx = append(s.rx[:0], frame...)
	s.rxLen = int32(len(frame))
	s.regs.status |= 1
}

var nicRegsVMState = &vmstate.Description{
	Name:      "nic/regs",
	VersionID: 1,
	Fields: []vmstate.Field{
		{Name: "ctrl", Size: 4, Get: func(o any) any { return o.(*nicRegs).ctrl }},
		{Name: "status", Size: 4, Get: func(o any) any { return o.(*nicRegs).status }},
	},
}

var nicVMState = &vmstate.Description{
	Name:             "nic",
	VersionID:        2,
	MinimumVersionID: 1,
	Fields: []vmstate.Field{
		{Name: "mac", Flags: vmstate.Buffer, Size: 6, Get: func(o any) any { return o.(*nicState).mac }},
		{Name: "rx_len", Size: 4, Get: func(o any) any { return o.(*nicState).rxLen }},
		{Name: "rx", Flags: vmstate.VBuffer, SizeField: "rx_len",
			Get: func(o any) any { return o.(*nicState).rx }},
		{Name: "regs", Flags: vmstate.Struct, Size: 8, Sub: nicRegsVMState,
			Get: func(o any) any { return &o.(*nicState).regs }},
	},
}

// nic is a PCI network card with two management buses.
type nic struct {
	qdev.SimpleUnplug
}

func (nic) Init(d *qdev.Device) error {
	if err := claimSlot(d); err != nil {
		return err
	}
	s := d.Instance().(*nicState)
	mac, err := property.Value[property.MACAddr](d.Props(), "mac")
	if err != nil {
		return err
	}
	if mac == (property.MACAddr{}) {
		slot, _ := property.Value[int32](d.Props(), "addr")
		mac = property.MACAddr{0x52, 0x54, 0x00, 0x12, 0x34, 0x56 + byte(slot)}
		if err := d.SetPropValue("mac", mac); err != nil {
			return err
		}
	}
	s.mac = mac
	s.regs.ctrl = 1

	d.NewChildBus(I2CBus, "")
	d.NewChildBus(I2CBus, "")
	return nil
}

func (nic) Reset(d *qdev.Device) error {
	s := d.Instance().(*nicState)
	s.rx = s.rx[:0]
	s.rxLen = 0
	s.regs = nicRegs{ctrl: 1}
	return nil
}

func nicClass(b *Backends) *qdev.DeviceClass {
	return &qdev.DeviceClass{
		Name: "nic",
		Desc: "PCI network card",
		Bus:  PCIBus,
		Props: []property.Descriptor{
			{Name: "mac", Type: property.MAC},
			{Name: "vlan", Type: property.NewRefType("vlan", b.VLANs)},
			{Name: "netdev", Type: property.NewRefType("netdev", b.Netdevs)},
			{Name: "vectors", Type: property.Uint32, Default: defaultVectors},
		},
		Driver:  nic{},
		VMState: nicVMState,
		New:     func() any { return &nicState{} },
	}
}
