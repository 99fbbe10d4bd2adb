package hw

import (
	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

const (
	ledOn    = 0x1
	ledBlink = 0x2
)

type ledState struct {
	flags      uint8
	brightness uint8
}

var ledVMState = &vmstate.Description{
	Name:      "led",
	VersionID: 1,
	Fields: []vmstate.Field{
		{Name: "flags", Flags: vmstate.Bitfield, Size: 1, BitMask: ledOn, BitName: "on",
			Get: func(o any) any { return o.(*ledState).flags }},
		{Name: "flags", Flags: vmstate.Bitfield, Size: 1, BitMask: ledBlink, BitName: "blink",
			Get: func(o any) any { return o.(*ledState).flags }},
		{Name: "brightness", Size: 1, Get: func(o any) any { return o.(*ledState).brightness }},
	},
}

var ledProps = []property.Descriptor{
	{Name: "color", Type: property.String, Default: "green"},
	{Name: "brightness", Type: property.Uint8, Default: uint8(255)},
	{Name: "blink", Type: property.Bool},
}

// led has one input line; a high level switches it on.
type led struct {
	qdev.SimpleUnplug
	pci bool
}

func (l led) Init(d *qdev.Device) error {
	if l.pci {
		if err := claimSlot(d); err != nil {
			return err
		}
	}
	s := d.Instance().(*ledState)
	s.brightness, _ = property.Value[uint8](d.Props(), "brightness")
	if blink, _ := property.Value[bool](d.Props(), "blink"); blink {
		s.flags |= ledBlink
	}
	d.InitGPIOIn(ledInput, 1)
	return nil
}

func (led) Reset(d *qdev.Device) error {
	d.Instance().(*ledState).flags &^= ledOn
	return nil
}

func ledInput(opaque any, _ int, level int) {
	s := opaque.(*qdev.Device).Instance().(*ledState)
	if level != 0 {
		s.flags |= ledOn
	} else {
		s.flags &^= ledOn
	}
}

func ledClasses() []*qdev.DeviceClass {
	return []*qdev.DeviceClass{
		{
			Name:    "led",
			Desc:    "status LED",
			Bus:     qdev.SystemBus,
			Props:   ledProps,
			Driver:  led{},
			VMState: ledVMState,
			New:     func() any { return &ledState{} },
		},
		{
			Name:    "pci-led",
			Alias:   "led",
			Desc:    "status LED on a PCI card",
			Bus:     PCIBus,
			Props:   ledProps,
			Driver:  led{pci: true},
			VMState: ledVMState,
			New:     func() any { return &ledState{} },
		},
	}
}
