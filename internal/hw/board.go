package hw

import "github.com/nerrad567/devmodel/internal/qdev"

// RegisterAll registers every sample class with reg and returns the backend
// tables the NIC class resolves "netdev" and "vlan" against.
func RegisterAll(reg *qdev.Registry) *Backends {
	b := newBackends()
	reg.Register(&qdev.DeviceClass{
		Name:   "pcihost",
		Desc:   "PCI host bridge",
		Bus:    qdev.SystemBus,
		NoUser: true,
		Driver: pciHost{},
	})
	reg.Register(nicClass(b))
	for _, c := range ledClasses() {
		reg.Register(c)
	}
	for _, c := range i2cClasses() {
		reg.Register(c)
	}
	reg.Register(serialClass())
	return b
}

// Board is the fixed topology built by BuildBoard.
type Board struct {
	Host   *qdev.Device
	PCI    *qdev.Bus
	I2C    *qdev.Bus
	SPD    *qdev.Device
	Serial *qdev.Device
	LED    *qdev.Device
}

// BuildBoard creates the fixed devices of the sample machine: a PCI host
// bridge, an I2C controller with its configuration EEPROM, a serial port
// and a status LED driven by the serial interrupt line.
//
// The board cannot come up without these devices, so failures panic.
func BuildBoard(m *qdev.Model) *Board {
	b := &Board{}

	b.Host = m.MustCreate(nil, "pcihost")
	m.MustInitialize(b.Host)
	b.PCI = b.Host.ChildBuses()[0]

	ctrl := m.MustCreate(nil, "i2c-ctrl")
	m.MustInitialize(ctrl)
	b.I2C = ctrl.ChildBuses()[0]

	b.SPD = m.MustCreate(b.I2C, "eeprom")
	b.SPD.ID = "spd"
	mustSet(b.SPD, "address", "0x50")
	mustSet(b.SPD, "contents", "devmodel sample board")
	m.MustInitialize(b.SPD)

	b.Serial = m.MustCreate(nil, "serial")
	b.Serial.ID = "serial0"
	mustSet(b.Serial, "chardev", "stdio")
	m.MustInitialize(b.Serial)

	b.LED = m.MustCreate(nil, "led")
	b.LED.ID = "status"
	m.MustInitialize(b.LED)

	b.Serial.ConnectGPIOOut(0, b.LED.GPIOIn(0))
	return b
}

func mustSet(d *qdev.Device, name, value string) {
	if err := d.SetProp(name, value); err != nil {
		panic(err)
	}
}
