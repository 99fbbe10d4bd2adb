package hw

import (
	"fmt"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

// lsrIdle is the line status of an empty transmitter.
const lsrIdle = 0x60

type serialState struct {
	lsr  uint8
	fifo []byte
	irq  []*qdev.IRQ
}

// receive queues input and raises the interrupt line.
func (s *serialState) receive(data []byte) {
	s.fifo = append(s.fifo, data...)
	s.lsr |= 0x01
	s.irq[0].Raise()
}

var serialVMState = &vmstate.Description{
	Name:      "serial",
	VersionID: 3,
	Fields: []vmstate.Field{
		{Name: "lsr", Size: 1, Get: func(o any) any { return o.(*serialState).lsr }},
		{Name: "fifo", Flags: vmstate.Queue, Size: 16,
			Custom: func(v any) string { return fmt.Sprintf("%d bytes queued", len(v.([]byte))) },
			Get:    func(o any) any { return o.(*serialState).fifo }},
	},
}

type serial struct{}

func (serial) Init(d *qdev.Device) error {
	s := d.Instance().(*serialState)
	s.lsr = lsrIdle
	d.InitGPIOOut(s.irq)
	return nil
}

func (serial) Reset(d *qdev.Device) error {
	s := d.Instance().(*serialState)
	s.fifo = nil
	s.lsr = lsrIdle
	s.irq[0].Lower()
	return nil
}

func serialClass() *qdev.DeviceClass {
	return &qdev.DeviceClass{
		Name:    "serial",
		Desc:    "16550 UART",
		Bus:     qdev.SystemBus,
		Props:   []property.Descriptor{{Name: "chardev", Type: property.String}},
		Driver:  serial{},
		VMState: serialVMState,
		New:     func() any { return &serialState{irq: make([]*qdev.IRQ, 1)} },
	}
}
