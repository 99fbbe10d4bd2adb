package hw

import (
	"fmt"
	"io"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// pciSlots is the number of device slots on a PCI bus.
const pciSlots = 32

// autoSlot asks claimSlot for the lowest free slot.
const autoSlot = int32(-1)

// PCIBus is the PCI bus class.
var PCIBus = &qdev.BusClass{
	Name:  "PCI",
	Props: []property.Descriptor{{Name: "addr", Type: property.Int32, Default: autoSlot}},
	Ops:   pciOps{},
}

// I2CBus is the I2C bus class.
var I2CBus = &qdev.BusClass{
	Name:  "I2C",
	Props: []property.Descriptor{{Name: "address", Type: property.Hex8, Default: uint8(0x50)}},
	Ops:   i2cOps{},
}

type pciOps struct{}

func (pciOps) PrintDevice(w io.Writer, d *qdev.Device, indent int) {
	slot, _ := property.Value[int32](d.Props(), "addr")
	fmt.Fprintf(w, "%*spci slot %02x.0, class %s\n", indent, "", slot, d.Name())
}

func (pciOps) FirmwareName(d *qdev.Device) string {
	slot, _ := property.Value[int32](d.Props(), "addr")
	return fmt.Sprintf("%s@%x", d.Name(), slot)
}

type i2cOps struct{}

func (i2cOps) PrintDevice(w io.Writer, d *qdev.Device, indent int) {
	addr, _ := property.Value[uint8](d.Props(), "address")
	fmt.Fprintf(w, "%*si2c addr 0x%02x\n", indent, "", addr)
}

func (i2cOps) FirmwareName(d *qdev.Device) string {
	addr, _ := property.Value[uint8](d.Props(), "address")
	return fmt.Sprintf("%s@%x", d.Name(), addr)
}

// claimSlot resolves the "addr" property of a PCI device. An explicit slot
// must be free; autoSlot takes the lowest free one and stores it back.
func claimSlot(d *qdev.Device) error {
	want, err := property.Value[int32](d.Props(), "addr")
	if err != nil {
		return err
	}
	used := make(map[int32]bool)
	for _, s := range d.ParentBus().Children() {
		if s == d || s.State() != qdev.StateInitialized {
			continue
		}
		slot, _ := property.Value[int32](s.Props(), "addr")
		used[slot] = true
	}

	if want != autoSlot {
		if want < 0 || want >= pciSlots {
			return fmt.Errorf("%w: %d", ErrBadSlot, want)
		}
		if used[want] {
			return fmt.Errorf("%w: %02x", ErrSlotInUse, want)
		}
		return nil
	}
	for slot := range int32(pciSlots) {
		if !used[slot] {
			return d.SetPropValue("addr", slot)
		}
	}
	return fmt.Errorf("%w on %s", ErrNoFreeSlot, d.ParentBus().Name)
}

// claimAddress rejects an I2C device whose address is taken on its bus.
func claimAddress(d *qdev.Device) error {
	addr, err := property.Value[uint8](d.Props(), "address")
	if err != nil {
		return err
	}
	for _, s := range d.ParentBus().Children() {
		if s == d || s.State() != qdev.StateInitialized {
			continue
		}
		if other, _ := property.Value[uint8](s.Props(), "address"); other == addr {
			return fmt.Errorf("%w: 0x%02x", ErrAddressInUse, addr)
		}
	}
	return nil
}
