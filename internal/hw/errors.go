package hw

import "errors"

// Domain-specific errors for the sample hardware.
var (
	// ErrSlotInUse is returned when a PCI device asks for an occupied slot.
	ErrSlotInUse = errors.New("hw: pci slot in use")

	// ErrBadSlot is returned for a slot number outside the bus.
	ErrBadSlot = errors.New("hw: pci slot out of range")

	// ErrNoFreeSlot is returned when a PCI bus has no free slot left.
	ErrNoFreeSlot = errors.New("hw: no free pci slot")

	// ErrAddressInUse is returned when two I2C devices share an address.
	ErrAddressInUse = errors.New("hw: i2c address in use")

	// ErrContentsTooLarge is returned when eeprom contents exceed its size.
	ErrContentsTooLarge = errors.New("hw: eeprom contents too large")
)
