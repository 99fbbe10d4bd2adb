// Package hw provides the sample device classes and the fixed board the
// devmodel service builds at start-up.
//
// # Classes
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ main-system-bus (System)                                     │
//	│   pcihost ──► pci.0 (PCI, hot-pluggable)                     │
//	│                 nic       MAC/netdev/vectors, two I2C buses  │
//	│                 pci-led   alias "led"                        │
//	│   i2c-ctrl ──► i2c.0 (I2C)                                   │
//	│                 eeprom    256-byte store                     │
//	│   serial     receive FIFO, one interrupt line                │
//	│   led        gpio-in 1                                       │
//	└──────────────────────────────────────────────────────────────┘
//
// PCI devices take a slot from the "addr" bus property; -1 picks the lowest
// free slot. I2C devices are addressed by the "address" bus property.
//
// # Usage
//
//	reg := qdev.NewRegistry()
//	backends := hw.RegisterAll(reg)
//	backends.Netdevs.Add("hn0", tap)
//
//	m := qdev.NewModel(reg)
//	board := hw.BuildBoard(m)
//	// add user devices, then
//	m.MarkMachineReady()
package hw
