// Package qdev is the device model: a registry of device classes, the live
// tree of devices and buses built from them, their lifecycle, path
// addressing and introspection.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────────┐
//	│                                Model                                 │
//	│                                                                      │
//	│  ┌──────────────┐   ┌──────────────────┐   ┌──────────────────────┐  │
//	│  │   Registry   │   │   Device tree    │   │   vmstate.Registry   │  │
//	│  │ (registry.go)│──▶│ (device.go,      │──▶│  state entries of    │  │
//	│  │              │   │  bus.go,         │   │  initialized devices │  │
//	│  │ • Register   │   │  lifecycle.go)   │   └──────────────────────┘  │
//	│  │ • Find       │   │                  │                             │
//	│  │ • All        │   │ • Create / Init  │   ┌──────────────────────┐  │
//	│  └──────────────┘   │ • Unplug / Free  │   │  property.Globals    │  │
//	│                     │ • Reset walks    │◀──│  override table      │  │
//	│                     └──────────────────┘   └──────────────────────┘  │
//	│                              │                                       │
//	└──────────────────────────────│───────────────────────────────────────┘
//	                               ▼
//	                      Observers (journal, notify)
//
// # Tree
//
// The root bus "main-system-bus" is created on first use and never freed.
// Every device sits on exactly one bus; a device may own child buses.
// Children are kept newest first: that order drives tree dumps and the
// "name.N" numbering of path elements.
//
// # Lifecycle
//
//	Create ──▶ Created ──Initialize──▶ Initialized ──Reset*──▶ Unplug ──▶ Free
//
// Free is the only way a device goes away. Initialize failure frees the
// device before returning. Devices created after MarkMachineReady are
// hot-plugged and need a bus with AllowHotplug.
//
// # Errors
//
// Bad user input is returned as an error wrapping one of the sentinels in
// errors.go. Breaking the programming contract (initializing twice,
// unplugging a class without an unplug handler, using a freed device)
// panics with a *ContractViolation.
//
// # Usage
//
//	reg := qdev.NewRegistry()
//	hw.RegisterAll(reg)
//
//	m := qdev.NewModel(reg)
//	hw.BuildBoard(m)
//	m.MarkMachineReady()
//
//	d, err := m.AddDevice(qdev.AddRequest{Driver: "led", Bus: "pci.0", ID: "status"})
//	if err != nil {
//	    return err
//	}
//	res, err := m.Show("status", false)
package qdev
