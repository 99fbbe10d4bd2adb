// Package vmstate turns live device state into a generic, self-describing
// tree for display and remote inspection.
//
// A Description declares the persisted fields of a device class. Each Field
// binds to the instance through a typed accessor (Get) instead of a raw
// memory offset; Walk evaluates the accessors in declaration order and
// produces Nodes holding integers, booleans, byte buffers, nested structs or
// custom text.
//
// Descriptions are a compile-time contract between a device class and this
// package. Inconsistencies (an accessor returning the wrong width, a count
// field of the wrong type, a nil pointer where one is required) are reported
// by panicking with a *ContractViolation, never as errors.
//
// Example:
//
//	desc := &vmstate.Description{
//		Name:      "led",
//		VersionID: 1,
//		Fields: []vmstate.Field{
//			{Name: "level", Size: 1, Get: func(o any) any { return o.(*ledState).level }},
//		},
//	}
//	nodes, size := vmstate.Walk(desc, st, vmstate.Options{})
//	vmstate.Fprint(os.Stdout, nodes)
package vmstate
