// Package machine loads a machine topology description and brings the
// device model from an empty tree to a running machine.
//
// A topology is a YAML document:
//
//	globals:
//	  - driver: nic
//	    property: vectors
//	    value: "4"
//	devices:
//	  - driver: nic
//	    id: net0
//	    bus: pci.0
//	    props:
//	      netdev: hn0
//
// Boot applies the globals, builds the fixed board, adds the listed devices
// in order with AddDevice and finally marks the machine ready. Devices added
// afterwards are hot-plugged.
package machine
