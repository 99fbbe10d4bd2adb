package qdev

import "github.com/nerrad567/devmodel/internal/property"

// VectorsUnspecified leaves the "vectors" property of a NIC alone.
const VectorsUnspecified = -1

// NICInfo is the network configuration handed to a NIC device.
type NICInfo struct {
	MAC property.MACAddr

	// VLAN and Netdev name entries of the corresponding name tables; empty
	// leaves the property unset.
	VLAN   string
	Netdev string

	Vectors int
}

// SetNICProperties applies nd to the device's "mac", "vlan", "netdev" and
// "vectors" properties. "vectors" is only set when the class declares it.
func (d *Device) SetNICProperties(nd NICInfo) error {
	if err := d.SetPropValue("mac", nd.MAC); err != nil {
		return err
	}
	if nd.VLAN != "" {
		if err := d.SetProp("vlan", nd.VLAN); err != nil {
			return err
		}
	}
	if nd.Netdev != "" {
		if err := d.SetProp("netdev", nd.Netdev); err != nil {
			return err
		}
	}
	if nd.Vectors != VectorsUnspecified && d.props.Has("vectors") {
		if err := d.SetPropValue("vectors", uint32(nd.Vectors)); err != nil {
			return err
		}
	}
	return nil
}
