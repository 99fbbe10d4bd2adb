package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	// MeasurementLifecycle counts device tree transitions.
	MeasurementLifecycle = "device_lifecycle"

	// MeasurementTree samples the size of the device tree.
	MeasurementTree = "device_tree"
)

// WriteLifecycleEvent records one lifecycle transition of a device.
//
// Tags carry the low-cardinality dimensions (machine, event type, driver);
// the device path goes into a field.
//
// Example:
//
//	client.WriteLifecycleEvent("sample", "unplugged", "nic", "/pcihost/pci.0/nic.0", true)
func (c *Client) WriteLifecycleEvent(machine, eventType, driver, path string, hotplugged bool) {
	c.WritePoint(MeasurementLifecycle,
		map[string]string{
			"machine": machine,
			"event":   eventType,
			"driver":  driver,
		},
		map[string]any{
			"count":      1,
			"path":       path,
			"hotplugged": hotplugged,
		},
	)
}

// WriteTreeStats records the current shape of the device tree.
func (c *Client) WriteTreeStats(machine string, devices, buses int, modified bool) {
	c.WritePoint(MeasurementTree,
		map[string]string{"machine": machine},
		map[string]any{
			"devices":  devices,
			"buses":    buses,
			"modified": modified,
		},
	)
}

// WritePoint writes a point stamped now.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a point with an explicit timestamp. Points are
// dropped while the client is closed.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
