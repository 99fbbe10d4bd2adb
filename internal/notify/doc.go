// Package notify fans device tree lifecycle events out to MQTT and
// InfluxDB.
//
// A Notifier is registered as a qdev.Observer. Each event is published on
// devmodel/{machine}/event/{type} and counted in the device_lifecycle
// measurement. Structural changes mark the tree dirty; Sync then publishes
// the retained tree snapshot and a device_tree point once per batch of
// changes rather than once per event.
//
//	qdev.Model ──DeviceEvent──► Notifier ──► Publisher (mqtt.Client)
//	                               │
//	                               └───────► MetricsWriter (influxdb.Client)
//
// Both sinks are optional; a Notifier with neither only tracks dirtiness.
package notify
