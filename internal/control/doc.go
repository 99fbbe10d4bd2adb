// Package control serializes remote commands against a device model.
//
// The device model is single-threaded. A Loop owns it: Run executes
// requests one at a time from a bounded queue, and any goroutine may
// Submit a request and wait (up to the request timeout) for the answer.
// A Server binds the loop to MQTT request and response topics.
//
// Commands:
//
//	device_add    add a device ({"device": {"driver", "bus", "id", "props"}})
//	device_del    unplug the device with id "target"
//	show          state of the device at path "target" ("full" disables truncation)
//	qtree         device tree dump
//	qdm           registered device types
//	device_help   properties of driver "target", or "?" for all types
//	system_reset  reset every device
package control
