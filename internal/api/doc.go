// Package api provides the HTTP API and WebSocket event stream for a running
// devmodel machine.
//
// Every request that touches the device tree is turned into a
// control.Request and executed on the control loop, so HTTP handlers never
// use the model directly. Lifecycle events reach WebSocket clients through
// the Hub, which observes the model.
//
//	GET    /api/v1/health                no auth
//	GET    /api/v1/qtree                 tree:read     monitor-style tree
//	GET    /api/v1/types                 tree:read     registered classes
//	GET    /api/v1/types/{driver}        tree:read     driver properties
//	GET    /api/v1/show?path=...&full=1  tree:read     device state
//	POST   /api/v1/devices               device:manage hot-plug
//	DELETE /api/v1/devices/{id}          device:manage unplug
//	POST   /api/v1/reset                 machine:reset system reset
//	GET    /api/v1/events                journal:read  recorded events
//	GET    /api/v1/ws?token=...          events:stream live events
//
// WebSocket clients subscribe to channels named device.<event type>, or to
// device.* for everything, either with the channels query parameter or with
// JSON frames:
//
//	-> {"type":"subscribe","id":"1","channels":["device.created"]}
//	<- {"type":"ack","id":"1","channels":["device.created"]}
//	<- {"type":"event","channel":"device.created","event":{...}}
//
// Unknown channels are rejected with an error frame, or with 400 before the
// upgrade.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
