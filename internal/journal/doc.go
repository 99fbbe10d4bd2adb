// Package journal persists device tree lifecycle events to SQLite.
//
// A Recorder is registered as a qdev.Observer; every created, initialized,
// unplugged, freed and reset transition becomes a row of the device_events
// table, queryable newest first with List.
//
//	qdev.Model ──DeviceEvent──► Recorder ──Create──► SQLiteRepository ──► device_events
package journal
