package qdev

import "time"

// EventType names a lifecycle transition.
type EventType string

// Lifecycle events.
const (
	EventCreated      EventType = "created"
	EventInitialized  EventType = "initialized"
	EventInitFailed   EventType = "init-failed"
	EventUnplugged    EventType = "unplugged"
	EventFreed        EventType = "freed"
	EventReset        EventType = "reset"
	EventMachineReady EventType = "machine-ready"
)

// Event describes one lifecycle transition.
type Event struct {
	Type       EventType `json:"type"`
	Driver     string    `json:"driver,omitempty"`
	ID         string    `json:"id,omitempty"`
	Bus        string    `json:"bus,omitempty"`
	Path       string    `json:"path,omitempty"`
	Hotplugged bool      `json:"hotplugged,omitempty"`
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

// Observer receives lifecycle events synchronously.
type Observer interface {
	DeviceEvent(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// DeviceEvent implements Observer.
func (f ObserverFunc) DeviceEvent(ev Event) { f(ev) }

// AddObserver registers o for every subsequent event.
func (m *Model) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

func (m *Model) emit(ev Event) {
	if len(m.observers) == 0 {
		return
	}
	ev.Time = time.Now().UTC()
	for _, o := range m.observers {
		o.DeviceEvent(ev)
	}
}

func deviceEvent(t EventType, d *Device) Event {
	return Event{
		Type:       t,
		Driver:     d.class.Name,
		ID:         d.ID,
		Bus:        d.parent.Name,
		Path:       d.Path(),
		Hotplugged: d.hotplugged,
	}
}
