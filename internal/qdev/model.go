package qdev

import (
	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/vmstate"
)

// Logger defines the logging interface used by the device model.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// rootBusName is the name of the lazily created root bus.
const rootBusName = "main-system-bus"

// Model is the device model of one machine: the class registry, the global
// property overrides, the live device tree and its hot-plug state.
//
// A Model is not safe for concurrent use. All calls, including observer
// callbacks, happen on the caller's goroutine.
type Model struct {
	reg      *Registry
	globals  *property.Globals
	vmstates *vmstate.Registry
	root     *Bus

	// hotplug is set once the initial topology is complete.
	hotplug    bool
	hotAdded   bool
	hotRemoved bool

	observers []Observer
	logger    Logger
}

// NewModel creates a model over reg with an empty override table.
func NewModel(reg *Registry) *Model {
	return &Model{
		reg:      reg,
		globals:  property.NewGlobals(),
		vmstates: vmstate.NewRegistry(),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the model.
func (m *Model) SetLogger(logger Logger) {
	m.logger = logger
}

// SetGlobals replaces the global property override table.
func (m *Model) SetGlobals(g *property.Globals) {
	m.globals = g
}

// Globals returns the global property override table.
func (m *Model) Globals() *property.Globals { return m.globals }

// Registry returns the class registry.
func (m *Model) Registry() *Registry { return m.reg }

// VMState returns the registry of state entries of initialized devices.
func (m *Model) VMState() *vmstate.Registry { return m.vmstates }

// RootBus returns the root bus, creating it on first use.
func (m *Model) RootBus() *Bus {
	if m.root == nil {
		m.root = &Bus{Name: rootBusName, class: SystemBus, model: m}
	}
	return m.root
}

// MarkMachineReady ends machine construction. Devices created afterwards
// are hot-plugged and need a bus that allows it.
func (m *Model) MarkMachineReady() {
	if m.hotplug {
		return
	}
	m.hotplug = true
	m.logger.Info("machine ready")
	m.emit(Event{Type: EventMachineReady})
}

// MachineReady reports whether MarkMachineReady was called.
func (m *Model) MachineReady() bool { return m.hotplug }

// MachineModified reports whether any device was hot-added or hot-removed.
func (m *Model) MachineModified() bool {
	return m.hotAdded || m.hotRemoved
}
