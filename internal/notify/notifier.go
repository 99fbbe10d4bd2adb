package notify

import (
	"strings"

	"github.com/nerrad567/devmodel/internal/infrastructure/mqtt"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// Publisher is the subset of mqtt.Client the notifier needs.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// MetricsWriter is the subset of influxdb.Client the notifier needs.
type MetricsWriter interface {
	WriteLifecycleEvent(machine, eventType, driver, path string, hotplugged bool)
	WriteTreeStats(machine string, devices, buses int, modified bool)
}

// Logger defines the logging interface used by the notifier.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// TreeSnapshot is the retained payload of the tree topic.
type TreeSnapshot struct {
	Machine  string `json:"machine"`
	Devices  int    `json:"devices"`
	Buses    int    `json:"buses"`
	Modified bool   `json:"modified"`
	Tree     string `json:"tree"`
}

// Notifier publishes the lifecycle of one machine's device tree.
//
// Like the model it observes, a Notifier is used from a single goroutine.
type Notifier struct {
	machine string
	model   *qdev.Model
	topics  mqtt.Topics

	pub     Publisher
	metrics MetricsWriter
	logger  Logger

	dirty bool
}

// New creates a notifier for model, publishing under machine's topics.
// Register it with model.AddObserver.
func New(model *qdev.Model, machine string) *Notifier {
	return &Notifier{
		machine: machine,
		model:   model,
		topics:  mqtt.Topics{Machine: machine},
		logger:  noopLogger{},
	}
}

// SetPublisher sets the MQTT sink.
func (n *Notifier) SetPublisher(p Publisher) { n.pub = p }

// SetMetrics sets the InfluxDB sink.
func (n *Notifier) SetMetrics(w MetricsWriter) { n.metrics = w }

// SetLogger sets the logger for publish failures.
func (n *Notifier) SetLogger(logger Logger) { n.logger = logger }

// DeviceEvent implements qdev.Observer.
func (n *Notifier) DeviceEvent(ev qdev.Event) {
	switch ev.Type {
	case qdev.EventInitialized, qdev.EventFreed, qdev.EventMachineReady:
		n.dirty = true
	}

	if n.pub != nil {
		if err := n.pub.PublishJSON(n.topics.Event(string(ev.Type)), ev, false); err != nil {
			n.logger.Warn("publishing device event failed",
				"event", ev.Type,
				"path", ev.Path,
				"error", err,
			)
		}
	}
	if n.metrics != nil {
		n.metrics.WriteLifecycleEvent(n.machine, string(ev.Type), ev.Driver, ev.Path, ev.Hotplugged)
	}
}

// Dirty reports whether the tree changed since the last Sync.
func (n *Notifier) Dirty() bool { return n.dirty }

// Sync publishes the tree snapshot and statistics if the tree changed since
// the last call.
func (n *Notifier) Sync() {
	if !n.dirty {
		return
	}
	n.dirty = false

	snap := n.Snapshot()
	if n.metrics != nil {
		n.metrics.WriteTreeStats(n.machine, snap.Devices, snap.Buses, snap.Modified)
	}
	if n.pub != nil {
		if err := n.pub.PublishJSON(n.topics.Tree(), snap, true); err != nil {
			n.logger.Warn("publishing device tree failed", "error", err)
			n.dirty = true
		}
	}
	n.logger.Debug("device tree synced", "devices", snap.Devices, "buses", snap.Buses)
}

// Snapshot renders the current tree and counts its devices and buses.
func (n *Notifier) Snapshot() TreeSnapshot {
	snap := TreeSnapshot{Machine: n.machine, Modified: n.model.MachineModified()}
	_ = qdev.WalkBus(n.model.RootBus(), //nolint:errcheck // Callbacks never fail
		func(*qdev.Device) error { snap.Devices++; return nil },
		func(*qdev.Bus) error { snap.Buses++; return nil },
	)

	var sb strings.Builder
	n.model.FprintTree(&sb)
	snap.Tree = sb.String()
	return snap
}
