package journal

import (
	"context"
	"time"

	"github.com/nerrad567/devmodel/internal/qdev"
)

// writeTimeout bounds one journal insert.
const writeTimeout = 2 * time.Second

// Logger defines the logging interface used by the recorder.
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

// Recorder writes every lifecycle event of a model to a Repository.
//
// It implements qdev.Observer. A failed insert is logged and dropped; the
// device tree never waits on or fails because of the journal.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a recorder writing to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, logger: noopLogger{}}
}

// SetLogger sets the logger for insert failures.
func (r *Recorder) SetLogger(logger Logger) {
	r.logger = logger
}

// DeviceEvent implements qdev.Observer.
func (r *Recorder) DeviceEvent(ev qdev.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	e := FromEvent(ev)
	if err := r.repo.Create(ctx, e); err != nil {
		r.logger.Error("journal write failed",
			"event", ev.Type,
			"path", ev.Path,
			"error", err,
		)
	}
}

// FromEvent converts a lifecycle event to an unsaved entry.
func FromEvent(ev qdev.Event) *Entry {
	return &Entry{
		Type:       string(ev.Type),
		Driver:     ev.Driver,
		DeviceID:   ev.ID,
		Bus:        ev.Bus,
		Path:       ev.Path,
		Hotplugged: ev.Hotplugged,
		Error:      ev.Error,
		OccurredAt: ev.Time,
	}
}
