package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/nerrad567/devmodel/internal/qdev"
)

type fakeRepo struct {
	entries []Entry
	err     error
}

func (f *fakeRepo) Create(_ context.Context, e *Entry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeRepo) List(context.Context, Filter) (*ListResult, error) {
	return &ListResult{Entries: f.entries, Total: len(f.entries)}, nil
}

func (f *fakeRepo) Prune(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeLogger struct {
	noopLogger
	errors int
}

func (l *fakeLogger) Error(string, ...any) { l.errors++ }

func newWidgetModel() *qdev.Model {
	reg := qdev.NewRegistry()
	reg.Register(&qdev.DeviceClass{
		Name:   "widget",
		Bus:    qdev.SystemBus,
		Driver: qdev.InitFunc(func(*qdev.Device) error { return nil }),
	})
	return qdev.NewModel(reg)
}

func TestRecorderObservesModel(t *testing.T) {
	repo := &fakeRepo{}
	m := newWidgetModel()
	m.AddObserver(NewRecorder(repo))

	d := m.MustCreate(nil, "widget")
	d.ID = "w1"
	m.MustInitialize(d)
	m.MarkMachineReady()

	want := []Entry{
		{Type: "created", Driver: "widget", Bus: "main-system-bus", Path: "/widget.0"},
		{Type: "initialized", Driver: "widget", DeviceID: "w1", Bus: "main-system-bus", Path: "/widget.0"},
		{Type: "machine-ready"},
	}
	opts := cmpopts.IgnoreFields(Entry{}, "OccurredAt")
	if diff := cmp.Diff(want, repo.entries, opts); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
	for _, e := range repo.entries {
		if e.OccurredAt.IsZero() {
			t.Errorf("%s entry has no timestamp", e.Type)
		}
	}
}

func TestRecorderLogsFailures(t *testing.T) {
	repo := &fakeRepo{err: errors.New("disk full")}
	log := &fakeLogger{}
	r := NewRecorder(repo)
	r.SetLogger(log)

	r.DeviceEvent(qdev.Event{Type: qdev.EventReset, Driver: "widget"})

	if log.errors != 1 {
		t.Errorf("logged %d errors, want 1", log.errors)
	}
}
