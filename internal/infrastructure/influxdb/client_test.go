package influxdb

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/devmodel/internal/infrastructure/config"
)

// fakeWriter records points instead of sending them.
type fakeWriter struct {
	mu      sync.Mutex
	points  []*write.Point
	flushes int
}

func (f *fakeWriter) WritePoint(p *write.Point) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, p)
}

func (f *fakeWriter) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func (f *fakeWriter) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.points {
		out = append(out, write.PointToLineProtocol(p, time.Second))
	}
	return out
}

func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled: true,
		URL:     "http://127.0.0.1:8086",
		Org:     "devmodel",
		Bucket:  "metrics",
	}
}

func TestConnectDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	client, err := Connect(context.Background(), cfg)
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
	if client != nil {
		t.Error("Connect() returned a client while disabled")
	}
}

func TestWriteLifecycleEvent(t *testing.T) {
	w := &fakeWriter{}
	c := newClient(testConfig(), w)

	c.WriteLifecycleEvent("sample", "unplugged", "nic", "/pcihost/pci.0/nic.0", true)

	lines := w.lines()
	if len(lines) != 1 {
		t.Fatalf("points = %d, want 1", len(lines))
	}
	for _, part := range []string{
		"device_lifecycle,",
		"driver=nic",
		"event=unplugged",
		"machine=sample",
		"count=1i",
		`path="/pcihost/pci.0/nic.0"`,
		"hotplugged=true",
	} {
		if !strings.Contains(lines[0], part) {
			t.Errorf("line %q missing %q", lines[0], part)
		}
	}
}

func TestWriteTreeStats(t *testing.T) {
	w := &fakeWriter{}
	c := newClient(testConfig(), w)

	c.WriteTreeStats("sample", 6, 3, false)

	got := w.lines()[0]
	for _, part := range []string{"device_tree,machine=sample", "devices=6i", "buses=3i", "modified=false"} {
		if !strings.Contains(got, part) {
			t.Errorf("line %q missing %q", got, part)
		}
	}
}

func TestWritePointWithTime(t *testing.T) {
	w := &fakeWriter{}
	c := newClient(testConfig(), w)
	ts := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	c.WritePointWithTime("custom", map[string]string{"k": "v"}, map[string]any{"x": 1.5}, ts)

	want := "custom,k=v x=1.5 " + "1792324800\n"
	if got := w.lines()[0]; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestClose(t *testing.T) {
	w := &fakeWriter{}
	c := newClient(testConfig(), w)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.flushes != 1 {
		t.Errorf("flushes on close = %d, want 1", w.flushes)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}

	c.WriteTreeStats("sample", 1, 1, false)
	c.Flush()
	if len(w.points) != 0 || w.flushes != 1 {
		t.Errorf("closed client wrote %d points, %d flushes", len(w.points), w.flushes)
	}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestWriteErrorCallback(t *testing.T) {
	c := newClient(testConfig(), &fakeWriter{})

	got := make(chan error, 1)
	c.SetOnError(func(err error) { got <- err })

	errs := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		c.handleWriteErrors(errs)
		close(done)
	}()
	errs <- errors.New("bucket not found")
	close(errs)

	select {
	case err := <-got:
		if err.Error() != "bucket not found" {
			t.Errorf("callback error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}
	<-done
}
