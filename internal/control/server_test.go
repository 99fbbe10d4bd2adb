package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/devmodel/internal/infrastructure/mqtt"
)

type fakeTransport struct {
	mu           sync.Mutex
	topic        string
	unsubscribed string
	handler      mqtt.MessageHandler
	subErr       error
	responses    chan published
}

type published struct {
	topic string
	resp  Response
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(chan published, 64)}
}

func (f *fakeTransport) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return f.subErr
	}
	f.topic = topic
	f.handler = handler
	return nil
}

func (f *fakeTransport) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = topic
	return nil
}

func (f *fakeTransport) PublishJSON(topic string, v any, _ bool) error {
	f.responses <- published{topic: topic, resp: v.(Response)}
	return nil
}

func (f *fakeTransport) await(t *testing.T) published {
	t.Helper()
	select {
	case p := <-f.responses:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no response published")
		return published{}
	}
}

func TestServer(t *testing.T) {
	m := newTestModel(t)
	loop := NewLoop(m, Options{})
	startLoop(t, loop)

	tr := newFakeTransport()
	srv := NewServer(loop, tr, mqtt.Topics{Machine: "sample"}, 1)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if tr.topic != "devmodel/sample/request/+" {
		t.Errorf("subscribed to %q", tr.topic)
	}

	err := tr.handler("devmodel/sample/request/device_add",
		[]byte(`{"id":"r1","device":{"driver":"nic","id":"net0","props":{"netdev":"hn0"}}}`))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	got := tr.await(t)
	if got.topic != "devmodel/sample/response/r1" {
		t.Errorf("response topic = %q", got.topic)
	}
	if !got.resp.OK || got.resp.Command != CmdDeviceAdd || got.resp.Path != "/pcihost.0/pci.0/nic.0" {
		t.Errorf("response = %+v", got.resp)
	}

	if err := tr.handler("devmodel/sample/request/device_del", []byte(`{"id":"r2","target":"nope"}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if got := tr.await(t); got.resp.OK || got.resp.Error == "" {
		t.Errorf("device_del nope = %+v", got.resp)
	}
	srv.Stop()
}

func TestServerRejectsMalformed(t *testing.T) {
	loop := NewLoop(newTestModel(t), Options{})
	tr := newFakeTransport()
	srv := NewServer(loop, tr, mqtt.Topics{Machine: "sample"}, 1)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	tests := []struct {
		name    string
		topic   string
		payload string
	}{
		{"other machine", "devmodel/other/request/qtree", `{"id":"x"}`},
		{"not json", "devmodel/sample/request/qtree", `qtree`},
		{"no id", "devmodel/sample/request/qtree", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tr.handler(tt.topic, []byte(tt.payload)); !errors.Is(err, ErrBadRequest) {
				t.Errorf("handler error = %v, want ErrBadRequest", err)
			}
		})
	}
	srv.Stop()
	if len(tr.responses) != 0 {
		t.Errorf("malformed requests produced %d responses", len(tr.responses))
	}
}

func TestServerStartError(t *testing.T) {
	tr := newFakeTransport()
	tr.subErr = mqtt.ErrNotConnected
	srv := NewServer(NewLoop(newTestModel(t), Options{}), tr, mqtt.Topics{Machine: "sample"}, 1)

	if err := srv.Start(context.Background()); !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("Start() error = %v, want ErrNotConnected", err)
	}
}

func TestServerStopWhileReceiving(t *testing.T) {
	loop := NewLoop(newTestModel(t), Options{QueueSize: 64})
	startLoop(t, loop)

	tr := newFakeTransport()
	srv := NewServer(loop, tr, mqtt.Topics{Machine: "sample"}, 1)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tr.handler("devmodel/sample/request/qtree", fmt.Appendf(nil, `{"id":"r%d"}`, i))
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, ErrServerStopped):
			default:
				t.Errorf("handler error = %v", err)
			}
		}()
	}
	srv.Stop()
	wg.Wait()

	// Every accepted request was answered before Stop returned.
	if got, want := len(tr.responses), int(accepted.Load()); got != want {
		t.Errorf("published %d responses for %d accepted requests", got, want)
	}
	if tr.unsubscribed != "devmodel/sample/request/+" {
		t.Errorf("unsubscribed from %q", tr.unsubscribed)
	}

	err := tr.handler("devmodel/sample/request/qtree", []byte(`{"id":"late"}`))
	if !errors.Is(err, ErrServerStopped) {
		t.Errorf("handler after Stop error = %v, want ErrServerStopped", err)
	}
	srv.Stop()
	if len(tr.responses) != int(accepted.Load()) {
		t.Error("request received after Stop was answered")
	}
}
