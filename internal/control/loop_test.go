package control

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nerrad567/devmodel/internal/hw"
	"github.com/nerrad567/devmodel/internal/qdev"
)

func newTestModel(t *testing.T) *qdev.Model {
	t.Helper()
	reg := qdev.NewRegistry()
	backends := hw.RegisterAll(reg)
	backends.Netdevs.Add("hn0", "tap0")
	m := qdev.NewModel(reg)
	hw.BuildBoard(m)
	m.MarkMachineReady()
	return m
}

// startLoop runs l until the test ends.
func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
}

func TestExecute(t *testing.T) {
	m := newTestModel(t)
	l := NewLoop(m, Options{})

	addNIC := &qdev.AddRequest{Driver: "nic", ID: "net0", Props: map[string]string{"netdev": "hn0"}}

	tests := []struct {
		name       string
		req        Request
		wantOK     bool
		wantErr    string
		wantCode   string
		wantOutput string
		wantPath   string
	}{
		{name: "add", req: Request{ID: "1", Command: CmdDeviceAdd, Device: addNIC}, wantOK: true, wantPath: "/pcihost.0/pci.0/nic.0"},
		{name: "add unknown", req: Request{ID: "2", Command: CmdDeviceAdd, Device: &qdev.AddRequest{Driver: "e1000"}}, wantErr: "unknown", wantCode: CodeNotFound},
		{name: "add without device", req: Request{ID: "3", Command: CmdDeviceAdd}, wantErr: "needs a device", wantCode: CodeInvalid},
		{name: "show", req: Request{ID: "4", Command: CmdShow, Target: "net0"}, wantOK: true, wantOutput: `dev: nic.0, id "net0", version 2`},
		{name: "show missing", req: Request{ID: "5", Command: CmdShow, Target: "ghost"}, wantErr: "not found", wantCode: CodeNotFound},
		{name: "qtree", req: Request{ID: "6", Command: CmdQTree}, wantOK: true, wantOutput: `dev: nic, id "net0"`},
		{name: "qdm", req: Request{ID: "7", Command: CmdQDM}, wantOK: true, wantOutput: `name "eeprom", bus I2C`},
		{name: "help", req: Request{ID: "8", Command: CmdDeviceHelp, Target: "led"}, wantOK: true, wantOutput: "led.color=string\n"},
		{name: "help unknown", req: Request{ID: "9", Command: CmdDeviceHelp, Target: "e1000"}, wantErr: "unknown", wantCode: CodeNotFound},
		{name: "reset", req: Request{ID: "10", Command: CmdReset}, wantOK: true},
		{name: "del fixed device", req: Request{ID: "11", Command: CmdDeviceDel, Target: "status"}, wantErr: "hot", wantCode: CodeConflict},
		{name: "del", req: Request{ID: "12", Command: CmdDeviceDel, Target: "net0"}, wantOK: true},
		{name: "del again", req: Request{ID: "13", Command: CmdDeviceDel, Target: "net0"}, wantErr: "not found", wantCode: CodeNotFound},
		{name: "del without target", req: Request{ID: "14", Command: CmdDeviceDel}, wantErr: "needs a target", wantCode: CodeInvalid},
		{name: "unknown command", req: Request{ID: "15", Command: "migrate"}, wantErr: "unknown command", wantCode: CodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := l.Execute(tt.req)
			if resp.ID != tt.req.ID || resp.Command != tt.req.Command {
				t.Errorf("response identity = %q/%q", resp.ID, resp.Command)
			}
			if resp.OK != tt.wantOK {
				t.Fatalf("OK = %v (error %q), want %v", resp.OK, resp.Error, tt.wantOK)
			}
			if tt.wantErr != "" && !strings.Contains(resp.Error, tt.wantErr) {
				t.Errorf("Error = %q, want it to contain %q", resp.Error, tt.wantErr)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", resp.Code, tt.wantCode)
			}
			if !strings.Contains(resp.Output, tt.wantOutput) {
				t.Errorf("Output = %q, want it to contain %q", resp.Output, tt.wantOutput)
			}
			if resp.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", resp.Path, tt.wantPath)
			}
		})
	}
}

func TestExecuteShowStructured(t *testing.T) {
	m := newTestModel(t)
	l := NewLoop(m, Options{})

	resp := l.Execute(Request{ID: "1", Command: CmdShow, Target: "spd", Full: true})
	if !resp.OK || resp.Show == nil {
		t.Fatalf("show spd = %+v", resp)
	}
	if resp.Show.ID != "spd" || resp.Show.Device != "eeprom.0" {
		t.Errorf("Show = %+v", resp.Show)
	}
}

func TestSubmit(t *testing.T) {
	m := newTestModel(t)
	l := NewLoop(m, Options{QueueSize: 4, RequestTimeout: time.Second})
	var syncs atomic.Int32
	l.SetAfter(func() { syncs.Add(1) })
	startLoop(t, l)

	resp, err := l.Submit(context.Background(), Request{
		ID:      "a1",
		Command: CmdDeviceAdd,
		Device:  &qdev.AddRequest{Driver: "pci-led", ID: "hot"},
	})
	if err != nil || !resp.OK {
		t.Fatalf("Submit() = %+v, %v", resp, err)
	}

	resp, err = l.Submit(context.Background(), Request{ID: "q1", Command: CmdQTree})
	if err != nil || !strings.Contains(resp.Output, `dev: led, id "hot"`) {
		t.Errorf("qtree after add = %q, %v", resp.Output, err)
	}

	// Failed commands are answered, not errors of Submit.
	resp, err = l.Submit(context.Background(), Request{ID: "d1", Command: CmdDeviceDel, Target: "ghost"})
	if err != nil || resp.OK {
		t.Errorf("device_del ghost = %+v, %v", resp, err)
	}

	resp, err = l.Submit(context.Background(), Request{ID: "q2", Command: CmdQTree})
	if err != nil || !resp.OK {
		t.Fatalf("final Submit() = %+v, %v", resp, err)
	}
	// The hook of the last request may still be running.
	if n := syncs.Load(); n < 3 {
		t.Errorf("after hook ran %d times, want at least 3", n)
	}
}

func TestSubmitTimeoutAndQueueFull(t *testing.T) {
	m := newTestModel(t)
	l := NewLoop(m, Options{QueueSize: 1, RequestTimeout: 20 * time.Millisecond})

	// Nothing runs the loop: the first request waits in the queue and times out.
	_, err := l.Submit(context.Background(), Request{ID: "t1", Command: CmdQTree})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Submit() error = %v, want ErrTimeout", err)
	}

	_, err = l.Submit(context.Background(), Request{ID: "t2", Command: CmdQTree})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit() error = %v, want ErrQueueFull", err)
	}

	// The expired request is dropped once the loop starts.
	executed := 0
	l.SetAfter(func() { executed++ })
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(stopped)
	}()
	deadline := time.Now().Add(time.Second)
	for len(l.jobs) > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-stopped

	if executed != 0 {
		t.Errorf("expired request executed %d times", executed)
	}
	if _, err := l.Submit(context.Background(), Request{ID: "t3", Command: CmdQTree}); !errors.Is(err, ErrStopped) {
		t.Errorf("Submit() after Run error = %v, want ErrStopped", err)
	}
}
