package control

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/devmodel/internal/qdev"
)

// Defaults for Options fields left at zero.
const (
	defaultQueueSize      = 16
	defaultRequestTimeout = 5 * time.Second
)

// Logger defines the logging interface used by the control loop.
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

// Options configures a Loop.
type Options struct {
	// QueueSize bounds the number of pending requests.
	QueueSize int

	// RequestTimeout is how long Submit waits for an answer, queueing
	// included.
	RequestTimeout time.Duration
}

type job struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Loop owns a device model and executes control requests one at a time on
// the goroutine that calls Run. Other goroutines only enqueue with Submit.
type Loop struct {
	model   *qdev.Model
	jobs    chan job
	done    chan struct{}
	timeout time.Duration

	after  func()
	logger Logger
}

// NewLoop creates a loop for model.
func NewLoop(model *qdev.Model, opts Options) *Loop {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Loop{
		model:   model,
		jobs:    make(chan job, opts.QueueSize),
		done:    make(chan struct{}),
		timeout: opts.RequestTimeout,
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the loop.
func (l *Loop) SetLogger(logger Logger) {
	l.logger = logger
}

// SetAfter sets a function run on the loop goroutine after every executed
// request, such as notify.Notifier.Sync. Call it before Run.
func (l *Loop) SetAfter(fn func()) {
	l.after = fn
}

// Run executes queued requests until ctx is cancelled. It must be called
// once; afterwards Submit returns ErrStopped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	l.logger.Info("control loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("control loop stopped")
			return
		case j := <-l.jobs:
			if err := j.ctx.Err(); err != nil {
				l.logger.Warn("dropping expired request", "id", j.req.ID, "command", j.req.Command)
				continue
			}
			j.reply <- l.Execute(j.req)
			if l.after != nil {
				l.after()
			}
		}
	}
}

// Submit queues req and waits for its response.
//
// Returns:
//   - Response: The answer, with OK false and Error set if the command failed
//   - error: ErrQueueFull, ErrTimeout or ErrStopped if the request was never answered
func (l *Loop) Submit(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	j := job{ctx: ctx, req: req, reply: make(chan Response, 1)}
	select {
	case <-l.done:
		return Response{}, ErrStopped
	default:
	}
	select {
	case l.jobs <- j:
	default:
		return Response{}, ErrQueueFull
	}

	select {
	case resp := <-j.reply:
		return resp, nil
	case <-l.done:
		return Response{}, ErrStopped
	case <-ctx.Done():
		return Response{}, fmt.Errorf("%w: %s %s", ErrTimeout, req.Command, req.ID)
	}
}

// Execute runs req against the model on the calling goroutine. Only the
// loop goroutine, or a caller that owns the model outright, may use it.
func (l *Loop) Execute(req Request) Response {
	if err := req.Validate(); err != nil {
		return failed(req, err)
	}

	resp := Response{ID: req.ID, Command: req.Command, OK: true}
	var sb strings.Builder

	switch req.Command {
	case CmdDeviceAdd:
		d, err := l.model.AddDevice(*req.Device)
		if err != nil {
			return failed(req, err)
		}
		resp.Path = d.Path()
	case CmdDeviceDel:
		if err := l.model.DeviceDel(req.Target); err != nil {
			return failed(req, err)
		}
	case CmdShow:
		res, err := l.model.Show(req.Target, req.Full)
		if err != nil {
			return failed(req, err)
		}
		qdev.FprintShow(&sb, res)
		resp.Show = res
	case CmdQTree:
		l.model.FprintTree(&sb)
	case CmdQDM:
		l.model.Registry().FprintTypes(&sb)
	case CmdDeviceHelp:
		if err := l.model.Registry().FprintDeviceHelp(&sb, req.Target); err != nil {
			return failed(req, err)
		}
	case CmdReset:
		if err := l.model.Reset(); err != nil {
			return failed(req, err)
		}
	}

	resp.Output = sb.String()
	l.logger.Debug("control request executed", "id", req.ID, "command", req.Command)
	return resp
}
