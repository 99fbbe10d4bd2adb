package control

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/devmodel/internal/infrastructure/mqtt"
)

// Transport is the subset of mqtt.Client the server needs.
type Transport interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	PublishJSON(topic string, v any, retained bool) error
}

// Server feeds requests received over MQTT into a Loop and publishes the
// responses.
//
//	devmodel/{machine}/request/{command} ──► Server ──Submit──► Loop
//	devmodel/{machine}/response/{id}     ◄───────────────────────┘
type Server struct {
	loop      *Loop
	transport Transport
	topics    mqtt.Topics
	qos       byte
	logger    Logger

	ctx      context.Context
	mu       sync.Mutex // guards stopped and inflight.Add
	stopped  bool
	inflight sync.WaitGroup
}

// NewServer creates a server for machine's request topics.
func NewServer(loop *Loop, transport Transport, topics mqtt.Topics, qos byte) *Server {
	return &Server{
		loop:      loop,
		transport: transport,
		topics:    topics,
		qos:       qos,
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the server.
func (s *Server) SetLogger(logger Logger) {
	s.logger = logger
}

// Start subscribes to the request topics. Responses are abandoned once ctx
// is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.ctx = ctx
	if err := s.transport.Subscribe(s.topics.AllRequests(), s.qos, s.handle); err != nil {
		return fmt.Errorf("subscribing to control requests: %w", err)
	}
	s.logger.Info("control server listening", "topic", s.topics.AllRequests())
	return nil
}

// Stop refuses further requests, drops the subscription and blocks until
// every accepted request has been answered. Stop is idempotent.
func (s *Server) Stop() {
	s.mu.Lock()
	wasStopped := s.stopped
	s.stopped = true
	s.mu.Unlock()

	if !wasStopped {
		if err := s.transport.Unsubscribe(s.topics.AllRequests()); err != nil {
			s.logger.Warn("unsubscribing from control requests failed", "error", err)
		}
	}
	s.inflight.Wait()
}

// handle runs on an MQTT goroutine; it decodes the request and answers it
// from a separate goroutine so the client's dispatch is never blocked.
func (s *Server) handle(topic string, payload []byte) error {
	cmd, ok := s.topics.RequestCommand(topic)
	if !ok {
		return fmt.Errorf("%w: topic %q", ErrBadRequest, topic)
	}

	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if req.ID == "" {
		return fmt.Errorf("%w: request without id", ErrBadRequest)
	}
	req.Command = cmd

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("%w: dropping %s request %q", ErrServerStopped, cmd, req.ID)
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		s.respond(req)
	}()
	return nil
}

func (s *Server) respond(req Request) {
	resp, err := s.loop.Submit(s.ctx, req)
	if err != nil {
		resp = failed(req, err)
	}
	if !resp.OK {
		s.logger.Warn("control request failed", "id", req.ID, "command", req.Command, "error", resp.Error)
	}
	if err := s.transport.PublishJSON(s.topics.Response(req.ID), resp, false); err != nil {
		s.logger.Error("publishing control response failed", "id", req.ID, "error", err)
	}
}
