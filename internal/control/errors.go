package control

import "errors"

// Sentinel errors for control requests.
var (
	// ErrQueueFull is returned when the request queue is at capacity.
	ErrQueueFull = errors.New("control: request queue full")

	// ErrTimeout is returned when a request is not answered in time.
	ErrTimeout = errors.New("control: request timed out")

	// ErrStopped is returned for requests submitted after the loop ended.
	ErrStopped = errors.New("control: loop stopped")

	// ErrServerStopped is returned for requests received after Server.Stop.
	ErrServerStopped = errors.New("control: server stopped")

	// ErrUnknownCommand is returned for commands the loop does not implement.
	ErrUnknownCommand = errors.New("control: unknown command")

	// ErrBadRequest is returned for malformed request payloads.
	ErrBadRequest = errors.New("control: bad request")
)
