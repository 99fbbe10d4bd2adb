package machine

import "errors"

var (
	// ErrInvalidTopology is returned when a topology document fails validation.
	ErrInvalidTopology = errors.New("machine: invalid topology")

	// ErrAlreadyBooted is returned when Boot runs on a model that is already
	// past machine ready.
	ErrAlreadyBooted = errors.New("machine: already booted")
)
