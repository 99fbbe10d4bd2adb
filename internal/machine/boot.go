package machine

import (
	"fmt"

	"github.com/nerrad567/devmodel/internal/qdev"
)

// BoardFunc creates the fixed devices of a board.
type BoardFunc func(m *qdev.Model)

// Boot brings m up: topology globals first, so they reach the board
// devices, then the board, then the topology devices. The machine is marked
// ready only when every device was added. t and board may be nil.
func Boot(m *qdev.Model, t *Topology, board BoardFunc) ([]*qdev.Device, error) {
	if m.MachineReady() {
		return nil, ErrAlreadyBooted
	}
	if t != nil {
		t.ApplyGlobals(m.Globals())
	}
	if board != nil {
		board(m)
	}

	var added []*qdev.Device
	if t != nil {
		var err error
		added, err = t.AddDevices(m)
		if err != nil {
			return added, fmt.Errorf("adding topology devices: %w", err)
		}
	}
	m.MarkMachineReady()
	return added, nil
}
