package qdev

import (
	"fmt"
	"io"

	"github.com/nerrad567/devmodel/internal/vmstate"
)

// ShowResult is the state of one device as reported by Show.
type ShowResult struct {
	// Device is "<class>.<instance number>".
	Device  string          `json:"device"`
	ID      string          `json:"id"`
	Version int             `json:"version"`
	Fields  []*vmstate.Node `json:"fields"`
}

// Show walks the state description of the device at path (see FindDevice).
// Buffers are cut to a short preview unless full is set.
//
// Returns ErrDeviceNoState if the class declares no description.
func (m *Model) Show(path string, full bool) (*ShowResult, error) {
	d, err := m.FindDevice(path)
	if err != nil {
		return nil, err
	}
	vmsd := d.class.VMState
	if vmsd == nil {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNoState, d.class.Name)
	}
	fields, _ := vmstate.Walk(vmsd, d.stateOpaque(), vmstate.Options{Full: full})
	return &ShowResult{
		Device:  fmt.Sprintf("%s.%d", d.class.Name, d.InstanceNo()),
		ID:      d.ID,
		Version: vmsd.VersionID,
		Fields:  fields,
	}, nil
}

// FprintShow renders res the way the monitor does.
func FprintShow(w io.Writer, res *ShowResult) {
	fmt.Fprintf(w, "dev: %s, id %q, version %d\n", res.Device, res.ID, res.Version)
	vmstate.Fprint(w, res.Fields)
}
