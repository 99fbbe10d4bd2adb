package control

import (
	"errors"
	"fmt"

	"github.com/nerrad567/devmodel/internal/property"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// Commands understood by the loop.
const (
	CmdDeviceAdd  = "device_add"
	CmdDeviceDel  = "device_del"
	CmdShow       = "show"
	CmdQTree      = "qtree"
	CmdQDM        = "qdm"
	CmdDeviceHelp = "device_help"
	CmdReset      = "system_reset"
)

// Request is one control command.
//
//	{"id":"req-1","device":{"driver":"nic","id":"net0","props":{"netdev":"hn0"}}}   device_add
//	{"id":"req-2","target":"net0"}                                                  device_del
//	{"id":"req-3","target":"/pcihost/pci.0/nic.0","full":true}                      show
type Request struct {
	ID      string `json:"id"`
	Command string `json:"command,omitempty"`

	// Device describes the device for device_add.
	Device *qdev.AddRequest `json:"device,omitempty"`

	// Target is the device id for device_del, the device path for show and
	// the driver name (or "?") for device_help.
	Target string `json:"target,omitempty"`

	// Full disables buffer truncation in show.
	Full bool `json:"full,omitempty"`
}

// Validate checks that the fields the command needs are present.
func (r *Request) Validate() error {
	switch r.Command {
	case CmdDeviceAdd:
		if r.Device == nil {
			return fmt.Errorf("%w: %s needs a device", ErrBadRequest, r.Command)
		}
	case CmdDeviceDel, CmdShow, CmdDeviceHelp:
		if r.Target == "" {
			return fmt.Errorf("%w: %s needs a target", ErrBadRequest, r.Command)
		}
	case CmdQTree, CmdQDM, CmdReset:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, r.Command)
	}
	return nil
}

// Response answers one Request.
type Response struct {
	ID      string `json:"id"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`

	// Code classifies Error: one of the Code* constants.
	Code string `json:"code,omitempty"`

	// Output is the monitor-style text rendering of the result.
	Output string `json:"output,omitempty"`

	// Path is the path of the device added by device_add.
	Path string `json:"path,omitempty"`

	// Show is the structured result of show.
	Show *qdev.ShowResult `json:"show,omitempty"`
}

// Failure classes reported in Response.Code.
const (
	CodeNotFound = "not_found"
	CodeInvalid  = "invalid"
	CodeConflict = "conflict"
	CodeFailed   = "failed"
)

func failed(req Request, err error) Response {
	return Response{ID: req.ID, Command: req.Command, Error: err.Error(), Code: errorCode(err)}
}

// errorCode maps the model's sentinel errors onto failure classes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, qdev.ErrUnknownType),
		errors.Is(err, qdev.ErrDeviceNotFound),
		errors.Is(err, qdev.ErrBusNotFound),
		errors.Is(err, qdev.ErrNoBusForDevice):
		return CodeNotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrUnknownCommand),
		errors.Is(err, qdev.ErrMissingDriver),
		errors.Is(err, qdev.ErrNotUserCreatable),
		errors.Is(err, qdev.ErrBadBusForDevice),
		errors.Is(err, qdev.ErrDeviceNoBus),
		errors.Is(err, qdev.ErrDeviceMultipleBuses),
		errors.Is(err, property.ErrUnknownProperty),
		errors.Is(err, property.ErrParse),
		errors.Is(err, property.ErrTypeMismatch),
		errors.Is(err, property.ErrNotSettable),
		errors.Is(err, property.ErrUnresolvedRef):
		return CodeInvalid
	case errors.Is(err, qdev.ErrBusNoHotplug),
		errors.Is(err, qdev.ErrMachineNotReady),
		errors.Is(err, qdev.ErrInitFailed),
		errors.Is(err, qdev.ErrDeviceNoState):
		return CodeConflict
	default:
		return CodeFailed
	}
}
