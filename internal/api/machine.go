package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devmodel/internal/control"
	"github.com/nerrad567/devmodel/internal/qdev"
)

// submit runs req on the control loop and writes the error response when it
// fails. The request id is the HTTP request id.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, req control.Request) (control.Response, bool) {
	req.ID = requestIDFrom(r.Context())
	if err := req.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return control.Response{}, false
	}

	resp, err := s.loop.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, control.ErrQueueFull), errors.Is(err, control.ErrStopped):
			writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, err.Error())
		case errors.Is(err, control.ErrTimeout):
			writeError(w, http.StatusGatewayTimeout, ErrCodeTimeout, err.Error())
		default:
			s.logger.Error("control request failed", "command", req.Command, "error", err)
			writeInternalError(w, "control request failed")
		}
		return control.Response{}, false
	}
	if !resp.OK {
		status, code := statusForCode(resp.Code)
		writeError(w, status, code, resp.Error)
		return resp, false
	}
	return resp, true
}

// statusForCode maps a control failure class to an HTTP status.
func statusForCode(code string) (int, string) {
	switch code {
	case control.CodeNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case control.CodeInvalid:
		return http.StatusBadRequest, ErrCodeBadRequest
	case control.CodeConflict:
		return http.StatusConflict, ErrCodeConflict
	default:
		return http.StatusUnprocessableEntity, ErrCodeCommandFailed
	}
}

// handleQTree returns the device tree as monitor text.
func (s *Server) handleQTree(w http.ResponseWriter, r *http.Request) {
	if resp, ok := s.submit(w, r, control.Request{Command: control.CmdQTree}); ok {
		writeText(w, http.StatusOK, resp.Output)
	}
}

// handleListTypes returns the registered classes as monitor text.
func (s *Server) handleListTypes(w http.ResponseWriter, r *http.Request) {
	if resp, ok := s.submit(w, r, control.Request{Command: control.CmdQDM}); ok {
		writeText(w, http.StatusOK, resp.Output)
	}
}

// handleDeviceHelp returns the settable properties of one driver.
func (s *Server) handleDeviceHelp(w http.ResponseWriter, r *http.Request) {
	req := control.Request{Command: control.CmdDeviceHelp, Target: chi.URLParam(r, "driver")}
	if resp, ok := s.submit(w, r, req); ok {
		writeText(w, http.StatusOK, resp.Output)
	}
}

// handleShow returns the state of the device named by the path query
// parameter. Paths contain slashes, so they are not route parameters.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	full, _ := strconv.ParseBool(q.Get("full")) //nolint:errcheck // anything but a true value means truncated
	req := control.Request{Command: control.CmdShow, Target: q.Get("path"), Full: full}
	if resp, ok := s.submit(w, r, req); ok {
		writeJSON(w, http.StatusOK, resp.Show)
	}
}

// addDeviceResponse is returned by POST /devices.
type addDeviceResponse struct {
	Path string `json:"path"`
}

// handleAddDevice hot-plugs the device described by the body.
func (s *Server) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	var dev qdev.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&dev); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if resp, ok := s.submit(w, r, control.Request{Command: control.CmdDeviceAdd, Device: &dev}); ok {
		writeJSON(w, http.StatusCreated, addDeviceResponse{Path: resp.Path})
	}
}

// handleDeleteDevice unplugs the device with the given id.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	req := control.Request{Command: control.CmdDeviceDel, Target: chi.URLParam(r, "id")}
	if _, ok := s.submit(w, r, req); ok {
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleReset resets every device in the tree.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.submit(w, r, control.Request{Command: control.CmdReset}); ok {
		w.WriteHeader(http.StatusNoContent)
	}
}
