package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/devmodel/internal/journal"
)

// handleListEvents returns a page of journal entries, newest first.
//
// Query parameters: type, device, limit, offset.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "journal not configured")
		return
	}

	q := r.URL.Query()
	filter := journal.Filter{
		Type:     q.Get("type"),
		DeviceID: q.Get("device"),
	}
	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			writeBadRequest(w, "offset must be a non-negative integer")
			return
		}
	}

	res, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing journal failed", "error", err)
		writeInternalError(w, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
