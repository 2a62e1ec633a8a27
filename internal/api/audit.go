package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/govee-web/internal/audit"
)

// handleListAuditLogs returns paginated command history with optional filters.
//
// Query parameters:
//   - device: filter by device ID
//   - action: filter by command (turn, color)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Device: q.Get("device"),
		Action: q.Get("action"),
	}

	var ok bool
	if filter.Limit, ok = intParam(q.Get("limit")); !ok {
		writeBadRequest(w, "limit must be an integer")
		return
	}
	if filter.Offset, ok = intParam(q.Get("offset")); !ok {
		writeBadRequest(w, "offset must be an integer")
		return
	}

	result, err := s.auditRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err, "request_id", requestID(r))
		writeInternalError(w)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// intParam parses an optional integer query value; "" is 0.
func intParam(v string) (int, bool) {
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}
