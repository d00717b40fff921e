package api

import (
	"net/http"
	"strconv"
)

// parseLimit reads the optional ?limit= query parameter. Zero means
// "use the repository default"; the repository clamps the ceiling.
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}

// handleStateHistory returns persisted snapshots, newest first.
func (s *Server) handleStateHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history persistence not configured")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}

	entries, err := s.history.GetHistory(r.Context(), s.deviceID, limit)
	if err != nil {
		writeInternalError(w, "reading history: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": s.deviceID,
		"count":     len(entries),
		"history":   entries,
	})
}

// handleCommandLog returns persisted command outcomes, newest first.
func (s *Server) handleCommandLog(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "history persistence not configured")
		return
	}

	limit, ok := parseLimit(r)
	if !ok {
		writeBadRequest(w, "limit must be a non-negative integer")
		return
	}

	commands, err := s.history.GetCommandLog(r.Context(), s.deviceID, limit)
	if err != nil {
		writeInternalError(w, "reading command log: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": s.deviceID,
		"count":     len(commands),
		"commands":  commands,
	})
}
