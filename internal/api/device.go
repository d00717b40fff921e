package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-nevoton/internal/bridges/nevoton"
	"github.com/nerrad567/gray-logic-nevoton/internal/sauna"
)

// DeviceResponse describes the controller and the bridge's view of it.
type DeviceResponse struct {
	DeviceID string             `json:"device_id"`
	Status   string             `json:"status"`
	Device   nevoton.DeviceInfo `json:"device"`
	LastSeen *time.Time         `json:"last_seen,omitempty"`
	Points   []sauna.PointSpec  `json:"points"`
}

// handleDevice returns the controller identity and the point registry.
func (s *Server) handleDevice(w http.ResponseWriter, _ *http.Request) {
	m := s.bridge.GetMetrics()

	writeJSON(w, http.StatusOK, DeviceResponse{
		DeviceID: s.deviceID,
		Status:   m.Status,
		Device:   m.Device,
		LastSeen: m.LastSuccess,
		Points:   sauna.Points(),
	})
}

// handlePoints returns the point registry only.
func (s *Server) handlePoints(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"points":   sauna.Points(),
		"writable": sauna.WritablePoints(),
	})
}

// handleState returns the last polled snapshot.
func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	state := s.bridge.CurrentState()
	if state == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable,
			"no snapshot yet, device has not been polled successfully")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_id": s.deviceID,
		"state":     state,
	})
}

// WriteParameterRequest is the body of a parameter write.
type WriteParameterRequest struct {
	Value float64 `json:"value"`
}

// WriteParameterResponse acknowledges an accepted parameter write.
// The write is asynchronous: the command travels over MQTT and the
// outcome arrives on the ack topic like any Core-issued command.
type WriteParameterResponse struct {
	CommandID string `json:"command_id"`
	Point     string `json:"point"`
	Value     int    `json:"value"`
}

// handleWriteParameter validates a write and publishes it as a command.
func (s *Server) handleWriteParameter(w http.ResponseWriter, r *http.Request) {
	if s.commands == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable,
			"command publishing not configured")
		return
	}

	name := chi.URLParam(r, "name")

	var req WriteParameterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	// Validate up front so the caller gets an immediate, specific
	// error instead of fishing a rejection off the ack topic.
	coerced, err := sauna.ValidateWrite(name, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, sauna.ErrUnknownPoint):
			writeNotFound(w, err.Error())
		case errors.Is(err, sauna.ErrPointReadOnly), errors.Is(err, sauna.ErrValueOutOfRange):
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
		default:
			writeBadRequest(w, err.Error())
		}
		return
	}

	cmd := nevoton.CommandMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		DeviceID:  s.deviceID,
		Point:     name,
		Value:     req.Value,
		Source:    "api",
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		writeInternalError(w, "marshal command: "+err.Error())
		return
	}

	if err := s.commands.Publish(nevoton.CommandTopic(s.deviceID), payload, s.qos, false); err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeUnavailable,
			"publish command: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, WriteParameterResponse{
		CommandID: cmd.ID,
		Point:     name,
		Value:     coerced,
	})
}
