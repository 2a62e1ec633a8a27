package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/govee-web/internal/device"
)

// toggleRequest is the body of PUT /devices/{id}/toggle.
type toggleRequest struct {
	State string `json:"state"`
}

// colorRequest is the body of PUT /devices/{id}/color.
type colorRequest struct {
	Color string `json:"color"`
}

// handleListDevices returns the device directory as a JSON array.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	dir, err := s.devices.ListDevices(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if dir == nil {
		dir = device.Directory{}
	}
	writeJSON(w, http.StatusOK, dir)
}

// handleGetDeviceState returns the live state of one device.
func (s *Server) handleGetDeviceState(w http.ResponseWriter, r *http.Request) {
	st, err := s.devices.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleToggleDevice switches a device on or off.
func (s *Server) handleToggleDevice(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	power, err := device.ParsePowerState(req.State)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.devices.SetPower(r.Context(), chi.URLParam(r, "id"), power); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleSetDeviceColor sets a device's colour.
func (s *Server) handleSetDeviceColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	color, err := device.ParseColor(req.Color)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.devices.SetColor(r.Context(), chi.URLParam(r, "id"), color); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
