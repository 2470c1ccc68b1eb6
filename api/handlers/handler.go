package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jusunglee/transit-go/internal/alerts"
	"github.com/jusunglee/transit-go/internal/departures"
	"github.com/jusunglee/transit-go/internal/models"
	"github.com/jusunglee/transit-go/pkg/transit"
)

// Handler serves the read-only JSON query surface (spec §6) over a
// transit.Client.
type Handler struct {
	client transit.Client
}

func NewHandler(client transit.Client) *Handler {
	return &Handler{client: client}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/stations", h.handleStations).Methods("GET")
	r.HandleFunc("/departures/{stationId}", h.handleDepartures).Methods("GET")
	r.HandleFunc("/alerts", h.handleAlerts).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
}

// Specific response types for each endpoint
type StationsResponse struct {
	Data []*models.Stop `json:"data"`
}

type DeparturesResponse struct {
	Data []models.Departure `json:"data"`
}

type AlertsResponse struct {
	Data []models.Alert `json:"data"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleStations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	var system models.System
	if raw := r.URL.Query().Get("system"); raw != "" {
		system = models.System(strings.ToUpper(raw))
		if !validSystem(system) {
			h.writeError(w, "invalid system", http.StatusBadRequest)
			return
		}
	}

	stations, err := h.client.Stations(transit.StationFilter{Query: q, System: system})
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if stations == nil {
		stations = []*models.Stop{}
	}
	h.writeJSON(w, StationsResponse{Data: stations})
}

func (h *Handler) handleDepartures(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["stationId"]

	opts := departures.Options{Source: departures.SourceBoth}

	if raw := r.URL.Query().Get("limitMinutes"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, "limitMinutes must be a positive integer", http.StatusBadRequest)
			return
		}
		opts.LimitMinutes = &limit
	}

	if raw := r.URL.Query().Get("source"); raw != "" {
		switch departures.Source(raw) {
		case departures.SourceRealtime:
			opts.Source = departures.SourceRealtime
		case departures.SourceScheduled:
			opts.Source = departures.SourceScheduled
		default:
			h.writeError(w, "source must be realtime or scheduled", http.StatusBadRequest)
			return
		}
	}

	results, err := h.client.Departures(r.Context(), stationID, opts)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []models.Departure{}
	}
	h.writeJSON(w, DeparturesResponse{Data: results})
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request) {
	filter := alerts.Filter{
		StationID:     r.URL.Query().Get("stationId"),
		ActiveNow:     isTruthy(r.URL.Query().Get("activeNow")),
		IncludeLabels: isTruthy(r.URL.Query().Get("includeLabels")),
	}
	if raw := r.URL.Query().Get("lines"); raw != "" {
		filter.Lines = strings.Split(raw, ",")
	}

	results, err := h.client.Alerts(r.Context(), filter)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if results == nil {
		results = []models.Alert{}
	}
	h.writeJSON(w, AlertsResponse{Data: results})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.client.Health())
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.writeError(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func validSystem(system models.System) bool {
	for _, s := range models.Systems {
		if s == system {
			return true
		}
	}
	return false
}

func isTruthy(raw string) bool {
	return raw == "true" || raw == "1"
}
