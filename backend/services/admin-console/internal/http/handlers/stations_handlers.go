package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/service"
)

// StationsHandlers serves station management.
type StationsHandlers struct {
	base
	svc *service.StationService
}

// NewStationsHandlers returns handler.
func NewStationsHandlers(svc *service.StationService, notifier Notifier, logger *zap.Logger) *StationsHandlers {
	return &StationsHandlers{base: newBase(notifier, logger), svc: svc}
}

type stationList struct {
	Stations []models.Station   `json:"stations"`
	Stats    models.StationStats `json:"stats"`
}

// List handles GET /console/stations?search=&type=. Stats cover the
// unfiltered list.
func (h *StationsHandlers) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.svc.List(r.Context())
	if err != nil {
		h.failure(w, err)
		return
	}
	q := r.URL.Query()
	filtered := service.FilterStations(stations, service.StationFilter{Search: q.Get("search"), Type: q.Get("type")})
	h.success(w, http.StatusOK, stationList{Stations: filtered, Stats: service.ComputeStationStats(stations)}, "")
}

// Get handles GET /console/stations/{id}.
func (h *StationsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, st, "")
}

// Create handles POST /console/stations.
func (h *StationsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in models.StationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusCreated, st, "Station created successfully")
}

// BatchCreate handles POST /console/stations/batch.
func (h *StationsHandlers) BatchCreate(w http.ResponseWriter, r *http.Request) {
	var in []models.StationInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	results := h.svc.BatchCreate(r.Context(), in)
	h.success(w, http.StatusOK, results, "")
}

// Update handles PUT /console/stations/{id} with a partial body.
func (h *StationsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.StationPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	st, err := h.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, st, "Station updated successfully")
}

// Delete handles DELETE /console/stations/{id}?confirm=true.
func (h *StationsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		requireConfirmation(w)
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, nil, "Station deleted successfully")
}

// Activate handles PATCH /console/stations/{id}/activate.
func (h *StationsHandlers) Activate(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, st, "Station activated")
}

// Deactivate handles PATCH /console/stations/{id}/deactivate.
func (h *StationsHandlers) Deactivate(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Deactivate(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, st, "Station deactivated")
}
