package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/service"
)

// BookingsHandlers serves booking management.
type BookingsHandlers struct {
	base
	svc *service.BookingService
}

// NewBookingsHandlers returns handler.
func NewBookingsHandlers(svc *service.BookingService, notifier Notifier, logger *zap.Logger) *BookingsHandlers {
	return &BookingsHandlers{base: newBase(notifier, logger), svc: svc}
}

type bookingList struct {
	Bookings []models.Booking    `json:"bookings"`
	Counts   models.BookingCounts `json:"counts"`
}

type bookingDetail struct {
	Booking     models.Booking         `json:"booking"`
	Transitions []models.BookingStatus `json:"transitions"`
}

func detail(b models.Booking) bookingDetail {
	return bookingDetail{Booking: b, Transitions: b.Status.Transitions()}
}

func (h *BookingsHandlers) writeList(w http.ResponseWriter, r *http.Request, bookings []models.Booking, err error) {
	if err != nil {
		h.failure(w, err)
		return
	}
	q := r.URL.Query()
	filtered := service.FilterBookings(bookings, service.BookingFilter{Status: q.Get("status"), Search: q.Get("search")})
	h.success(w, http.StatusOK, bookingList{Bookings: filtered, Counts: service.CountBookings(bookings)}, "")
}

// List handles GET /console/bookings?status=&search=.
func (h *BookingsHandlers) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.All(r.Context())
	h.writeList(w, r, bookings, err)
}

// ByOwner handles GET /console/bookings/by-owner/{nic}.
func (h *BookingsHandlers) ByOwner(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ByOwner(r.Context(), r.PathValue("nic"))
	h.writeList(w, r, bookings, err)
}

// ByStation handles GET /console/bookings/by-station/{id}.
func (h *BookingsHandlers) ByStation(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ByStation(r.Context(), r.PathValue("id"))
	h.writeList(w, r, bookings, err)
}

// ByStatus handles GET /console/bookings/by-status/{status}.
func (h *BookingsHandlers) ByStatus(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.svc.ByStatus(r.Context(), models.BookingStatus(r.PathValue("status")))
	h.writeList(w, r, bookings, err)
}

// Get handles GET /console/bookings/{id}. The answer lists the transitions
// the console offers from the booking's status.
func (h *BookingsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, detail(b), "")
}

// Create handles POST /console/bookings.
func (h *BookingsHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusCreated, detail(b), "Booking created successfully")
}

// Update handles PUT /console/bookings/{id}.
func (h *BookingsHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var in models.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.svc.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, detail(b), "Booking updated successfully")
}

// Delete handles DELETE /console/bookings/{id}?confirm=true.
func (h *BookingsHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		requireConfirmation(w)
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, nil, "Booking deleted successfully")
}

type statusBody struct {
	Status models.BookingStatus `json:"status"`
}

// UpdateStatus handles PUT /console/bookings/{id}/status. Cancelling through
// it needs confirm=true like Cancel does.
func (h *BookingsHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Status == models.BookingCancelled && !confirmed(r) {
		requireConfirmation(w)
		return
	}
	b, err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), body.Status)
	h.statusChanged(w, b, err, body.Status)
}

// Approve handles POST /console/bookings/{id}/approve.
func (h *BookingsHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Approve(r.Context(), r.PathValue("id"))
	h.statusChanged(w, b, err, models.BookingApproved)
}

// Cancel handles POST /console/bookings/{id}/cancel?confirm=true.
func (h *BookingsHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	if !confirmed(r) {
		requireConfirmation(w)
		return
	}
	b, err := h.svc.Cancel(r.Context(), r.PathValue("id"))
	h.statusChanged(w, b, err, models.BookingCancelled)
}

// Complete handles POST /console/bookings/{id}/complete.
func (h *BookingsHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Complete(r.Context(), r.PathValue("id"))
	h.statusChanged(w, b, err, models.BookingCompleted)
}

// Transition handles POST /console/bookings/{id}/transition. A move to
// Cancelled needs confirm=true.
func (h *BookingsHandlers) Transition(w http.ResponseWriter, r *http.Request) {
	var body statusBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Status == models.BookingCancelled && !confirmed(r) {
		requireConfirmation(w)
		return
	}
	b, err := h.svc.Transition(r.Context(), r.PathValue("id"), body.Status)
	h.statusChanged(w, b, err, body.Status)
}

// statusChanged answers with the booking and toasts the requested target,
// which is known even when the backend echoes no status.
func (h *BookingsHandlers) statusChanged(w http.ResponseWriter, b models.Booking, err error, target models.BookingStatus) {
	if err != nil {
		h.failure(w, err)
		return
	}
	h.success(w, http.StatusOK, detail(b), statusToast(target))
}

func statusToast(target models.BookingStatus) string {
	if target == "" {
		return "Booking status updated successfully"
	}
	return fmt.Sprintf("Booking %s successfully", strings.ToLower(string(target)))
}

// QRCode handles GET /console/bookings/qr/{id} and answers the PNG as a download.
func (h *BookingsHandlers) QRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.svc.QRCode(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failure(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, qr.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(qr.PNG)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(qr.PNG)
}
