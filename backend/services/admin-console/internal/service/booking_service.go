package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"evhub/backend/services/admin-console/internal/models"
	"evhub/backend/services/admin-console/internal/validation"
)

// BookingAPI is the /booking transport used by BookingService.
type BookingAPI interface {
	All(ctx context.Context) ([]models.Booking, error)
	ByOwner(ctx context.Context, nic string) ([]models.Booking, error)
	ByStation(ctx context.Context, stationID string) ([]models.Booking, error)
	ByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	Get(ctx context.Context, id string) (models.Booking, error)
	Create(ctx context.Context, record map[string]any) (models.Booking, error)
	Update(ctx context.Context, id string, record map[string]any) (models.Booking, error)
	Delete(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id string, status models.BookingStatus) (models.Booking, error)
	Approve(ctx context.Context, id string) (models.Booking, error)
}

// statusEndpointStatuses are accepted by the generic status endpoint.
// Approval has its own endpoint.
var statusEndpointStatuses = []models.BookingStatus{
	models.BookingPending,
	models.BookingCancelled,
	models.BookingCompleted,
}

// BookingService validates booking writes and routes status changes to the
// endpoint that owns them.
type BookingService struct {
	api    BookingAPI
	logger *zap.Logger
}

// NewBookingService builds BookingService.
func NewBookingService(api BookingAPI, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{api: api, logger: logger}
}

// All returns every booking.
func (s *BookingService) All(ctx context.Context) ([]models.Booking, error) {
	out, err := s.api.All(ctx)
	if err != nil {
		return nil, normalize(err, "Failed to fetch bookings")
	}
	return out, nil
}

// ByOwner returns the bookings of one owner NIC.
func (s *BookingService) ByOwner(ctx context.Context, nic string) ([]models.Booking, error) {
	if strings.TrimSpace(nic) == "" {
		return nil, invalid("Owner NIC is required")
	}
	out, err := s.api.ByOwner(ctx, nic)
	if err != nil {
		return nil, normalize(err, "Failed to fetch user bookings")
	}
	return out, nil
}

// ByStation returns the bookings of one station.
func (s *BookingService) ByStation(ctx context.Context, stationID string) ([]models.Booking, error) {
	if strings.TrimSpace(stationID) == "" {
		return nil, invalid("Station ID is required")
	}
	out, err := s.api.ByStation(ctx, stationID)
	if err != nil {
		return nil, normalize(err, "Failed to fetch station bookings")
	}
	return out, nil
}

// ByStatus returns the bookings in one status.
func (s *BookingService) ByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	if !status.Valid() {
		return nil, invalid("Invalid status: %s", status)
	}
	out, err := s.api.ByStatus(ctx, status)
	if err != nil {
		return nil, normalize(err, "Failed to fetch bookings by status")
	}
	return out, nil
}

// Get returns one booking.
func (s *BookingService) Get(ctx context.Context, id string) (models.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return models.Booking{}, invalid("Booking ID is required")
	}
	b, err := s.api.Get(ctx, id)
	if err != nil {
		return models.Booking{}, normalize(err, "Failed to fetch booking")
	}
	return b, nil
}

// Create sanitizes and validates in, then posts it.
func (s *BookingService) Create(ctx context.Context, in models.BookingInput) (models.Booking, error) {
	record := validation.Sanitize(in.Record())
	if errs := validation.BookingSchema.Validate(record); len(errs) > 0 {
		return models.Booking{}, validationError(errs)
	}
	b, err := s.api.Create(ctx, record)
	if err != nil {
		return models.Booking{}, normalize(err, "Failed to create booking")
	}
	s.logger.Info("booking created", zap.String("booking_id", b.ID), zap.String("station_id", b.StationID))
	return b, nil
}

// Update resubmits the booking form for an existing booking.
func (s *BookingService) Update(ctx context.Context, id string, in models.BookingInput) (models.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return models.Booking{}, invalid("Booking ID is required")
	}
	record := validation.Sanitize(in.Record())
	if errs := validation.BookingSchema.Validate(record); len(errs) > 0 {
		return models.Booking{}, validationError(errs)
	}
	b, err := s.api.Update(ctx, id, record)
	if err != nil {
		return models.Booking{}, normalize(err, "Failed to update booking")
	}
	return b, nil
}

// Delete removes a booking.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("Booking ID is required")
	}
	if err := s.api.Delete(ctx, id); err != nil {
		return normalize(err, "Failed to delete booking")
	}
	s.logger.Info("booking deleted", zap.String("booking_id", id))
	return nil
}

// UpdateStatus calls the generic status endpoint. Approved is refused
// locally; use Approve.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (models.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return models.Booking{}, invalid("Booking ID is required")
	}
	if status == "" {
		return models.Booking{}, invalid("Status is required")
	}
	if !statusEndpointAllows(status) {
		names := make([]string, len(statusEndpointStatuses))
		for i, st := range statusEndpointStatuses {
			names[i] = string(st)
		}
		return models.Booking{}, invalid("Invalid status for this endpoint. Must be one of: %s", strings.Join(names, ", "))
	}
	b, err := s.api.SetStatus(ctx, id, status)
	if err != nil {
		return models.Booking{}, normalize(err, "Failed to update booking status")
	}
	s.logger.Info("booking status updated", zap.String("booking_id", id), zap.String("status", string(status)))
	return b, nil
}

func statusEndpointAllows(status models.BookingStatus) bool {
	for _, st := range statusEndpointStatuses {
		if st == status {
			return true
		}
	}
	return false
}

// Approve calls the dedicated approval endpoint.
func (s *BookingService) Approve(ctx context.Context, id string) (models.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return models.Booking{}, invalid("Booking ID is required")
	}
	b, err := s.api.Approve(ctx, id)
	if err != nil {
		return models.Booking{}, normalize(err, "Failed to approve booking")
	}
	s.logger.Info("booking approved", zap.String("booking_id", id))
	return b, nil
}

// Cancel moves a booking to Cancelled.
func (s *BookingService) Cancel(ctx context.Context, id string) (models.Booking, error) {
	return s.UpdateStatus(ctx, id, models.BookingCancelled)
}

// Complete moves a booking to Completed.
func (s *BookingService) Complete(ctx context.Context, id string) (models.Booking, error) {
	return s.UpdateStatus(ctx, id, models.BookingCompleted)
}

// Transition moves a booking to target if the console offers that move from
// the booking's current status, routing approval through Approve.
func (s *BookingService) Transition(ctx context.Context, id string, target models.BookingStatus) (models.Booking, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if !current.Status.CanTransition(target) {
		return models.Booking{}, conflict("cannot move booking from %s to %s", current.Status, target)
	}
	if target == models.BookingApproved {
		return s.Approve(ctx, id)
	}
	return s.UpdateStatus(ctx, id, target)
}

// BookingFilter narrows the booking table. Status "" or "all" keeps every status.
type BookingFilter struct {
	Status string
	Search string
}

// FilterBookings matches Search against owner NIC, booking ID and station ID.
func FilterBookings(bookings []models.Booking, f BookingFilter) []models.Booking {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if f.Status != "" && !strings.EqualFold(f.Status, "all") && string(b.Status) != f.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(b.OwnerNIC), search) &&
			!strings.Contains(strings.ToLower(b.ID), search) &&
			!strings.Contains(strings.ToLower(b.StationID), search) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// CountBookings returns the per-status totals.
func CountBookings(bookings []models.Booking) models.BookingCounts {
	c := models.BookingCounts{Total: len(bookings)}
	for _, b := range bookings {
		switch b.Status {
		case models.BookingPending:
			c.Pending++
		case models.BookingApproved:
			c.Approved++
		case models.BookingCancelled:
			c.Cancelled++
		case models.BookingCompleted:
			c.Completed++
		}
	}
	return c
}

// QRCode is a decoded booking QR image.
type QRCode struct {
	Filename string
	PNG      []byte
}

const dataURLPrefix = "data:image/png;base64,"

// QRCode decodes the QR payload attached to a booking.
func (s *BookingService) QRCode(ctx context.Context, id string) (QRCode, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return QRCode{}, err
	}
	payload := strings.TrimPrefix(strings.TrimSpace(b.QRCodeBase64), dataURLPrefix)
	if payload == "" {
		return QRCode{}, &Error{Kind: KindNotFound, Message: "QR code not available for this booking"}
	}
	png, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return QRCode{}, &Error{Kind: KindInternal, Message: "QR code payload is corrupt", Err: err}
	}
	return QRCode{Filename: qrFilename(b.ID), PNG: png}, nil
}

func qrFilename(id string) string {
	suffix := id
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return fmt.Sprintf("booking-%s-qr.png", suffix)
}
