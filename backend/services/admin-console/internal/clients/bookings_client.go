package clients

import (
	"context"
	"net/url"

	"evhub/backend/services/admin-console/internal/models"
)

// BookingsClient calls the /booking endpoints.
type BookingsClient struct {
	base *Client
}

// NewBookingsClient returns client.
func NewBookingsClient(base *Client) *BookingsClient {
	return &BookingsClient{base: base}
}

func bookingPath(id string) string {
	return "/booking/" + url.PathEscape(id)
}

func (c *BookingsClient) list(ctx context.Context, path string) ([]models.Booking, error) {
	var out []models.Booking
	err := c.base.Get(ctx, path, &out)
	return out, err
}

// All returns every booking.
func (c *BookingsClient) All(ctx context.Context) ([]models.Booking, error) {
	return c.list(ctx, "/booking/all")
}

// ByOwner returns the bookings of one owner NIC.
func (c *BookingsClient) ByOwner(ctx context.Context, nic string) ([]models.Booking, error) {
	return c.list(ctx, "/booking/owner/"+url.PathEscape(nic))
}

// ByStation returns the bookings of one station.
func (c *BookingsClient) ByStation(ctx context.Context, stationID string) ([]models.Booking, error) {
	return c.list(ctx, "/booking/station/"+url.PathEscape(stationID))
}

// ByStatus returns the bookings in one status.
func (c *BookingsClient) ByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	return c.list(ctx, "/booking/status/"+url.PathEscape(string(status)))
}

// Get returns one booking.
func (c *BookingsClient) Get(ctx context.Context, id string) (models.Booking, error) {
	var out models.Booking
	err := c.base.Get(ctx, bookingPath(id), &out)
	return out, err
}

// Create posts a new booking record.
func (c *BookingsClient) Create(ctx context.Context, record map[string]any) (models.Booking, error) {
	var out models.Booking
	err := c.base.Post(ctx, "/booking", record, &out)
	return out, err
}

// Update sends the changed fields of a booking.
func (c *BookingsClient) Update(ctx context.Context, id string, record map[string]any) (models.Booking, error) {
	var out models.Booking
	err := c.base.Put(ctx, bookingPath(id), record, &out)
	return out, err
}

// Delete removes a booking.
func (c *BookingsClient) Delete(ctx context.Context, id string) error {
	return c.base.Delete(ctx, bookingPath(id), nil)
}

type statusRequest struct {
	Status models.BookingStatus `json:"status"`
}

// SetStatus calls the generic status endpoint.
func (c *BookingsClient) SetStatus(ctx context.Context, id string, status models.BookingStatus) (models.Booking, error) {
	var out models.Booking
	err := c.base.Put(ctx, bookingPath(id)+"/status", statusRequest{Status: status}, &out)
	return out, err
}

type approveRequest struct {
	Approve bool `json:"approve"`
}

// Approve calls the dedicated approval endpoint.
func (c *BookingsClient) Approve(ctx context.Context, id string) (models.Booking, error) {
	var out models.Booking
	err := c.base.Post(ctx, bookingPath(id)+"/approve", approveRequest{Approve: true}, &out)
	return out, err
}
