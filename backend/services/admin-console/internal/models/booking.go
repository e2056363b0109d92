package models

// BookingStatus is the server-side lifecycle state of a reservation.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingApproved  BookingStatus = "Approved"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

// BookingStatuses lists every status in display order.
var BookingStatuses = []BookingStatus{BookingPending, BookingApproved, BookingCancelled, BookingCompleted}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingApproved, BookingCancelled},
	BookingApproved: {BookingCompleted},
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingApproved, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Transitions returns the statuses the console offers from s.
// Terminal and unknown statuses offer none.
func (s BookingStatus) Transitions() []BookingStatus {
	next := bookingTransitions[s]
	out := make([]BookingStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether target is offered from s.
func (s BookingStatus) CanTransition(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Terminal reports whether s is Cancelled or Completed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Booking is a reservation of a station slot by an owner NIC.
type Booking struct {
	ID              string        `json:"id"`
	StationID       string        `json:"stationId"`
	OwnerNIC        string        `json:"ownerNIC"`
	ReservationTime Timestamp     `json:"reservationTime"`
	Status          BookingStatus `json:"status"`
	CreatedAt       Timestamp     `json:"createdAt"`
	UpdatedAt       Timestamp     `json:"updatedAt"`
	QRCodeBase64    string        `json:"qrCodeBase64,omitempty"`
}

// BookingInput is the create/update payload of the booking form.
type BookingInput struct {
	StationID       string    `json:"stationId"`
	OwnerNIC        string    `json:"ownerNIC"`
	ReservationTime Timestamp `json:"reservationTime"`
}

// Record returns the input as a field map for schema validation.
func (in BookingInput) Record() map[string]any {
	return map[string]any{
		"stationId":       in.StationID,
		"reservationTime": in.ReservationTime.String(),
		"ownerNIC":        in.OwnerNIC,
	}
}

// BookingCounts are the per-status totals shown above the booking table.
type BookingCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Cancelled int `json:"cancelled"`
	Completed int `json:"completed"`
}
