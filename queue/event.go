// Package queue publishes front-desk lifecycle events to the message broker.
package queue

import "time"

// Event types.
const (
	RoomCreated          = "room.created"
	RoomStatusChanged    = "room.status_changed"
	GuestCheckedIn       = "guest.checked_in"
	GuestCheckedOut      = "guest.checked_out"
	StayExtended         = "stay.extended"
	PaymentRecorded      = "payment.recorded"
	ReservationCreated   = "reservation.created"
	ReservationCancelled = "reservation.cancelled"
)

// Event carries enough of a lifecycle change for consumers to act without
// reading the database.
type Event struct {
	Type          string `json:"type"`
	RoomID        uint   `json:"room_id,omitempty"`
	RoomNo        string `json:"room_no,omitempty"`
	StayID        uint   `json:"stay_id,omitempty"`
	ReservationID uint   `json:"reservation_id,omitempty"`
	FromStatus    string `json:"from_status,omitempty"`
	ToStatus      string `json:"to_status,omitempty"`
	GuestName     string `json:"guest_name,omitempty"`
	Amount        string `json:"amount,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// Stamp sets OccurredAt when it is empty.
func (e Event) Stamp(now time.Time) Event {
	if e.OccurredAt == "" {
		e.OccurredAt = now.UTC().Format(time.RFC3339)
	}
	return e
}
