package models

import "time"

// Reservation lifecycle states. A reservation created by Reserve stays
// "held" until the booking flow either commits or releases it; held
// reservations older than the configured window are swept and auto-released
// so a crash between Reserve and Commit cannot leak capacity.
const (
	ReservationStateHeld      = "held"
	ReservationStateCommitted = "committed"
	ReservationStateReleased  = "released"
)

// Reservation records one held capacity unit on a slot. Its ID doubles as
// the opaque reservation token handed back by Reserve.
type Reservation struct {
	ID            string    `bson:"id" json:"id"`
	SlotID        string    `bson:"slotId" json:"slotId"`
	AppointmentID string    `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`
	State         string    `bson:"state" json:"state"`
	HeldAt        time.Time `bson:"heldAt" json:"heldAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
