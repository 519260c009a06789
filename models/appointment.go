package models

import "time"

// Appointment status state machine:
// pending -> {confirmed, cancelled}; confirmed -> {completed, cancelled};
// completed and cancelled are terminal.
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// PricingSnapshot freezes the resolved price/duration onto an appointment at
// booking time so later catalog or override changes never alter it.
type PricingSnapshot struct {
	PricingID        string    `bson:"pricingId,omitempty" json:"pricingId,omitempty"` // empty on the catalog-default path
	FinalPrice       float64   `bson:"finalPrice" json:"finalPrice"`
	FinalTimeMinutes int       `bson:"finalTimeMinutes" json:"finalTimeMinutes"`
	ResolvedAt       time.Time `bson:"resolvedAt" json:"resolvedAt"`
}

// Appointment represents one customer booking holding a single capacity unit
// on a time slot.
type Appointment struct {
	ID               string           `bson:"id" json:"id"`
	CustomerID       string           `bson:"customerId" json:"customerId"`
	ServiceCenterID  string           `bson:"serviceCenterId" json:"serviceCenterId"`
	SlotID           string           `bson:"slotId" json:"slotId"`
	ModelID          string           `bson:"modelId" json:"modelId"`
	ServiceID        string           `bson:"serviceId" json:"serviceId"`
	Status           string           `bson:"status" json:"status"`
	Priority         bool             `bson:"priority,omitempty" json:"priority,omitempty"`
	Source           string           `bson:"source,omitempty" json:"source,omitempty"` // e.g., "web", "phone", "walk-in"
	AppointmentDate  string           `bson:"appointmentDate" json:"appointmentDate"`   // "2006-01-02"
	CustomerName     string           `bson:"customerName,omitempty" json:"customerName,omitempty"`
	Notes            string           `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelReason     string           `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	ReservationToken string           `bson:"reservationToken" json:"-"`
	Pricing          *PricingSnapshot `bson:"pricing,omitempty" json:"pricing,omitempty"`
	CreatedAt        time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the appointment can no longer transition.
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCompleted || a.Status == AppointmentStatusCancelled
}

// AppointmentDetails is an appointment joined with its slot for detail views.
type AppointmentDetails struct {
	Appointment `bson:",inline"`
	Slot        *TimeSlot `bson:"slot,omitempty" json:"slot,omitempty"`
}
