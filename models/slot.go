package models

import "time"

// Slot types supported by center schedules.
const (
	SlotTypeRegular     = "regular"
	SlotTypeExpress     = "express"
	SlotTypeMaintenance = "maintenance"
	SlotTypeCustom      = "custom"
)

// TimeSlot represents a fixed booking window at a service center.
// CurrentBookings is only ever mutated through the capacity manager;
// Version backs the optimistic concurrency check on counter updates.
type TimeSlot struct {
	ID              string `bson:"id" json:"id"`
	CenterID        string `bson:"centerId" json:"centerId"`
	SlotDate        string `bson:"slotDate" json:"slotDate"`   // e.g., "2025-02-25"
	StartTime       string `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime         string `bson:"endTime" json:"endTime"`     // "HH:mm"
	DurationMinutes int    `bson:"durationMinutes" json:"durationMinutes"`
	MaxBookings     int    `bson:"maxBookings" json:"maxBookings"`
	CurrentBookings int    `bson:"currentBookings" json:"currentBookings"`
	IsBlocked       bool   `bson:"isBlocked" json:"isBlocked"`
	BlockReason     string `bson:"blockReason,omitempty" json:"blockReason,omitempty"`
	SlotType        string `bson:"slotType" json:"slotType"`
	Version         int    `bson:"version" json:"version"`
}

// RemainingCapacity returns the number of units still open on the slot.
func (ts *TimeSlot) RemainingCapacity() int {
	return ts.MaxBookings - ts.CurrentBookings
}

// StartsAt combines SlotDate and StartTime into an absolute time in the
// local location. Returns the zero time if either field is malformed.
func (ts *TimeSlot) StartsAt() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", ts.SlotDate+" "+ts.StartTime, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// IsAvailable reports whether the slot can accept a new reservation at the
// given instant: not blocked, capacity remaining, and not already started.
func (ts *TimeSlot) IsAvailable(now time.Time) bool {
	if ts.IsBlocked || ts.RemainingCapacity() <= 0 {
		return false
	}
	start := ts.StartsAt()
	return !start.IsZero() && start.After(now)
}

// CapacityInRange reports whether the booking counter still respects
// 0 <= CurrentBookings <= MaxBookings. A violation is a fatal invariant
// breach; the slot is blocked pending manual reconciliation.
func (ts *TimeSlot) CapacityInRange() bool {
	return ts.CurrentBookings >= 0 && ts.CurrentBookings <= ts.MaxBookings
}

// SlotAvailability is the read-side view returned to clients listing a
// center's schedule.
type SlotAvailability struct {
	ID                string `json:"id"`
	SlotDate          string `json:"slotDate"`
	StartTime         string `json:"startTime"`
	EndTime           string `json:"endTime"`
	SlotType          string `json:"slotType"`
	RemainingCapacity int    `json:"remainingCapacity"`
	IsAvailable       bool   `json:"isAvailable"`
	Message           string `json:"message,omitempty"`
}
