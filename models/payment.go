package models

import "time"

// PaymentCompletionPayload describes a pending payment finalization job.
// At most one job is outstanding per appointment; re-enqueuing while one is
// outstanding updates InvoiceID/PaymentIntentID instead of duplicating it.
type PaymentCompletionPayload struct {
	AppointmentID   string    `json:"appointmentId"`
	InvoiceID       string    `json:"invoiceId,omitempty"`
	PaymentIntentID string    `json:"paymentIntentId,omitempty"`
	ProcessedBy     string    `json:"processedBy,omitempty"` // defaults to "system"
	EnqueuedAt      time.Time `json:"enqueuedAt"`
}

// PaymentConfirmation is the gateway confirmation signal consumed at the
// boundary. The core does not speak any gateway protocol; it only reacts to
// the success flag.
type PaymentConfirmation struct {
	AppointmentID   string `json:"appointmentId" binding:"required"`
	InvoiceID       string `json:"invoiceId,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	Success         bool   `json:"success"`
	FailureReason   string `json:"failureReason,omitempty"`
}
