package booking

import (
	"errors"
	"fmt"
)

// Stable error codes for the booking core. Handlers map them to HTTP
// statuses and the payment worker uses them to classify failures as
// permanent (no retry) or transient (retry with backoff).
const (
	CodeSlotUnavailable         = "slotUnavailable"
	CodeNoPricingFound          = "noPricingFound"
	CodeInvalidStateTransition  = "invalidStateTransition"
	CodeDuplicatePricingOverlap = "duplicatePricingOverlap"
	CodeAppointmentNotFound     = "appointmentNotFound"
)

type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewSlotUnavailableError(msg string) error {
	return &BookingError{Code: CodeSlotUnavailable, Message: msg}
}

func NewNoPricingFoundError(msg string) error {
	return &BookingError{Code: CodeNoPricingFound, Message: msg}
}

func NewInvalidStateTransitionError(msg string) error {
	return &BookingError{Code: CodeInvalidStateTransition, Message: msg}
}

func NewDuplicatePricingOverlapError(msg string) error {
	return &BookingError{Code: CodeDuplicatePricingOverlap, Message: msg}
}

func NewAppointmentNotFoundError(msg string) error {
	return &BookingError{Code: CodeAppointmentNotFound, Message: msg}
}

// IsCode reports whether err is a BookingError carrying the given code.
func IsCode(err error, code string) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Code == code
}

// IsPermanentFailure reports whether a payment finalization failure should
// be dropped instead of retried: the appointment is unknown or already in a
// state the worker cannot act on.
func IsPermanentFailure(err error) bool {
	return IsCode(err, CodeAppointmentNotFound) || IsCode(err, CodeInvalidStateTransition)
}
