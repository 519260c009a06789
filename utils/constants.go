// File: utils/constants.go
package utils

import "time"

// PaymentPayloadKeyPrefix is the prefix for the Redis hash holding the
// latest gateway references (invoice, payment intent) per appointment.
const PaymentPayloadKeyPrefix = "payment:completion:"

// PaymentPayloadTTL bounds how long a stale payload hash may linger after
// its job has been dead-lettered or dropped.
const PaymentPayloadTTL = 24 * time.Hour

// PaymentPayloadKey returns the payload hash key for an appointment.
func PaymentPayloadKey(appointmentID string) string {
	return PaymentPayloadKeyPrefix + appointmentID
}
