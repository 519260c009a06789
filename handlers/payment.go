package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecenter/models"
	"servicecenter/services/booking"
	"servicecenter/services/tasks"
	"servicecenter/utils"
)

// PaymentHandler consumes gateway confirmation signals. A successful
// confirmation enqueues the durable finalization job; a failure cancels the
// appointment and releases its capacity.
type PaymentHandler struct {
	Queue   *tasks.PaymentQueue
	Booking booking.AppointmentBookingService
	Logger  *zap.Logger
}

func NewPaymentHandler(queue *tasks.PaymentQueue, bookingSvc booking.AppointmentBookingService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Queue: queue, Booking: bookingSvc, Logger: logger}
}

func (h *PaymentHandler) ConfirmationHandler(c *gin.Context) {
	var signal models.PaymentConfirmation
	if err := c.ShouldBindJSON(&signal); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if !signal.Success {
		reason := "payment failed"
		if signal.FailureReason != "" {
			reason = "payment failed: " + signal.FailureReason
		}
		appt, err := h.Booking.Cancel(c.Request.Context(), signal.AppointmentID, reason)
		if err != nil {
			respondBookingError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"appointment": appt})
		return
	}

	payload := models.PaymentCompletionPayload{
		AppointmentID:   signal.AppointmentID,
		InvoiceID:       signal.InvoiceID,
		PaymentIntentID: signal.PaymentIntentID,
	}
	if err := h.Queue.Enqueue(c.Request.Context(), payload); err != nil {
		h.Logger.Error("failed to enqueue payment completion",
			zap.String("appointmentId", signal.AppointmentID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to enqueue payment completion", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": true})
}
