package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecenter/models"
	"servicecenter/services/booking"
	"servicecenter/utils"
)

// AppointmentHandler exposes the booking state machine and the read-side
// listing over HTTP.
type AppointmentHandler struct {
	Booking booking.AppointmentBookingService
	Query   booking.AppointmentQueryEngine
	Logger  *zap.Logger
}

func NewAppointmentHandler(bookingSvc booking.AppointmentBookingService, queryEngine booking.AppointmentQueryEngine, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Booking: bookingSvc, Query: queryEngine, Logger: logger}
}

// BookHandler creates a pending appointment (or confirms it inline for
// synchronous payment flows).
func (h *AppointmentHandler) BookHandler(c *gin.Context) {
	var req booking.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if _, err := utils.ParseDate(req.AppointmentDate); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid appointmentDate", err.Error())
		return
	}

	appt, err := h.Booking.Book(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) ConfirmHandler(c *gin.Context) {
	appt, err := h.Booking.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) CancelHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	// Reason is optional; ignore body decode errors for empty bodies.
	_ = c.ShouldBindJSON(&input)

	appt, err := h.Booking.Cancel(c.Request.Context(), c.Param("id"), input.Reason)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

func (h *AppointmentHandler) CompleteHandler(c *gin.Context) {
	appt, err := h.Booking.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": appt})
}

// DetailHandler returns a single appointment joined with its slot.
func (h *AppointmentHandler) DetailHandler(c *gin.Context) {
	details, err := h.Query.GetDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": details})
}

// ListHandler serves the filtered/sorted/paginated appointment listing.
func (h *AppointmentHandler) ListHandler(c *gin.Context) {
	var q models.AppointmentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	page, err := h.Query.Search(c.Request.Context(), q)
	if err != nil {
		h.Logger.Error("appointment listing failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list appointments", err.Error())
		return
	}
	c.JSON(http.StatusOK, page)
}

// bookingErrorStatus maps the booking error taxonomy onto HTTP statuses.
var bookingErrorStatus = map[string]int{
	booking.CodeSlotUnavailable:         http.StatusConflict,
	booking.CodeNoPricingFound:          http.StatusUnprocessableEntity,
	booking.CodeInvalidStateTransition:  http.StatusConflict,
	booking.CodeAppointmentNotFound:     http.StatusNotFound,
	booking.CodeDuplicatePricingOverlap: http.StatusConflict,
}

func respondBookingError(c *gin.Context, err error) {
	var be *booking.BookingError
	if errors.As(err, &be) {
		if status, ok := bookingErrorStatus[be.Code]; ok {
			utils.JSONErrorWithCode(c, status, be.Code, be.Message)
			return
		}
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}
