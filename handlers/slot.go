package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	slotRepo "servicecenter/database/repository/slot"
	"servicecenter/models"
	"servicecenter/services/booking"
	"servicecenter/utils"
)

// SlotHandler exposes center schedules and the manual block/unblock hold.
type SlotHandler struct {
	Slots    slotRepo.TimeSlotRepository
	Capacity booking.SlotCapacityManager
	Logger   *zap.Logger
}

func NewSlotHandler(slots slotRepo.TimeSlotRepository, capacity booking.SlotCapacityManager, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{Slots: slots, Capacity: capacity, Logger: logger}
}

// ListHandler returns a center's slots for a date with availability derived
// per slot.
func (h *SlotHandler) ListHandler(c *gin.Context) {
	centerID := c.Query("centerId")
	date := c.Query("date")
	if centerID == "" || date == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "centerId and date are required")
		return
	}
	if _, err := utils.ParseDate(date); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	slots, err := h.Slots.GetByCenterAndDate(c.Request.Context(), centerID, date)
	if err != nil {
		h.Logger.Error("failed to list slots", zap.String("centerId", centerID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list slots", err.Error())
		return
	}

	now := time.Now()
	out := make([]models.SlotAvailability, 0, len(slots))
	for i := range slots {
		ts := &slots[i]
		view := models.SlotAvailability{
			ID:                ts.ID,
			SlotDate:          ts.SlotDate,
			StartTime:         ts.StartTime,
			EndTime:           ts.EndTime,
			SlotType:          ts.SlotType,
			RemainingCapacity: ts.RemainingCapacity(),
			IsAvailable:       ts.IsAvailable(now),
		}
		if ts.IsBlocked {
			view.Message = "slot is blocked"
			if ts.BlockReason != "" {
				view.Message = ts.BlockReason
			}
		}
		out = append(out, view)
	}
	c.JSON(http.StatusOK, gin.H{"slots": out})
}

// SetupHandler bulk-creates a center's slots (schedule setup).
func (h *SlotHandler) SetupHandler(c *gin.Context) {
	var input struct {
		Slots []models.TimeSlot `json:"slots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	for i := range input.Slots {
		ts := &input.Slots[i]
		if _, err := utils.ParseDate(ts.SlotDate); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid slotDate", err.Error())
			return
		}
		if _, err := utils.ParseClock(ts.StartTime); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid startTime", err.Error())
			return
		}
		if _, err := utils.ParseClock(ts.EndTime); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid endTime", err.Error())
			return
		}
		if ts.MaxBookings < 0 {
			utils.JSONError(c, http.StatusBadRequest, "invalid maxBookings", "capacity must be >= 0")
			return
		}
	}

	ids, err := h.Slots.CreateMany(c.Request.Context(), input.Slots)
	if err != nil {
		h.Logger.Error("failed to create slots", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to create slots", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"slotIds": ids})
}

// BlockHandler places a manual hold on a slot; existing bookings stay.
func (h *SlotHandler) BlockHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)
	if input.Reason == "" {
		input.Reason = "manual hold"
	}

	if err := h.Capacity.Block(c.Request.Context(), c.Param("id"), input.Reason); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to block slot", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

func (h *SlotHandler) UnblockHandler(c *gin.Context) {
	if err := h.Capacity.Unblock(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to unblock slot", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": false})
}
