package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pricingRepo "servicecenter/database/repository/pricing"
	"servicecenter/models"
	"servicecenter/services/booking"
	"servicecenter/utils"
)

// PricingHandler exposes pricing resolution and the override write path
// (which enforces the no-overlapping-active-records rule).
type PricingHandler struct {
	Repo     pricingRepo.PricingRepository
	Resolver booking.PricingResolver
	Logger   *zap.Logger
}

func NewPricingHandler(repo pricingRepo.PricingRepository, resolver booking.PricingResolver, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{Repo: repo, Resolver: resolver, Logger: logger}
}

// ResolveHandler returns the effective price/duration for a model/service
// pair as of an optional date.
func (h *PricingHandler) ResolveHandler(c *gin.Context) {
	modelID := c.Query("modelId")
	serviceID := c.Query("serviceId")
	asOf := c.Query("asOf")
	if modelID == "" || serviceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "modelId and serviceId are required")
		return
	}
	if asOf != "" {
		if _, err := utils.ParseDate(asOf); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid asOf date", err.Error())
			return
		}
	}

	snapshot, err := h.Resolver.Resolve(c.Request.Context(), modelID, serviceID, asOf)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pricing": snapshot})
}

// CreateHandler persists a new pricing override after validating that its
// effective range overlaps no other active record for the pair.
func (h *PricingHandler) CreateHandler(c *gin.Context) {
	var input models.ModelServicePricing
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.ModelID == "" || input.ServiceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "modelId and serviceId are required")
		return
	}
	for _, d := range []*string{input.EffectiveDate, input.ExpiryDate} {
		if d != nil {
			if _, err := utils.ParseDate(*d); err != nil {
				utils.JSONError(c, http.StatusBadRequest, "invalid date", err.Error())
				return
			}
		}
	}
	input.IsActive = true

	ok, err := h.Resolver.ValidateNoDuplicate(c.Request.Context(), input.ModelID, input.ServiceID, "", input.EffectiveDate, input.ExpiryDate)
	if err != nil {
		h.Logger.Error("duplicate pricing validation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to validate pricing", err.Error())
		return
	}
	if !ok {
		respondBookingError(c, booking.NewDuplicatePricingOverlapError(
			"an active pricing record already covers part of this effective range"))
		return
	}

	if err := h.Repo.Create(c.Request.Context(), &input); err != nil {
		h.Logger.Error("failed to create pricing record", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to create pricing", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pricing": input})
}

// DeactivateHandler retires an override; resolution falls back to the
// catalog defaults.
func (h *PricingHandler) DeactivateHandler(c *gin.Context) {
	if err := h.Repo.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusNotFound, "pricing record not found", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}
