// File: routes/routes.go
package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"servicecenter/handlers"
	"servicecenter/utils"
)

// HandlerBundle aggregates the HTTP handlers wired in main.
type HandlerBundle struct {
	Appointment *handlers.AppointmentHandler
	Slot        *handlers.SlotHandler
	Pricing     *handlers.PricingHandler
	Payment     *handlers.PaymentHandler
}

// RegisterAppointmentRoutes registers the booking state machine and listing
// endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.POST("", hb.Appointment.BookHandler)
		api.GET("", hb.Appointment.ListHandler)
		api.GET("/:id", hb.Appointment.DetailHandler)
		api.PUT("/:id/confirm", hb.Appointment.ConfirmHandler)
		api.PUT("/:id/cancel", hb.Appointment.CancelHandler)
		api.PUT("/:id/complete", hb.Appointment.CompleteHandler)
	}
}

// RegisterSlotRoutes registers schedule setup, availability and blocking
// endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.GET("", hb.Slot.ListHandler)
		api.POST("/setup", hb.Slot.SetupHandler)
		api.PUT("/:id/block", hb.Slot.BlockHandler)
		api.PUT("/:id/unblock", hb.Slot.UnblockHandler)
	}
}

// RegisterPricingRoutes registers pricing resolution and override management.
func RegisterPricingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/pricing")
	{
		api.GET("/resolve", hb.Pricing.ResolveHandler)
		api.POST("", hb.Pricing.CreateHandler)
		api.PUT("/:id/deactivate", hb.Pricing.DeactivateHandler)
	}
}

// RegisterPaymentRoutes registers the gateway confirmation endpoint.
func RegisterPaymentRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("/confirmation", hb.Payment.ConfirmationHandler)
	}
}

// RegisterHealthRoute registers the liveness endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", utils.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAppointmentRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
	RegisterPricingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterHealthRoute(r)
}
