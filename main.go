// File: main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicecenter/config"
	"servicecenter/cron"
	"servicecenter/database"
	appointmentRepo "servicecenter/database/repository/appointment"
	pricingRepo "servicecenter/database/repository/pricing"
	reservationRepo "servicecenter/database/repository/reservation"
	slotRepo "servicecenter/database/repository/slot"
	"servicecenter/handlers"
	"servicecenter/middleware"
	"servicecenter/routes"
	"servicecenter/services/booking"
	"servicecenter/services/tasks"
	"servicecenter/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slots := slotRepo.NewMongoTimeSlotRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	reservations := reservationRepo.NewMongoReservationRepo()
	pricings, catalog := pricingRepo.NewMongoPricingRepo()

	// services.
	capacityManager := booking.NewSlotCapacityManager(slots, reservations)
	pricingResolver := &booking.DefaultPricingResolver{
		Repo:    pricings,
		Catalog: catalog,
	}
	bookingService := &booking.DefaultAppointmentBookingService{
		Appointments: appointments,
		Capacity:     capacityManager,
		Pricing:      pricingResolver,
		Reservations: reservations,
	}
	queryEngine := &booking.DefaultAppointmentQueryEngine{
		Repo:        appointments,
		MaxPageSize: config.AppConfig.MaxPageSize,
	}

	// durable payment-completion queue.
	asynqClient := asynq.NewClient(utils.QueueRedisOpt())
	defer asynqClient.Close()
	paymentQueue := tasks.NewPaymentQueue(asynqClient, utils.GetCacheClient(), config.AppConfig.PaymentMaxRetries)
	workerSrv := cron.InitPaymentWorker(bookingService, utils.GetCacheClient())

	// stale reservation recovery.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	sweeper := &booking.ReservationSweeper{
		Reservations: reservations,
		Capacity:     capacityManager,
		Interval:     config.ReservationSweepInterval(),
		HoldTimeout:  config.ReservationHoldTimeout(),
	}
	go sweeper.Run(sweepCtx)

	// Assemble the handler bundle and register routes.
	handlerBundle := &routes.HandlerBundle{
		Appointment: handlers.NewAppointmentHandler(bookingService, queryEngine, logger),
		Slot:        handlers.NewSlotHandler(slots, capacityManager, logger),
		Pricing:     handlers.NewPricingHandler(pricings, pricingResolver, logger),
		Payment:     handlers.NewPaymentHandler(paymentQueue, bookingService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	stopSweep()
	workerSrv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
