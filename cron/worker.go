package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"servicecenter/config"
	"servicecenter/services/booking"
	"servicecenter/services/tasks"
	"servicecenter/utils"
)

// InitPaymentWorker starts the asynq worker pool draining the durable
// payment-completion queue in the background and returns the server so main
// can shut it down gracefully (in-flight jobs finish; queued jobs persist
// in Redis for the next startup).
//
// Per-appointment single-flight holds because the task id is derived from
// the appointment id: asynq never runs two live tasks with the same id.
func InitPaymentWorker(bookingSvc booking.AppointmentBookingService, cache *redis.Client) *asynq.Server {
	srv := asynq.NewServer(
		utils.QueueRedisOpt(),
		asynq.Config{
			Concurrency: config.AppConfig.PaymentWorkerCount,
			Queues: map[string]int{
				tasks.QueuePayments: 1,
			},
			RetryDelayFunc: paymentRetryDelay,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypePaymentComplete, handlePaymentCompletion(bookingSvc, cache))

	go func() {
		log.Println("[PaymentWorker] starting payment completion worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PaymentWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PaymentWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	return srv
}

// paymentRetryDelay implements exponential backoff: base * 2^n, capped.
func paymentRetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	delay := config.PaymentRetryBaseDelay() * time.Duration(1<<n)
	if max := config.PaymentRetryMaxDelay(); delay > max {
		delay = max
	}
	return delay
}

func handlePaymentCompletion(bookingSvc booking.AppointmentBookingService, cache *redis.Client) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		appointmentID, err := tasks.ParsePaymentTask(task)
		if err != nil {
			utils.GetLogger().Error("dropping malformed payment task", zap.Error(err))
			return nil
		}

		retryCount, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		return finalizePayment(ctx, bookingSvc, cache, appointmentID, retryCount, maxRetry)
	}
}

// finalizePayment confirms the appointment for a gateway-confirmed payment.
// Permanent failures are logged and dropped; transient ones are retried by
// asynq up to the ceiling, after which the appointment is cancelled (its
// capacity released) and the task is archived as dead-lettered.
func finalizePayment(ctx context.Context, bookingSvc booking.AppointmentBookingService, cache *redis.Client, appointmentID string, retryCount, maxRetry int) error {
	logger := utils.GetLogger()
	key := utils.PaymentPayloadKey(appointmentID)

	refs, err := cache.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Warn("failed to load payment payload hash",
			zap.String("appointmentId", appointmentID), zap.Error(err))
	}

	_, err = bookingSvc.Confirm(ctx, appointmentID)
	if err == nil {
		cache.Del(ctx, key)
		logger.Info("payment finalized",
			zap.String("appointmentId", appointmentID),
			zap.String("invoiceId", refs["invoiceId"]),
			zap.String("paymentIntentId", refs["paymentIntentId"]),
			zap.String("processedBy", refs["processedBy"]))
		return nil
	}

	if booking.IsPermanentFailure(err) {
		cache.Del(ctx, key)
		logger.Warn("payment finalization is a no-op, dropping job",
			zap.String("appointmentId", appointmentID), zap.Error(err))
		return nil
	}

	if retryCount >= maxRetry {
		if _, cancelErr := bookingSvc.Cancel(ctx, appointmentID, "payment finalization exhausted"); cancelErr != nil {
			logger.Error("failed to cancel appointment after retry exhaustion",
				zap.String("appointmentId", appointmentID), zap.Error(cancelErr))
		}
		cache.Del(ctx, key)
		return fmt.Errorf("payment finalization exhausted for appointment %s: %w", appointmentID, asynq.SkipRetry)
	}

	logger.Warn("payment finalization failed, will retry",
		zap.String("appointmentId", appointmentID),
		zap.Int("retryCount", retryCount),
		zap.Error(err))
	return err
}
