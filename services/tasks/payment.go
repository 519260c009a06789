package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"servicecenter/models"
	"servicecenter/utils"
)

const TypePaymentComplete = "payment:complete"

// QueuePayments is the asynq queue name the payment worker drains.
const QueuePayments = "payments"

// taskEnqueuer is the slice of *asynq.Client the queue needs; narrowed for
// testability.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// paymentTaskPayload is the minimal durable task body. The mutable gateway
// references live in a Redis hash so a re-enqueue while the job is
// outstanding updates them without duplicating the task.
type paymentTaskPayload struct {
	AppointmentID string `json:"appointmentId"`
}

// PaymentQueue enqueues payment-completion jobs. Enqueue is idempotent per
// appointment: the asynq task id is derived from the appointment id, so a
// second enqueue while one is outstanding only refreshes the payload hash.
type PaymentQueue struct {
	Client     taskEnqueuer
	Cache      *redis.Client
	MaxRetries int
}

func NewPaymentQueue(client *asynq.Client, cache *redis.Client, maxRetries int) *PaymentQueue {
	return &PaymentQueue{Client: client, Cache: cache, MaxRetries: maxRetries}
}

func (q *PaymentQueue) Enqueue(ctx context.Context, payload models.PaymentCompletionPayload) error {
	if payload.AppointmentID == "" {
		return fmt.Errorf("payment completion payload missing appointment id")
	}
	if payload.ProcessedBy == "" {
		payload.ProcessedBy = "system"
	}
	if payload.EnqueuedAt.IsZero() {
		payload.EnqueuedAt = time.Now()
	}

	// Latest gateway references win; the worker reads them at processing
	// time.
	key := utils.PaymentPayloadKey(payload.AppointmentID)
	fields := map[string]interface{}{
		"invoiceId":       payload.InvoiceID,
		"paymentIntentId": payload.PaymentIntentID,
		"processedBy":     payload.ProcessedBy,
		"enqueuedAt":      payload.EnqueuedAt.Format(time.RFC3339),
	}
	if err := q.Cache.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("failed to record payment payload: %w", err)
	}
	q.Cache.Expire(ctx, key, utils.PaymentPayloadTTL)

	body, err := json.Marshal(paymentTaskPayload{AppointmentID: payload.AppointmentID})
	if err != nil {
		return fmt.Errorf("failed to marshal payment task: %w", err)
	}

	task := asynq.NewTask(TypePaymentComplete, body)
	opts := []asynq.Option{
		asynq.TaskID(TypePaymentComplete + ":" + payload.AppointmentID),
		asynq.Queue(QueuePayments),
		asynq.MaxRetry(q.MaxRetries),
	}
	_, err = q.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// A job for this appointment is already outstanding; the refreshed
		// hash is all the update it needs.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue payment completion: %w", err)
	}
	return nil
}

// ParsePaymentTask decodes a worker-side task body.
func ParsePaymentTask(task *asynq.Task) (string, error) {
	var p paymentTaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return "", fmt.Errorf("invalid payment task payload: %w", err)
	}
	if p.AppointmentID == "" {
		return "", fmt.Errorf("payment task payload missing appointment id")
	}
	return p.AppointmentID, nil
}
