package booking

import (
	"context"
	"time"

	"go.uber.org/zap"

	reservationRepo "servicecenter/database/repository/reservation"
	"servicecenter/utils"
)

// ReservationSweeper periodically reclaims reservations that stayed held
// past the timeout window: a crash between Reserve and Commit/Release would
// otherwise leak the capacity unit forever.
type ReservationSweeper struct {
	Reservations reservationRepo.ReservationRepository
	Capacity     SlotCapacityManager
	Interval     time.Duration
	HoldTimeout  time.Duration
}

// Run blocks, sweeping on every tick until the context is cancelled.
func (s *ReservationSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReservationSweeper) sweep(ctx context.Context) {
	logger := utils.GetLogger()
	cutoff := time.Now().Add(-s.HoldTimeout)

	stale, err := s.Reservations.ListHeldBefore(ctx, cutoff)
	if err != nil {
		logger.Error("reservation sweep query failed", zap.Error(err))
		return
	}
	for _, res := range stale {
		token := ReservationToken{ID: res.ID, SlotID: res.SlotID}
		if err := s.Capacity.Release(ctx, token); err != nil {
			logger.Error("failed to auto-release stale reservation",
				zap.String("reservationId", res.ID),
				zap.String("slotId", res.SlotID),
				zap.Error(err))
			continue
		}
		logger.Warn("auto-released stale reservation",
			zap.String("reservationId", res.ID),
			zap.String("slotId", res.SlotID),
			zap.String("appointmentId", res.AppointmentID),
			zap.Time("heldAt", res.HeldAt))
	}
}
