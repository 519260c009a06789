package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	reservationRepo "servicecenter/database/repository/reservation"
	slotRepo "servicecenter/database/repository/slot"
	"servicecenter/models"
	"servicecenter/utils"
)

// ReservationToken is the opaque handle representing one held capacity unit
// on a slot, exchanged between Reserve, Commit and Release.
type ReservationToken struct {
	ID     string
	SlotID string
}

// SlotCapacityManager owns the 0 <= CurrentBookings <= MaxBookings invariant
// and performs atomic reserve/release transitions on slots.
type SlotCapacityManager interface {
	Reserve(ctx context.Context, slotID string) (*ReservationToken, error)
	Release(ctx context.Context, token ReservationToken) error
	Commit(ctx context.Context, token ReservationToken) error
	Block(ctx context.Context, slotID, reason string) error
	Unblock(ctx context.Context, slotID string) error
}

// DefaultSlotCapacityManager serializes counter updates per slot: a keyed
// mutex covers in-process callers and the repository's version CAS covers
// concurrent writers on other instances. Unrelated slots never contend.
type DefaultSlotCapacityManager struct {
	Slots        slotRepo.TimeSlotRepository
	Reservations reservationRepo.ReservationRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Bounded CAS retries for losing the version race to another writer.
const maxCASAttempts = 3

func NewSlotCapacityManager(slots slotRepo.TimeSlotRepository, reservations reservationRepo.ReservationRepository) *DefaultSlotCapacityManager {
	return &DefaultSlotCapacityManager{
		Slots:        slots,
		Reservations: reservations,
		locks:        make(map[string]*sync.Mutex),
	}
}

func (m *DefaultSlotCapacityManager) slotLock(slotID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, exists := m.locks[slotID]
	if !exists {
		lock = &sync.Mutex{}
		m.locks[slotID] = lock
	}
	return lock
}

// Reserve atomically checks availability and increments the slot counter,
// recording a held reservation. Two concurrent calls against one remaining
// unit resolve to exactly one success and one SlotUnavailable failure.
func (m *DefaultSlotCapacityManager) Reserve(ctx context.Context, slotID string) (*ReservationToken, error) {
	lock := m.slotLock(slotID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		slot, err := m.Slots.GetByID(ctx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrNotFound) {
				return nil, NewSlotUnavailableError(fmt.Sprintf("slot %s does not exist", slotID))
			}
			return nil, err
		}

		if !slot.CapacityInRange() {
			// Fatal invariant breach: halt reservations on this slot until
			// someone reconciles the counter by hand.
			m.haltSlot(ctx, slot)
			return nil, NewSlotUnavailableError(fmt.Sprintf("slot %s counter out of range; slot halted", slotID))
		}
		if !slot.IsAvailable(time.Now()) {
			return nil, NewSlotUnavailableError(fmt.Sprintf("slot %s is blocked, full, or in the past", slotID))
		}

		err = m.Slots.AdjustBookings(ctx, slotID, 1, slot.Version)
		if errors.Is(err, slotRepo.ErrVersionConflict) || errors.Is(err, slotRepo.ErrCapacityGuard) {
			continue // another writer won; re-read and re-check availability
		}
		if err != nil {
			return nil, err
		}

		res := &models.Reservation{SlotID: slotID, State: models.ReservationStateHeld}
		if err := m.Reservations.Create(ctx, res); err != nil {
			// Undo the increment so the failed reservation cannot leak a unit.
			m.rollbackIncrement(ctx, slotID)
			return nil, err
		}
		return &ReservationToken{ID: res.ID, SlotID: slotID}, nil
	}
	return nil, NewSlotUnavailableError(fmt.Sprintf("slot %s is under heavy contention", slotID))
}

// Release decrements the slot counter for the token. Idempotent: releasing
// an already-released token is a no-op so duplicate cancellation signals
// are tolerated.
func (m *DefaultSlotCapacityManager) Release(ctx context.Context, token ReservationToken) error {
	lock := m.slotLock(token.SlotID)
	lock.Lock()
	defer lock.Unlock()

	applied, err := m.Reservations.Transition(ctx, token.ID,
		[]string{models.ReservationStateHeld, models.ReservationStateCommitted},
		models.ReservationStateReleased)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}
	if err := m.adjustWithRetry(ctx, token.SlotID, -1); err != nil {
		// Put the reservation back to held so a retry or the recovery sweep
		// re-drives the decrement instead of stranding it as released with
		// the counter still charged.
		if _, revertErr := m.Reservations.Transition(ctx, token.ID,
			[]string{models.ReservationStateReleased}, models.ReservationStateHeld); revertErr != nil {
			utils.GetLogger().Error("failed to revert reservation after release failure",
				zap.String("reservationId", token.ID), zap.Error(revertErr))
		}
		return err
	}
	return nil
}

// Commit marks the held unit durable. The counter is untouched; the state
// change is what lets the recovery sweep tell a committed reservation from
// one orphaned by a crash between Reserve and Commit.
func (m *DefaultSlotCapacityManager) Commit(ctx context.Context, token ReservationToken) error {
	applied, err := m.Reservations.Transition(ctx, token.ID,
		[]string{models.ReservationStateHeld},
		models.ReservationStateCommitted)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	res, err := m.Reservations.GetByID(ctx, token.ID)
	if err != nil {
		return err
	}
	if res.State == models.ReservationStateCommitted {
		return nil
	}
	return fmt.Errorf("reservation %s cannot be committed from state %s", token.ID, res.State)
}

// Block rejects new reservations on the slot without evicting existing
// bookings; Unblock lifts the hold.
func (m *DefaultSlotCapacityManager) Block(ctx context.Context, slotID, reason string) error {
	return m.Slots.SetBlocked(ctx, slotID, true, reason)
}

func (m *DefaultSlotCapacityManager) Unblock(ctx context.Context, slotID string) error {
	return m.Slots.SetBlocked(ctx, slotID, false, "")
}

// adjustWithRetry re-reads the slot version and retries the CAS a bounded
// number of times. Callers hold the per-slot lock, so conflicts only come
// from writers outside this process.
func (m *DefaultSlotCapacityManager) adjustWithRetry(ctx context.Context, slotID string, delta int) error {
	var lastErr error
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		slot, err := m.Slots.GetByID(ctx, slotID)
		if err != nil {
			return err
		}
		err = m.Slots.AdjustBookings(ctx, slotID, delta, slot.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, slotRepo.ErrVersionConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func (m *DefaultSlotCapacityManager) rollbackIncrement(ctx context.Context, slotID string) {
	if err := m.adjustWithRetry(ctx, slotID, -1); err != nil {
		utils.GetLogger().Error("failed to roll back slot increment",
			zap.String("slotId", slotID), zap.Error(err))
	}
}

func (m *DefaultSlotCapacityManager) haltSlot(ctx context.Context, slot *models.TimeSlot) {
	utils.GetLogger().Error("slot booking counter outside [0, MaxBookings]",
		zap.String("slotId", slot.ID),
		zap.Int("currentBookings", slot.CurrentBookings),
		zap.Int("maxBookings", slot.MaxBookings))
	if err := m.Slots.SetBlocked(ctx, slot.ID, true, "capacity invariant breach"); err != nil {
		utils.GetLogger().Error("failed to halt breached slot", zap.String("slotId", slot.ID), zap.Error(err))
	}
}
