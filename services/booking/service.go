package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appointmentRepo "servicecenter/database/repository/appointment"
	reservationRepo "servicecenter/database/repository/reservation"
	"servicecenter/models"
	"servicecenter/utils"
)

// BookAppointmentRequest carries the inputs for creating an appointment.
type BookAppointmentRequest struct {
	CustomerID      string `json:"customerId" binding:"required"`
	ServiceCenterID string `json:"serviceCenterId" binding:"required"`
	SlotID          string `json:"slotId" binding:"required"`
	ModelID         string `json:"modelId" binding:"required"`
	ServiceID       string `json:"serviceId" binding:"required"`
	Priority        bool   `json:"priority"`
	Source          string `json:"source"`
	AppointmentDate string `json:"appointmentDate" binding:"required"`
	CustomerName    string `json:"customerName"`
	Notes           string `json:"notes"`
	// SynchronousPayment confirms the appointment inline instead of leaving
	// it pending for an asynchronous gateway confirmation.
	SynchronousPayment bool `json:"synchronousPayment"`
}

// AppointmentBookingService orchestrates pricing resolution, capacity
// reservation and the appointment state machine.
type AppointmentBookingService interface {
	Book(ctx context.Context, req BookAppointmentRequest) (*models.Appointment, error)
	Confirm(ctx context.Context, appointmentID string) (*models.Appointment, error)
	Cancel(ctx context.Context, appointmentID, reason string) (*models.Appointment, error)
	Complete(ctx context.Context, appointmentID string) (*models.Appointment, error)
}

type DefaultAppointmentBookingService struct {
	Appointments appointmentRepo.AppointmentRepository
	Capacity     SlotCapacityManager
	Pricing      PricingResolver
	// Reservations is optional; when set, freshly created appointments are
	// linked back onto their reservation for sweep diagnostics.
	Reservations reservationRepo.ReservationRepository
}

// Book resolves pricing first so a pricing failure never touches capacity,
// then reserves a unit and persists the appointment as pending with the
// frozen snapshot. Any later failure releases the reservation; no partial
// state survives.
func (s *DefaultAppointmentBookingService) Book(ctx context.Context, req BookAppointmentRequest) (*models.Appointment, error) {
	snapshot, err := s.Pricing.Resolve(ctx, req.ModelID, req.ServiceID, req.AppointmentDate)
	if err != nil {
		return nil, err
	}

	token, err := s.Capacity.Reserve(ctx, req.SlotID)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		CustomerID:       req.CustomerID,
		ServiceCenterID:  req.ServiceCenterID,
		SlotID:           req.SlotID,
		ModelID:          req.ModelID,
		ServiceID:        req.ServiceID,
		Status:           models.AppointmentStatusPending,
		Priority:         req.Priority,
		Source:           req.Source,
		AppointmentDate:  req.AppointmentDate,
		CustomerName:     req.CustomerName,
		Notes:            req.Notes,
		ReservationToken: token.ID,
		Pricing:          snapshot,
	}
	if err := s.Appointments.Create(ctx, appt); err != nil {
		s.releaseQuietly(ctx, *token)
		return nil, fmt.Errorf("failed to persist appointment: %w", err)
	}

	if s.Reservations != nil {
		if err := s.Reservations.AttachAppointment(ctx, token.ID, appt.ID); err != nil {
			utils.GetLogger().Warn("failed to attach appointment to reservation",
				zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}

	if req.SynchronousPayment {
		return s.Confirm(ctx, appt.ID)
	}
	return appt, nil
}

// Confirm transitions pending -> confirmed and commits the held unit. A
// commit failure is surfaced so the caller retries: swallowing it would
// leave the reservation held and the sweep would reclaim a confirmed
// appointment's capacity.
func (s *DefaultAppointmentBookingService) Confirm(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	token := ReservationToken{ID: appt.ReservationToken, SlotID: appt.SlotID}

	applied, err := s.Appointments.UpdateStatusIf(ctx, appointmentID,
		[]string{models.AppointmentStatusPending}, models.AppointmentStatusConfirmed, "")
	if err != nil {
		return nil, err
	}
	if !applied {
		fresh, err := s.getAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if fresh.Status != models.AppointmentStatusConfirmed {
			return nil, NewInvalidStateTransitionError(
				fmt.Sprintf("appointment %s is %s, only pending appointments can be confirmed", appointmentID, fresh.Status))
		}
		// Already confirmed: re-drive the commit so a retry after a failed
		// commit converges before reporting the duplicate confirmation.
		if err := s.Capacity.Commit(ctx, token); err != nil {
			return nil, fmt.Errorf("appointment %s confirmed but reservation not committed: %w", appointmentID, err)
		}
		return nil, NewInvalidStateTransitionError(
			fmt.Sprintf("appointment %s is already confirmed", appointmentID))
	}

	if err := s.Capacity.Commit(ctx, token); err != nil {
		return nil, fmt.Errorf("appointment %s confirmed but reservation not committed: %w", appointmentID, err)
	}

	appt.Status = models.AppointmentStatusConfirmed
	return appt, nil
}

// Cancel moves any non-terminal appointment to cancelled and releases its
// capacity unit. Cancelling an already-cancelled appointment re-drives the
// release (a no-op once it has gone through) and returns the current state,
// so a cancel retried after a failed release still frees the unit.
func (s *DefaultAppointmentBookingService) Cancel(ctx context.Context, appointmentID, reason string) (*models.Appointment, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	token := ReservationToken{ID: appt.ReservationToken, SlotID: appt.SlotID}

	if appt.Status == models.AppointmentStatusCancelled {
		if err := s.Capacity.Release(ctx, token); err != nil {
			return nil, fmt.Errorf("appointment %s cancelled but reservation not released: %w", appointmentID, err)
		}
		return appt, nil
	}
	if appt.Status == models.AppointmentStatusCompleted {
		return nil, NewInvalidStateTransitionError(
			fmt.Sprintf("appointment %s is completed and cannot be cancelled", appointmentID))
	}

	applied, err := s.Appointments.UpdateStatusIf(ctx, appointmentID,
		[]string{models.AppointmentStatusPending, models.AppointmentStatusConfirmed},
		models.AppointmentStatusCancelled, reason)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with another transition; report the fresh state, and if
		// the racer cancelled, make sure the unit really was freed.
		fresh, err := s.getAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}
		if fresh.Status == models.AppointmentStatusCancelled {
			if err := s.Capacity.Release(ctx, token); err != nil {
				return nil, fmt.Errorf("appointment %s cancelled but reservation not released: %w", appointmentID, err)
			}
		}
		return fresh, nil
	}

	if err := s.Capacity.Release(ctx, token); err != nil {
		return nil, fmt.Errorf("appointment %s cancelled but reservation not released: %w", appointmentID, err)
	}

	appt.Status = models.AppointmentStatusCancelled
	appt.CancelReason = reason
	return appt, nil
}

// Complete transitions confirmed -> completed.
func (s *DefaultAppointmentBookingService) Complete(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	applied, err := s.Appointments.UpdateStatusIf(ctx, appointmentID,
		[]string{models.AppointmentStatusConfirmed}, models.AppointmentStatusCompleted, "")
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, NewInvalidStateTransitionError(
			fmt.Sprintf("appointment %s is %s, only confirmed appointments can be completed", appointmentID, appt.Status))
	}

	appt.Status = models.AppointmentStatusCompleted
	return appt, nil
}

func (s *DefaultAppointmentBookingService) getAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, NewAppointmentNotFoundError(fmt.Sprintf("appointment %s not found", id))
	}
	if err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *DefaultAppointmentBookingService) releaseQuietly(ctx context.Context, token ReservationToken) {
	if err := s.Capacity.Release(ctx, token); err != nil {
		utils.GetLogger().Error("failed to release reservation after booking failure",
			zap.String("slotId", token.SlotID), zap.Error(err))
	}
}
