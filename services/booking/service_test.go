package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicecenter/models"
)

// flakyCapacity fails a set number of Commit or Release calls with a
// transient error before delegating to the wrapped manager.
type flakyCapacity struct {
	SlotCapacityManager
	mu              sync.Mutex
	commitFailures  int
	releaseFailures int
}

func (f *flakyCapacity) Commit(ctx context.Context, token ReservationToken) error {
	f.mu.Lock()
	if f.commitFailures > 0 {
		f.commitFailures--
		f.mu.Unlock()
		return errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.SlotCapacityManager.Commit(ctx, token)
}

func (f *flakyCapacity) Release(ctx context.Context, token ReservationToken) error {
	f.mu.Lock()
	if f.releaseFailures > 0 {
		f.releaseFailures--
		f.mu.Unlock()
		return errors.New("connection reset")
	}
	f.mu.Unlock()
	return f.SlotCapacityManager.Release(ctx, token)
}

type bookingFixture struct {
	svc          *DefaultAppointmentBookingService
	slots        *memSlotRepo
	appointments *memAppointmentRepo
	reservations *memReservationRepo
	pricing      *memPricingRepo
}

func newBookingFixture(t *testing.T, slots ...*models.TimeSlot) *bookingFixture {
	t.Helper()

	slotStore := newMemSlotRepo(slots...)
	reservations := newMemReservationRepo()
	appointments := newMemAppointmentRepo()
	pricing := newMemPricingRepo()
	pricing.addService(models.Service{
		ID:                  "svc-oil",
		Name:                "Oil Change",
		BasePrice:           500,
		StandardTimeMinutes: 60,
		IsActive:            true,
	})

	svc := &DefaultAppointmentBookingService{
		Appointments: appointments,
		Capacity:     NewSlotCapacityManager(slotStore, reservations),
		Pricing:      &DefaultPricingResolver{Repo: pricing, Catalog: pricing},
		Reservations: reservations,
	}
	return &bookingFixture{
		svc:          svc,
		slots:        slotStore,
		appointments: appointments,
		reservations: reservations,
		pricing:      pricing,
	}
}

func bookRequest(slotID string) BookAppointmentRequest {
	return BookAppointmentRequest{
		CustomerID:      "cust-1",
		ServiceCenterID: "center-1",
		SlotID:          slotID,
		ModelID:         "model-a",
		ServiceID:       "svc-oil",
		AppointmentDate: time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		CustomerName:    "Jordan Smith",
		Source:          "web",
	}
}

func TestBookCreatesPendingAppointment(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 1))

	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPending, appt.Status)
	require.NotNil(t, appt.Pricing)
	assert.Equal(t, 500.0, appt.Pricing.FinalPrice)
	assert.Equal(t, 60, appt.Pricing.FinalTimeMinutes)

	// Capacity consumed: slot went 1/2 -> 2/2.
	assert.Equal(t, 2, f.slots.snapshot("slot-1").CurrentBookings)

	// Reservation is linked back to the appointment.
	res, err := f.reservations.GetByID(context.Background(), appt.ReservationToken)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, res.AppointmentID)

	// The slot is now full; the next booking bounces.
	_, err = f.svc.Book(context.Background(), bookRequest("slot-1"))
	assert.True(t, IsCode(err, CodeSlotUnavailable))
}

func TestBookFreezesPricingSnapshot(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	require.NoError(t, f.pricing.Create(context.Background(), &models.ModelServicePricing{
		ID:          "p1",
		ModelID:     "model-a",
		ServiceID:   "svc-oil",
		CustomPrice: floatPtr(300),
		IsActive:    true,
	}))

	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)
	assert.Equal(t, 300.0, appt.Pricing.FinalPrice)

	// Retiring the override later must not alter the stored snapshot.
	require.NoError(t, f.pricing.Deactivate(context.Background(), "p1"))
	stored, err := f.appointments.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, stored.Pricing.FinalPrice)
}

func TestBookPricingFailureTouchesNoCapacity(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))

	req := bookRequest("slot-1")
	req.ServiceID = "svc-unknown"
	_, err := f.svc.Book(context.Background(), req)
	assert.True(t, IsCode(err, CodeNoPricingFound))
	assert.Equal(t, 0, f.slots.snapshot("slot-1").CurrentBookings)
}

func TestBookPersistFailureReleasesReservation(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	f.appointments.createErr = errors.New("write concern failure")

	_, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.Error(t, err)
	assert.Equal(t, 0, f.slots.snapshot("slot-1").CurrentBookings)
}

func TestBookSynchronousPaymentConfirmsInline(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))

	req := bookRequest("slot-1")
	req.SynchronousPayment = true
	appt, err := f.svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, appt.Status)

	res, err := f.reservations.GetByID(context.Background(), appt.ReservationToken)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStateCommitted, res.State)
}

func TestConfirmPendingAppointment(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)

	confirmed, err := f.svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)

	// A second confirm is an invalid transition.
	_, err = f.svc.Confirm(context.Background(), appt.ID)
	assert.True(t, IsCode(err, CodeInvalidStateTransition))
}

func TestConfirmSurfacesCommitFailure(t *testing.T) {
	// A commit failure must fail the confirm, not be swallowed: the
	// reservation would stay held and the recovery sweep would hand the
	// confirmed appointment's unit to another customer.
	f := newBookingFixture(t, futureSlot("slot-1", 1, 0))
	flaky := &flakyCapacity{SlotCapacityManager: f.svc.Capacity, commitFailures: 1}
	f.svc.Capacity = flaky

	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)

	_, err = f.svc.Confirm(context.Background(), appt.ID)
	require.Error(t, err)
	// Not part of the booking taxonomy, so the queue worker retries it.
	var be *BookingError
	assert.False(t, errors.As(err, &be))

	// The retry converges: the commit is re-driven even though the status
	// transition already happened, and it reports a duplicate confirmation.
	_, err = f.svc.Confirm(context.Background(), appt.ID)
	assert.True(t, IsCode(err, CodeInvalidStateTransition))

	res, err := f.reservations.GetByID(context.Background(), appt.ReservationToken)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStateCommitted, res.State)

	// The unit stays consumed, so the full slot keeps rejecting bookings.
	assert.Equal(t, 1, f.slots.snapshot("slot-1").CurrentBookings)
	_, err = f.svc.Book(context.Background(), bookRequest("slot-1"))
	assert.True(t, IsCode(err, CodeSlotUnavailable))
}

func TestCancelSurfacesReleaseFailure(t *testing.T) {
	// A cancel whose release fails must report the failure; otherwise the
	// committed reservation leaks its unit permanently.
	f := newBookingFixture(t, futureSlot("slot-1", 1, 0))
	flaky := &flakyCapacity{SlotCapacityManager: f.svc.Capacity}
	f.svc.Capacity = flaky

	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)
	_, err = f.svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)

	flaky.mu.Lock()
	flaky.releaseFailures = 1
	flaky.mu.Unlock()

	_, err = f.svc.Cancel(context.Background(), appt.ID, "customer request")
	require.Error(t, err)
	assert.Equal(t, 1, f.slots.snapshot("slot-1").CurrentBookings)

	// The retry re-drives the release on the already-cancelled appointment
	// and frees the unit exactly once.
	again, err := f.svc.Cancel(context.Background(), appt.ID, "customer request")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, again.Status)
	assert.Equal(t, 0, f.slots.snapshot("slot-1").CurrentBookings)

	res, err := f.reservations.GetByID(context.Background(), appt.ReservationToken)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationStateReleased, res.State)

	// The freed unit is bookable again.
	_, err = f.svc.Book(context.Background(), bookRequest("slot-1"))
	assert.NoError(t, err)
}

func TestConfirmUnknownAppointment(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.Confirm(context.Background(), "missing")
	assert.True(t, IsCode(err, CodeAppointmentNotFound))
}

func TestCancelReleasesCapacity(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)
	require.Equal(t, 1, f.slots.snapshot("slot-1").CurrentBookings)

	cancelled, err := f.svc.Cancel(context.Background(), appt.ID, "customer request")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, "customer request", cancelled.CancelReason)
	assert.Equal(t, 0, f.slots.snapshot("slot-1").CurrentBookings)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), appt.ID, "customer request")
	require.NoError(t, err)

	// A duplicate cancel returns the current state without freeing another
	// unit.
	again, err := f.svc.Cancel(context.Background(), appt.ID, "customer request")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, again.Status)
	assert.Equal(t, 0, f.slots.snapshot("slot-1").CurrentBookings)
}

func TestCancelConfirmedAppointment(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)
	_, err = f.svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), appt.ID, "no-show")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, 0, f.slots.snapshot("slot-1").CurrentBookings)
}

func TestCancelCompletedAppointmentFails(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)
	_, err = f.svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), appt.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), appt.ID, "too late")
	assert.True(t, IsCode(err, CodeInvalidStateTransition))
}

func TestCompleteRequiresConfirmed(t *testing.T) {
	f := newBookingFixture(t, futureSlot("slot-1", 2, 0))
	appt, err := f.svc.Book(context.Background(), bookRequest("slot-1"))
	require.NoError(t, err)

	// pending -> completed is not allowed.
	_, err = f.svc.Complete(context.Background(), appt.ID)
	assert.True(t, IsCode(err, CodeInvalidStateTransition))

	_, err = f.svc.Confirm(context.Background(), appt.ID)
	require.NoError(t, err)

	done, err := f.svc.Complete(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, done.Status)

	// Completion keeps the capacity unit consumed.
	assert.Equal(t, 1, f.slots.snapshot("slot-1").CurrentBookings)
}
