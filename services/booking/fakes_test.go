package booking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	appointmentRepo "servicecenter/database/repository/appointment"
	pricingRepo "servicecenter/database/repository/pricing"
	reservationRepo "servicecenter/database/repository/reservation"
	slotRepo "servicecenter/database/repository/slot"
	"servicecenter/models"
)

// In-memory repository fakes mirroring the Mongo implementations' contracts,
// including the version CAS and capacity guard on slot counters.

type memSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.TimeSlot
}

func newMemSlotRepo(slots ...*models.TimeSlot) *memSlotRepo {
	r := &memSlotRepo{slots: make(map[string]*models.TimeSlot)}
	for _, s := range slots {
		cp := *s
		r.slots[s.ID] = &cp
	}
	return r
}

func (r *memSlotRepo) Create(_ context.Context, slot *models.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	cp := *slot
	r.slots[slot.ID] = &cp
	return nil
}

func (r *memSlotRepo) CreateMany(ctx context.Context, slots []models.TimeSlot) ([]string, error) {
	ids := make([]string, 0, len(slots))
	for i := range slots {
		if err := r.Create(ctx, &slots[i]); err != nil {
			return nil, err
		}
		ids = append(ids, slots[i].ID)
	}
	return ids, nil
}

func (r *memSlotRepo) GetByID(_ context.Context, slotID string) (*models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrNotFound
	}
	cp := *slot
	return &cp, nil
}

func (r *memSlotRepo) GetByCenterAndDate(_ context.Context, centerID, date string) ([]models.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TimeSlot
	for _, s := range r.slots {
		if s.CenterID == centerID && s.SlotDate == date {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSlotRepo) AdjustBookings(_ context.Context, slotID string, delta int, currentVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return slotRepo.ErrNotFound
	}
	if slot.Version != currentVersion {
		return slotRepo.ErrVersionConflict
	}
	next := slot.CurrentBookings + delta
	if next < 0 || next > slot.MaxBookings {
		return slotRepo.ErrCapacityGuard
	}
	slot.CurrentBookings = next
	slot.Version++
	return nil
}

func (r *memSlotRepo) SetBlocked(_ context.Context, slotID string, blocked bool, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot, ok := r.slots[slotID]
	if !ok {
		return slotRepo.ErrNotFound
	}
	slot.IsBlocked = blocked
	slot.BlockReason = reason
	slot.Version++
	return nil
}

func (r *memSlotRepo) snapshot(slotID string) models.TimeSlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.slots[slotID]
}

type memReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*models.Reservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: make(map[string]*models.Reservation)}
}

func (r *memReservationRepo) Create(_ context.Context, res *models.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.New().String()
	}
	if res.State == "" {
		res.State = models.ReservationStateHeld
	}
	if res.HeldAt.IsZero() {
		res.HeldAt = time.Now()
	}
	cp := *res
	r.reservations[res.ID] = &cp
	return nil
}

func (r *memReservationRepo) GetByID(_ context.Context, tokenID string) (*models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[tokenID]
	if !ok {
		return nil, reservationRepo.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (r *memReservationRepo) Transition(_ context.Context, tokenID string, from []string, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[tokenID]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if res.State == f {
			res.State = to
			res.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

func (r *memReservationRepo) AttachAppointment(_ context.Context, tokenID, appointmentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.reservations[tokenID]
	if !ok {
		return reservationRepo.ErrNotFound
	}
	res.AppointmentID = appointmentID
	return nil
}

func (r *memReservationRepo) ListHeldBefore(_ context.Context, cutoff time.Time) ([]models.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Reservation
	for _, res := range r.reservations {
		if res.State == models.ReservationStateHeld && res.HeldAt.Before(cutoff) {
			out = append(out, *res)
		}
	}
	return out, nil
}

type memAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[string]*models.Appointment
	createErr    error
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appointments: make(map[string]*models.Appointment)}
}

func (r *memAppointmentRepo) Create(_ context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	appt.CreatedAt = time.Now()
	cp := *appt
	r.appointments[appt.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (r *memAppointmentRepo) GetByIDWithDetails(ctx context.Context, id string) (*models.AppointmentDetails, error) {
	appt, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.AppointmentDetails{Appointment: *appt}, nil
}

func (r *memAppointmentRepo) UpdateStatusIf(_ context.Context, id string, from []string, to string, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	appt, ok := r.appointments[id]
	if !ok {
		return false, nil
	}
	for _, f := range from {
		if appt.Status == f {
			appt.Status = to
			if reason != "" {
				appt.CancelReason = reason
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *memAppointmentRepo) Query(_ context.Context, q models.AppointmentQuery) ([]models.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, appt := range r.appointments {
		if q.Status != "" && appt.Status != q.Status {
			continue
		}
		if q.CustomerID != "" && appt.CustomerID != q.CustomerID {
			continue
		}
		out = append(out, *appt)
	}
	return out, int64(len(out)), nil
}

type memPricingRepo struct {
	mu       sync.Mutex
	records  map[string]*models.ModelServicePricing
	services map[string]*models.Service
}

func newMemPricingRepo() *memPricingRepo {
	return &memPricingRepo{
		records:  make(map[string]*models.ModelServicePricing),
		services: make(map[string]*models.Service),
	}
}

func (r *memPricingRepo) addService(svc models.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[svc.ID] = &svc
}

func (r *memPricingRepo) Create(_ context.Context, p *models.ModelServicePricing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cp := *p
	r.records[p.ID] = &cp
	return nil
}

func (r *memPricingRepo) GetByID(_ context.Context, id string) (*models.ModelServicePricing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok {
		return nil, pricingRepo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPricingRepo) GetActivePricing(_ context.Context, modelID, serviceID string) ([]models.ModelServicePricing, error) {
	return r.activeForPair(modelID, serviceID, ""), nil
}

func (r *memPricingRepo) GetActiveForPairExcluding(_ context.Context, modelID, serviceID, excludeID string) ([]models.ModelServicePricing, error) {
	return r.activeForPair(modelID, serviceID, excludeID), nil
}

func (r *memPricingRepo) activeForPair(modelID, serviceID, excludeID string) []models.ModelServicePricing {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ModelServicePricing
	for _, p := range r.records {
		if p.ModelID == modelID && p.ServiceID == serviceID && p.IsActive && p.ID != excludeID {
			out = append(out, *p)
		}
	}
	return out
}

func (r *memPricingRepo) Deactivate(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.records[id]
	if !ok {
		return pricingRepo.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (r *memPricingRepo) GetServiceByID(_ context.Context, serviceID string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.services[serviceID]
	if !ok {
		return nil, pricingRepo.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

func futureSlot(id string, maxBookings, currentBookings int) *models.TimeSlot {
	return &models.TimeSlot{
		ID:              id,
		CenterID:        "center-1",
		SlotDate:        time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		StartTime:       "09:00",
		EndTime:         "10:00",
		DurationMinutes: 60,
		MaxBookings:     maxBookings,
		CurrentBookings: currentBookings,
		SlotType:        models.SlotTypeRegular,
		Version:         1,
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }
