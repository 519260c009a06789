package booking

import (
	"context"
	"errors"
	"fmt"

	appointmentRepo "servicecenter/database/repository/appointment"
	"servicecenter/models"
)

// Whitelisted sort fields for the appointment listing; anything else falls
// back to the default.
var allowedSortFields = map[string]bool{
	"appointmentDate": true,
	"createdAt":       true,
	"status":          true,
	"customerId":      true,
}

const defaultSortField = "appointmentDate"
const defaultPageSize = 20

// AppointmentQueryEngine is the read side: filtering, sorting and
// pagination over persisted appointments, plus the slot-joined detail view.
type AppointmentQueryEngine interface {
	Search(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentPage, error)
	GetDetails(ctx context.Context, appointmentID string) (*models.AppointmentDetails, error)
}

type DefaultAppointmentQueryEngine struct {
	Repo appointmentRepo.AppointmentRepository
	// MaxPageSize bounds query cost; oversized requests are clamped, not
	// rejected.
	MaxPageSize int
}

func (e *DefaultAppointmentQueryEngine) Search(ctx context.Context, q models.AppointmentQuery) (*models.AppointmentPage, error) {
	q = e.Normalize(q)

	items, total, err := e.Repo.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(q.PageSize) - 1) / int64(q.PageSize))
	}
	return &models.AppointmentPage{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetDetails returns the appointment joined with its time slot.
func (e *DefaultAppointmentQueryEngine) GetDetails(ctx context.Context, appointmentID string) (*models.AppointmentDetails, error) {
	details, err := e.Repo.GetByIDWithDetails(ctx, appointmentID)
	if errors.Is(err, appointmentRepo.ErrNotFound) {
		return nil, NewAppointmentNotFoundError(fmt.Sprintf("appointment %s not found", appointmentID))
	}
	if err != nil {
		return nil, err
	}
	return details, nil
}

// Normalize enforces page/pageSize >= 1, clamps pageSize to the configured
// maximum and resolves sort parameters to the whitelist.
func (e *DefaultAppointmentQueryEngine) Normalize(q models.AppointmentQuery) models.AppointmentQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if e.MaxPageSize > 0 && q.PageSize > e.MaxPageSize {
		q.PageSize = e.MaxPageSize
	}
	if !allowedSortFields[q.SortBy] {
		q.SortBy = defaultSortField
	}
	if q.SortOrder != models.SortOrderDesc {
		q.SortOrder = models.SortOrderAsc
	}
	return q
}
