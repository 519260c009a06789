// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"

	"servicecenter/database"
	"servicecenter/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("appointment not found")

type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	GetByIDWithDetails(ctx context.Context, id string) (*models.AppointmentDetails, error)
	// UpdateStatusIf transitions the appointment to the target status only
	// when its current status is one of the expected values; reports whether
	// the transition was applied.
	UpdateStatusIf(ctx context.Context, id string, from []string, to string, reason string) (bool, error)
	Query(ctx context.Context, q models.AppointmentQuery) ([]models.Appointment, int64, error)
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	db := database.MongoClient.Database("servicecenter")
	repo := &mongoAppointmentRepo{
		coll: db.Collection("appointments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create appointment indexes: %v\n", err)
	}
	return repo
}
