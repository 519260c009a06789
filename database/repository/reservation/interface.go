// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servicecenter/database"
	"servicecenter/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("reservation not found")

type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) error
	GetByID(ctx context.Context, tokenID string) (*models.Reservation, error)
	// Transition moves the reservation to the target state only from one of
	// the expected states; reports whether the transition was applied. This
	// is what makes Release idempotent.
	Transition(ctx context.Context, tokenID string, from []string, to string) (bool, error)
	AttachAppointment(ctx context.Context, tokenID, appointmentID string) error
	// ListHeldBefore returns reservations still held since before the
	// cutoff; the recovery sweep auto-releases them.
	ListHeldBefore(ctx context.Context, cutoff time.Time) ([]models.Reservation, error)
}

type mongoReservationRepo struct {
	coll *mongo.Collection
}

// NewMongoReservationRepo constructs a new MongoDB ReservationRepository.
func NewMongoReservationRepo() ReservationRepository {
	db := database.MongoClient.Database("servicecenter")
	repo := &mongoReservationRepo{
		coll: db.Collection("reservations"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create reservation indexes: %v\n", err)
	}
	return repo
}
