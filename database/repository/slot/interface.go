// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"
	"fmt"

	"servicecenter/database"
	"servicecenter/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Errors surfaced by the slot repository. ErrVersionConflict means a
// concurrent writer bumped the slot version between read and update; callers
// re-read and retry.
var (
	ErrNotFound        = errors.New("time slot not found")
	ErrVersionConflict = errors.New("time slot version conflict")
	ErrCapacityGuard   = errors.New("capacity guard rejected the counter update")
)

type TimeSlotRepository interface {
	Create(ctx context.Context, slot *models.TimeSlot) error
	CreateMany(ctx context.Context, slots []models.TimeSlot) ([]string, error)
	GetByID(ctx context.Context, slotID string) (*models.TimeSlot, error)
	GetByCenterAndDate(ctx context.Context, centerID, date string) ([]models.TimeSlot, error)
	// AdjustBookings atomically applies delta to CurrentBookings guarded by
	// the optimistic version and by 0 <= CurrentBookings+delta <= MaxBookings.
	AdjustBookings(ctx context.Context, slotID string, delta int, currentVersion int) error
	SetBlocked(ctx context.Context, slotID string, blocked bool, reason string) error
}

type mongoTimeSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoTimeSlotRepo constructs a new MongoDB TimeSlotRepository.
func NewMongoTimeSlotRepo() TimeSlotRepository {
	db := database.MongoClient.Database("servicecenter")
	repo := &mongoTimeSlotRepo{
		coll: db.Collection("timeslots"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create timeslot indexes: %v\n", err)
	}
	return repo
}
