// File: database/repository/appointment/crud.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"servicecenter/models"
)

func (r *mongoAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

// GetByIDWithDetails joins the appointment with its time slot.
func (r *mongoAppointmentRepo) GetByIDWithDetails(ctx context.Context, id string) (*models.AppointmentDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "timeslots",
			"localField":   "slotId",
			"foreignField": "id",
			"as":           "slot",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$slot", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment details for %s: %w", id, err)
	}
	defer cursor.Close(ctx)

	var results []models.AppointmentDetails
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode appointment details: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (r *mongoAppointmentRepo) UpdateStatusIf(ctx context.Context, id string, from []string, to string, reason string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": from}}
	set := bson.M{
		"status":    to,
		"updatedAt": time.Now(),
	}
	if reason != "" {
		set["cancelReason"] = reason
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to update appointment %s status: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *mongoAppointmentRepo) Query(ctx context.Context, q models.AppointmentQuery) ([]models.Appointment, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := BuildQueryFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	skip := int64((q.Page - 1) * q.PageSize)
	opts := options.Find().
		SetSort(BuildQuerySort(q)).
		SetSkip(skip).
		SetLimit(int64(q.PageSize))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.Appointment
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode appointments: %w", err)
	}
	if items == nil {
		items = []models.Appointment{}
	}
	return items, total, nil
}
