// File: database/repository/slot/capacity.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// AdjustBookings applies delta to CurrentBookings using the slot's version
// as an optimistic concurrency check. The filter additionally guards the
// counter range so a racing writer can never push CurrentBookings outside
// [0, MaxBookings] even if the version check were bypassed.
func (r *mongoTimeSlotRepo) AdjustBookings(ctx context.Context, slotID string, delta int, currentVersion int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":      slotID,
		"version": currentVersion,
	}
	if delta > 0 {
		filter["$expr"] = bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$currentBookings", delta}},
			"$maxBookings",
		}}
	} else if delta < 0 {
		filter["$expr"] = bson.M{"$gte": bson.A{
			bson.M{"$add": bson.A{"$currentBookings", delta}},
			0,
		}}
	}

	update := bson.M{
		"$inc": bson.M{
			"currentBookings": delta,
			"version":         1,
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to adjust bookings for slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		// Distinguish "slot gone" from "version lost the race" from "range
		// guard rejected the delta".
		slot, getErr := r.GetByID(ctx, slotID)
		if getErr != nil {
			return getErr
		}
		if slot.Version != currentVersion {
			return ErrVersionConflict
		}
		return ErrCapacityGuard
	}
	return nil
}

func (r *mongoTimeSlotRepo) SetBlocked(ctx context.Context, slotID string, blocked bool, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"isBlocked":   blocked,
			"blockReason": reason,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": slotID}, update)
	if err != nil {
		return fmt.Errorf("failed to set block state for slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
