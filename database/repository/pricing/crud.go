// File: database/repository/pricing/crud.go
package pricingRepo

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

func (r *mongoPricingRepo) Create(ctx context.Context, p *models.ModelServicePricing) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create pricing record: %w", err)
	}
	return nil
}

func (r *mongoPricingRepo) GetByID(ctx context.Context, id string) (*models.ModelServicePricing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.ModelServicePricing
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pricing record %s: %w", id, err)
	}
	return &p, nil
}

func (r *mongoPricingRepo) GetActivePricing(ctx context.Context, modelID, serviceID string) ([]models.ModelServicePricing, error) {
	return r.findActive(ctx, bson.M{
		"modelId":   modelID,
		"serviceId": serviceID,
		"isActive":  true,
	})
}

func (r *mongoPricingRepo) GetActiveForPairExcluding(ctx context.Context, modelID, serviceID, excludeID string) ([]models.ModelServicePricing, error) {
	filter := bson.M{
		"modelId":   modelID,
		"serviceId": serviceID,
		"isActive":  true,
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return r.findActive(ctx, filter)
}

func (r *mongoPricingRepo) findActive(ctx context.Context, filter bson.M) ([]models.ModelServicePricing, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "effectiveDate", Value: -1}, {Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.ModelServicePricing
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode pricing records: %w", err)
	}
	return records, nil
}

func (r *mongoPricingRepo) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"isActive": false}})
	if err != nil {
		return fmt.Errorf("failed to deactivate pricing record %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPricingRepo) GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	err := r.serviceColl.FindOne(ctx, bson.M{"id": serviceID}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service %s: %w", serviceID, err)
	}
	return &svc, nil
}
