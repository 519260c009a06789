// File: database/repository/pricing/interface.go
package pricingRepo

import (
	"context"
	"errors"
	"fmt"

	"servicecenter/database"
	"servicecenter/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("pricing record not found")

type PricingRepository interface {
	Create(ctx context.Context, p *models.ModelServicePricing) error
	GetByID(ctx context.Context, id string) (*models.ModelServicePricing, error)
	// GetActivePricing returns the active records for a (model, service)
	// pair. Date-effectiveness is applied by the resolver so the defensive
	// multiple-active-records path stays in one place.
	GetActivePricing(ctx context.Context, modelID, serviceID string) ([]models.ModelServicePricing, error)
	// GetActiveForPairExcluding returns active records for the pair other
	// than excludeID; used by the duplicate-overlap validation.
	GetActiveForPairExcluding(ctx context.Context, modelID, serviceID, excludeID string) ([]models.ModelServicePricing, error)
	Deactivate(ctx context.Context, id string) error
}

// ServiceCatalogRepository exposes the catalog defaults pricing resolution
// falls back to.
type ServiceCatalogRepository interface {
	GetServiceByID(ctx context.Context, serviceID string) (*models.Service, error)
}

type mongoPricingRepo struct {
	coll        *mongo.Collection
	serviceColl *mongo.Collection
}

// NewMongoPricingRepo constructs the pricing repository; it also serves the
// service catalog reads from the "services" collection.
func NewMongoPricingRepo() (PricingRepository, ServiceCatalogRepository) {
	db := database.MongoClient.Database("servicecenter")
	repo := &mongoPricingRepo{
		coll:        db.Collection("model_service_pricing"),
		serviceColl: db.Collection("services"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create pricing indexes: %v\n", err)
	}
	return repo, repo
}
