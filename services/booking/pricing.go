package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	pricingRepo "servicecenter/database/repository/pricing"
	"servicecenter/models"
	"servicecenter/utils"
)

// PricingResolver returns the currently effective price and duration for a
// (vehicle model, service) pair, applying an optional time-bounded override
// on top of the catalog defaults.
type PricingResolver interface {
	// Resolve selects the effective pricing as of asOfDate ("YYYY-MM-DD",
	// empty = today). Absence of an override is not an error; the catalog
	// defaults apply. NoPricingFound only means the catalog itself has no
	// entry for the service.
	Resolve(ctx context.Context, modelID, serviceID, asOfDate string) (*models.PricingSnapshot, error)
	// ValidateNoDuplicate reports whether the candidate effective range is
	// free of overlap with every other active record for the pair.
	ValidateNoDuplicate(ctx context.Context, modelID, serviceID, excludeID string, effectiveDate, expiryDate *string) (bool, error)
}

type DefaultPricingResolver struct {
	Repo    pricingRepo.PricingRepository
	Catalog pricingRepo.ServiceCatalogRepository
}

func (r *DefaultPricingResolver) Resolve(ctx context.Context, modelID, serviceID, asOfDate string) (*models.PricingSnapshot, error) {
	if asOfDate == "" {
		asOfDate = utils.Today()
	}

	// The catalog entry is needed on both paths: it supplies the defaults
	// an override composes with, and the whole price when no override is in
	// effect.
	svc, err := r.Catalog.GetServiceByID(ctx, serviceID)
	if errors.Is(err, pricingRepo.ErrNotFound) {
		return nil, NewNoPricingFoundError(fmt.Sprintf("service %s has no catalog entry", serviceID))
	}
	if err != nil {
		return nil, err
	}

	records, err := r.Repo.GetActivePricing(ctx, modelID, serviceID)
	if err != nil {
		return nil, err
	}

	best := pickEffective(records, asOfDate)
	snapshot := &models.PricingSnapshot{
		FinalPrice:       svc.BasePrice,
		FinalTimeMinutes: svc.StandardTimeMinutes,
		ResolvedAt:       time.Now(),
	}
	if best != nil {
		snapshot.PricingID = best.ID
		snapshot.FinalPrice = best.FinalPrice(svc.BasePrice)
		snapshot.FinalTimeMinutes = best.FinalTime(svc.StandardTimeMinutes)
	}
	return snapshot, nil
}

// pickEffective tolerates multiple simultaneously active records even
// though the write path should prevent them: latest EffectiveDate wins
// (unbounded sorts earliest), newest record breaks ties.
func pickEffective(records []models.ModelServicePricing, asOfDate string) *models.ModelServicePricing {
	var best *models.ModelServicePricing
	for i := range records {
		rec := &records[i]
		if !rec.IsCurrentlyActiveOn(asOfDate) {
			continue
		}
		if best == nil || effectiveAfter(rec, best) {
			best = rec
		}
	}
	return best
}

func effectiveAfter(a, b *models.ModelServicePricing) bool {
	ae, be := effectiveOrMin(a), effectiveOrMin(b)
	if ae != be {
		return ae > be
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func effectiveOrMin(p *models.ModelServicePricing) string {
	if p.EffectiveDate == nil {
		return ""
	}
	return *p.EffectiveDate
}

func (r *DefaultPricingResolver) ValidateNoDuplicate(ctx context.Context, modelID, serviceID, excludeID string, effectiveDate, expiryDate *string) (bool, error) {
	others, err := r.Repo.GetActiveForPairExcluding(ctx, modelID, serviceID, excludeID)
	if err != nil {
		return false, err
	}
	for i := range others {
		if rangesOverlap(effectiveDate, expiryDate, others[i].EffectiveDate, others[i].ExpiryDate) {
			return false, nil
		}
	}
	return true, nil
}

// rangesOverlap implements the interval check with open ends treated as
// -inf/+inf: [e1, x1] and [e2, x2] overlap iff e1 <= x2 AND e2 <= x1.
// "YYYY-MM-DD" strings order correctly under lexical comparison.
func rangesOverlap(e1, x1, e2, x2 *string) bool {
	startsBeforeEnd := func(start, end *string) bool {
		if start == nil || end == nil {
			return true
		}
		return *start <= *end
	}
	return startsBeforeEnd(e1, x2) && startsBeforeEnd(e2, x1)
}
