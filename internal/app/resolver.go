package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stayhook/internal/domain"
	"stayhook/internal/matching"
)

// resolver finds the property an event refers to. Strategies run in order of
// reliability: stored external-id mapping, name match against the account's
// properties, then a name match against billing units.
type resolver struct {
	dir           domain.EntityDirectory
	minConfidence int

	units  []domain.BillingUnit
	loaded bool
}

func (r *resolver) resolve(ctx context.Context, accountID string, p domain.ReservationPayload) (domain.PropertyMatch, bool, error) {
	platform := domain.ParsePlatform(p.Platform)

	if p.PropertyExternalID != "" {
		e, err := r.dir.FindByExternalID(ctx, accountID, strings.ToLower(p.Platform), p.PropertyExternalID)
		switch {
		case err == nil:
			bu, err := r.billingUnit(ctx, accountID, e.Name, platform)
			if err != nil {
				return domain.PropertyMatch{}, false, err
			}
			return domain.PropertyMatch{
				PropertyID: e.ID, PropertyName: e.Name, Slug: e.Slug,
				BillingUnitID: bu, Via: "external-id",
			}, true, nil
		case !errors.Is(err, domain.ErrNotFound):
			return domain.PropertyMatch{}, false, fmt.Errorf("external mapping lookup: %w", err)
		}
	}

	if p.PropertyName == "" {
		return domain.PropertyMatch{}, false, nil
	}

	entities, err := r.dir.ListEntities(ctx, accountID)
	if err != nil {
		return domain.PropertyMatch{}, false, fmt.Errorf("list properties: %w", err)
	}

	if best, ok := matching.FindBestMatch(p.PropertyName, entities, platform, r.minConfidence); ok {
		for _, e := range entities {
			if e.ID != best.EntityID {
				continue
			}
			bu, err := r.billingUnit(ctx, accountID, p.PropertyName, platform)
			if err != nil {
				return domain.PropertyMatch{}, false, err
			}
			return domain.PropertyMatch{
				PropertyID: e.ID, PropertyName: e.Name, Slug: e.Slug,
				BillingUnitID: bu, Via: "name", Result: &best,
			}, true, nil
		}
	}

	units, err := r.billingUnits(ctx, accountID)
	if err != nil {
		return domain.PropertyMatch{}, false, err
	}
	best, ok := matching.FindBestBillingUnit(p.PropertyName, units, platform, r.minConfidence)
	if !ok {
		return domain.PropertyMatch{}, false, nil
	}
	// A billing unit only counts when some property carries its name.
	unitName := matching.Normalize(best.EntityName)
	for _, e := range entities {
		if unitName != "" && strings.Contains(matching.Normalize(e.Name), unitName) {
			id := best.EntityID
			return domain.PropertyMatch{
				PropertyID: e.ID, PropertyName: e.Name, Slug: e.Slug,
				BillingUnitID: &id, Via: "billing-unit", Result: &best,
			}, true, nil
		}
	}
	return domain.PropertyMatch{}, false, nil
}

func (r *resolver) billingUnit(ctx context.Context, accountID, name string, platform domain.Platform) (*string, error) {
	units, err := r.billingUnits(ctx, accountID)
	if err != nil {
		return nil, err
	}
	best, ok := matching.FindBestBillingUnit(name, units, platform, r.minConfidence)
	if !ok {
		return nil, nil
	}
	return &best.EntityID, nil
}

func (r *resolver) billingUnits(ctx context.Context, accountID string) ([]domain.BillingUnit, error) {
	if r.loaded {
		return r.units, nil
	}
	units, err := r.dir.ListBillingUnits(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list billing units: %w", err)
	}
	r.units, r.loaded = units, true
	return units, nil
}
