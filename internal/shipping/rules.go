package shipping

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// scopeCascade is the most specific scope first.
var scopeCascade = []enums.ZoneScope{
	enums.ZoneScopeCity,
	enums.ZoneScopeState,
	enums.ZoneScopeCountry,
}

// CostInput is what a shipping price depends on.
type CostInput struct {
	SubtotalCents int64
	Address       Address
	MethodID      uuid.UUID
}

// Resolution is a priced shipping method.
type Resolution struct {
	Method         models.ShippingMethod
	ShippingAmount int64
	AppliedRuleID  uuid.UUID
	ZoneID         uuid.UUID
}

type ruleStore interface {
	zoneLoader
	FindMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error)
	ActiveRules(ctx context.Context, methodID uuid.UUID, zoneIDs []uuid.UUID) ([]models.ShippingRule, error)
}

// RuleResolver prices one method for an address.
type RuleResolver struct {
	store ruleStore
	zones *ZoneMatcher
}

func NewRuleResolver(store ruleStore) (*RuleResolver, error) {
	if store == nil {
		return nil, fmt.Errorf("shipping store required")
	}
	return &RuleResolver{store: store, zones: NewZoneMatcher(store)}, nil
}

// ConditionSatisfied evaluates a rule condition. Weight and dimension
// conditions are reserved and never hold.
func ConditionSatisfied(rule models.ShippingRule, subtotal int64) bool {
	switch rule.ConditionType {
	case enums.ShippingConditionTypeNone, "":
		return true
	case enums.ShippingConditionTypeMinOrderValue:
		threshold := rule.ConditionConfig.MinOrderValue
		return threshold != nil && subtotal >= *threshold
	default:
		return false
	}
}

// ResolveShippingCost walks CITY, STATE then COUNTRY. The first level with a
// matching zone decides: if none of its rules is satisfied there is no quote,
// even when a broader zone would have one. A nil resolution with a nil error
// means the method is unavailable.
func (r *RuleResolver) ResolveShippingCost(ctx context.Context, in CostInput) (*Resolution, error) {
	method, err := r.store.FindMethod(ctx, in.MethodID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !method.IsActive {
		return nil, nil
	}

	zones, err := r.store.ActiveZones(ctx)
	if err != nil {
		return nil, err
	}
	return r.resolve(ctx, *method, zones, in)
}

func (r *RuleResolver) resolve(ctx context.Context, method models.ShippingMethod, zones []models.ShippingZone, in CostInput) (*Resolution, error) {
	for _, scope := range scopeCascade {
		matched := r.zones.matchIn(zones, in.Address, scope)
		if len(matched) == 0 {
			continue
		}

		ids := make([]uuid.UUID, 0, len(matched))
		for _, z := range matched {
			ids = append(ids, z.ID)
		}
		rules, err := r.store.ActiveRules(ctx, method.ID, ids)
		if err != nil {
			return nil, err
		}
		for _, rule := range rules {
			if ConditionSatisfied(rule, in.SubtotalCents) {
				return &Resolution{
					Method:         method,
					ShippingAmount: rule.BaseCostCents,
					AppliedRuleID:  rule.ID,
					ZoneID:         rule.ZoneID,
				}, nil
			}
		}
		return nil, nil
	}
	return nil, nil
}
