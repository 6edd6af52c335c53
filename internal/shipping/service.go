// Package shipping matches delivery addresses to zones and prices shipping
// methods with zone rules.
package shipping

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type addressLoader interface {
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
}

type subtotalSource interface {
	SubtotalForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type quoteStore interface {
	ruleStore
	ActiveMethods(ctx context.Context) ([]models.ShippingMethod, error)
}

// Quote is one available method with its price for an address.
type Quote struct {
	MethodID   uuid.UUID `json:"method_id"`
	MethodType string    `json:"method_type"`
	MethodName string    `json:"method_name"`
	Cost       int64     `json:"cost"`
	RuleID     uuid.UUID `json:"rule_id"`
	ZoneID     uuid.UUID `json:"zone_id"`
}

// OrderInput selects shipping for an order. A nil MethodID picks the cheapest
// available method.
type OrderInput struct {
	UserID        uuid.UUID
	AddressID     uuid.UUID
	MethodID      *uuid.UUID
	SubtotalCents int64
}

// OrderShipping is the shipping decision snapshotted onto an order.
type OrderShipping struct {
	Cost     int64
	MethodID uuid.UUID
	RuleID   uuid.UUID
	ZoneID   uuid.UUID
	Address  types.AddressSnapshot
}

type Service interface {
	QuoteForUser(ctx context.Context, userID, addressID uuid.UUID) ([]Quote, error)
	ResolveForOrder(ctx context.Context, input OrderInput) (*OrderShipping, error)
}

type service struct {
	store     quoteStore
	rules     *RuleResolver
	addresses addressLoader
	subtotals subtotalSource
}

func NewService(store quoteStore, addresses addressLoader, subtotals subtotalSource) (Service, error) {
	if addresses == nil {
		return nil, fmt.Errorf("address loader required")
	}
	if subtotals == nil {
		return nil, fmt.Errorf("subtotal source required")
	}
	rules, err := NewRuleResolver(store)
	if err != nil {
		return nil, err
	}
	return &service{store: store, rules: rules, addresses: addresses, subtotals: subtotals}, nil
}

// QuoteForUser prices every active method for one of the user's addresses
// against their current cart subtotal, cheapest first.
func (s *service) QuoteForUser(ctx context.Context, userID, addressID uuid.UUID) ([]Quote, error) {
	addr, err := s.addresses.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	subtotal, err := s.subtotals.SubtotalForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.quotes(ctx, AddressFrom(addr.Snapshot()), subtotal)
}

func (s *service) quotes(ctx context.Context, addr Address, subtotal int64) ([]Quote, error) {
	methods, err := s.store.ActiveMethods(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping methods")
	}
	zones, err := s.store.ActiveZones(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping zones")
	}

	out := []Quote{}
	for _, method := range methods {
		res, err := s.rules.resolve(ctx, method, zones, CostInput{
			SubtotalCents: subtotal,
			Address:       addr,
			MethodID:      method.ID,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve shipping rules")
		}
		if res == nil {
			continue
		}
		out = append(out, Quote{
			MethodID:   method.ID,
			MethodType: method.Type.String(),
			MethodName: method.Name,
			Cost:       res.ShippingAmount,
			RuleID:     res.AppliedRuleID,
			ZoneID:     res.ZoneID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Cost < out[j].Cost
	})
	return out, nil
}

// ResolveForOrder prices the requested method, or the cheapest one, and fails
// when nothing can ship to the address.
func (s *service) ResolveForOrder(ctx context.Context, input OrderInput) (*OrderShipping, error) {
	addr, err := s.addresses.Get(ctx, input.UserID, input.AddressID)
	if err != nil {
		return nil, err
	}
	snapshot := addr.Snapshot()
	geo := AddressFrom(snapshot)

	if input.MethodID != nil {
		res, err := s.rules.ResolveShippingCost(ctx, CostInput{
			SubtotalCents: input.SubtotalCents,
			Address:       geo,
			MethodID:      *input.MethodID,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve shipping cost")
		}
		if res == nil {
			return nil, unavailable(input.MethodID)
		}
		return &OrderShipping{
			Cost:     res.ShippingAmount,
			MethodID: res.Method.ID,
			RuleID:   res.AppliedRuleID,
			ZoneID:   res.ZoneID,
			Address:  snapshot,
		}, nil
	}

	quotes, err := s.quotes(ctx, geo, input.SubtotalCents)
	if err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return nil, unavailable(nil)
	}
	best := quotes[0]
	return &OrderShipping{
		Cost:     best.Cost,
		MethodID: best.MethodID,
		RuleID:   best.RuleID,
		ZoneID:   best.ZoneID,
		Address:  snapshot,
	}, nil
}

func unavailable(methodID *uuid.UUID) error {
	err := pkgerrors.New(pkgerrors.CodeShippingUnavailable, "shipping method not available for this address")
	if methodID != nil {
		err = err.WithDetails(map[string]any{"method_id": methodID.String()})
	}
	return err
}
