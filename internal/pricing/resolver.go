// Package pricing resolves cart totals from live variant prices, line
// discounts and the cart coupon.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type cartLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type variantLookup interface {
	VariantsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Variant, error)
}

type discountSource interface {
	Active(ctx context.Context) ([]discounts.Discount, error)
	Match(line discounts.LineContext, ds []discounts.Discount) []discounts.Discount
}

type couponChecker interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	Evaluate(ctx context.Context, coupon *models.Coupon, subtotal int64, userID *uuid.UUID) error
}

// Resolver prices carts. It holds no state between calls; results depend on
// the clock and live catalog data.
type Resolver struct {
	carts     cartLoader
	variants  variantLookup
	discounts discountSource
	coupons   couponChecker
	metrics   *metrics.PricingMetrics
	logg      *logger.Logger
}

type Deps struct {
	Carts     cartLoader
	Variants  variantLookup
	Discounts discountSource
	Coupons   couponChecker
	Metrics   *metrics.PricingMetrics
	Logger    *logger.Logger
}

func NewResolver(deps Deps) (*Resolver, error) {
	if deps.Carts == nil {
		return nil, fmt.Errorf("cart loader required")
	}
	if deps.Variants == nil {
		return nil, fmt.Errorf("variant lookup required")
	}
	if deps.Discounts == nil {
		return nil, fmt.Errorf("discount source required")
	}
	if deps.Coupons == nil {
		return nil, fmt.Errorf("coupon checker required")
	}
	return &Resolver{
		carts:     deps.Carts,
		variants:  deps.Variants,
		discounts: deps.Discounts,
		coupons:   deps.Coupons,
		metrics:   deps.Metrics,
		logg:      deps.Logger,
	}, nil
}

// ResolveCartPricing loads the active cart and prices it.
func (r *Resolver) ResolveCartPricing(ctx context.Context, cartID uuid.UUID) (*Result, error) {
	cart, err := r.carts.FindActiveByID(ctx, cartID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return r.Price(ctx, cart)
}

// Price computes the pricing for an already loaded cart.
func (r *Resolver) Price(ctx context.Context, cart *models.Cart) (result *Result, err error) {
	started := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		r.metrics.ObserveResolution(outcome, time.Since(started))
	}()

	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
	}

	variants, err := r.loadVariants(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}
	active, err := r.discounts.Active(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discounts")
	}

	result = &Result{
		CartID:    cart.ID,
		LineItems: make([]LineItem, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		variant := variants[line.VariantID]
		original := variant.PriceCents * int64(line.Quantity)
		matched := r.discounts.Match(discounts.LineContext{
			ProductID:     line.ProductID,
			VariantID:     line.VariantID,
			CategoryID:    variant.CategoryID,
			CollectionIDs: variant.CollectionIDs,
		}, active)
		combined := discounts.Combine(matched, original)

		applied := combined.Applied
		if applied == nil {
			applied = []types.AppliedDiscount{}
		}
		result.LineItems = append(result.LineItems, LineItem{
			LineID:           line.ID,
			ProductID:        line.ProductID,
			VariantID:        line.VariantID,
			Quantity:         line.Quantity,
			UnitPrice:        variant.PriceCents,
			OriginalTotal:    original,
			DiscountedTotal:  combined.FinalPrice,
			AppliedDiscounts: applied,
		})
		result.OriginalPrice += original
		result.DiscountedPrice += combined.FinalPrice
	}

	if cart.AppliedCouponID != nil {
		if err := r.applyCoupon(ctx, cart, result); err != nil {
			return nil, err
		}
	}

	result.AppliedDiscounts = aggregate(result.LineItems)
	result.TotalSavings = result.OriginalPrice - result.DiscountedPrice
	result.TotalPercentageSavings = money.PercentOf(result.TotalSavings, result.OriginalPrice)
	return result, nil
}

// applyCoupon re-validates the cart coupon against the original subtotal and
// takes it off the line-discounted total, floored at 0. Coupon failures
// become a CouponIssue; anything else is returned.
func (r *Resolver) applyCoupon(ctx context.Context, cart *models.Cart, result *Result) error {
	coupon, err := r.coupons.FindByID(ctx, *cart.AppliedCouponID)
	if err == nil {
		err = r.coupons.Evaluate(ctx, coupon, result.OriginalPrice, cart.UserID)
	}
	if err != nil {
		typed := pkgerrors.As(err)
		if typed == nil || !pkgerrors.IsCouponCode(typed.Code()) {
			return err
		}
		result.CouponIssue = &CouponIssue{Code: string(typed.Code()), Message: typed.Message()}
		if r.logg != nil {
			issueCtx := r.logg.WithFields(ctx, map[string]any{
				"cart_id":    cart.ID.String(),
				"coupon_id":  cart.AppliedCouponID.String(),
				"error_code": typed.Code(),
			})
			r.logg.Warn(issueCtx, "cart coupon no longer valid")
		}
		return nil
	}

	applied := &AppliedCoupon{
		CouponID:  coupon.ID,
		Code:      coupon.Code,
		Type:      coupon.DiscountType.String(),
		Value:     coupon.DiscountValue,
		Stackable: coupon.IsStackable,
	}
	result.AppliedCoupon = applied

	amount := money.Reduction(coupon.DiscountType, coupon.DiscountValue, result.DiscountedPrice)
	applied.Applied = true
	applied.AmountCents = amount
	result.DiscountedPrice = money.Floor(result.DiscountedPrice - amount)
	return nil
}

// SubtotalForUser returns the original subtotal of the user's active cart, or
// 0 when the user has none.
func (r *Resolver) SubtotalForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	cart, err := r.carts.FindActiveByUser(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	variants, err := r.loadVariants(ctx, cart.Lines)
	if err != nil {
		return 0, err
	}
	var subtotal int64
	for _, line := range cart.Lines {
		subtotal += variants[line.VariantID].PriceCents * int64(line.Quantity)
	}
	return subtotal, nil
}

func (r *Resolver) loadVariants(ctx context.Context, lines []models.CartLine) (map[uuid.UUID]catalog.Variant, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	variants, err := r.variants.VariantsByID(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
	}
	for _, line := range lines {
		if _, ok := variants[line.VariantID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a cart item is no longer available").
				WithDetails(map[string]any{"variant_id": line.VariantID.String()})
		}
	}
	return variants, nil
}
