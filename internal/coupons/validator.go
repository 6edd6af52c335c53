package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Store is the persistence surface the validator reads.
type Store interface {
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	CountRedemptions(ctx context.Context, couponID uuid.UUID) (int64, error)
	CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int64, error)
}

type variantLookup interface {
	VariantsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Variant, error)
}

// Validation is a coupon that passed every check for a cart.
type Validation struct {
	Coupon        *models.Coupon
	SubtotalCents int64
}

// Normalize trims and lowercases a user supplied code.
func Normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Amount is what the coupon removes from base.
func Amount(c *models.Coupon, base int64) int64 {
	if c == nil {
		return 0
	}
	return money.Reduction(c.DiscountType, c.DiscountValue, base)
}

type Validator struct {
	store    Store
	variants variantLookup
	metrics  *metrics.PricingMetrics
	now      func() time.Time
}

func NewValidator(store Store, variants variantLookup, m *metrics.PricingMetrics, now func() time.Time) (*Validator, error) {
	if store == nil {
		return nil, fmt.Errorf("coupon store required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant lookup required")
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{store: store, variants: variants, metrics: m, now: now}, nil
}

// Validate runs every coupon check for code against cart. The minimum cart
// value is compared with the pre-discount subtotal at live variant prices.
func (v *Validator) Validate(ctx context.Context, cart *models.Cart, code string) (*Validation, error) {
	result, err := v.validate(ctx, cart, code)
	v.record(err)
	return result, err
}

func (v *Validator) validate(ctx context.Context, cart *models.Cart, code string) (*Validation, error) {
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
	}
	normalized := Normalize(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotFound, "coupon code is not valid")
	}

	coupon, err := v.store.FindByCode(ctx, normalized)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeCouponNotFound, "coupon code is not valid")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}

	subtotal, err := v.Subtotal(ctx, cart.Lines)
	if err != nil {
		return nil, err
	}

	if err := v.evaluate(ctx, coupon, subtotal, cart.UserID); err != nil {
		return nil, err
	}
	return &Validation{Coupon: coupon, SubtotalCents: subtotal}, nil
}

// Evaluate re-checks an already loaded coupon: window, minimum, global cap and
// per-user cap.
func (v *Validator) Evaluate(ctx context.Context, coupon *models.Coupon, subtotal int64, userID *uuid.UUID) error {
	err := v.evaluate(ctx, coupon, subtotal, userID)
	v.record(err)
	return err
}

func (v *Validator) evaluate(ctx context.Context, coupon *models.Coupon, subtotal int64, userID *uuid.UUID) error {
	if coupon == nil {
		return pkgerrors.New(pkgerrors.CodeCouponNotFound, "coupon code is not valid")
	}
	if !coupon.ActiveAt(v.now()) {
		return pkgerrors.New(pkgerrors.CodeCouponInactive, "coupon is not active")
	}
	if coupon.MinimumCartValue != nil && subtotal < *coupon.MinimumCartValue {
		return pkgerrors.New(pkgerrors.CodeCouponMinimumNotMet, "cart does not meet the coupon minimum").
			WithDetails(map[string]any{
				"minimum_cart_value": *coupon.MinimumCartValue,
				"subtotal":           subtotal,
			})
	}
	if coupon.MaxRedemptions != nil {
		used, err := v.store.CountRedemptions(ctx, coupon.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupon redemptions")
		}
		if used >= *coupon.MaxRedemptions {
			return pkgerrors.New(pkgerrors.CodeCouponLimitReached, "coupon redemption limit reached")
		}
	}
	if coupon.MaxRedemptionsPerUser != nil {
		if userID == nil {
			return pkgerrors.New(pkgerrors.CodeCouponRequiresUser, "sign in to use this coupon")
		}
		used, err := v.store.CountUserRedemptions(ctx, coupon.ID, *userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count user coupon redemptions")
		}
		if used >= *coupon.MaxRedemptionsPerUser {
			return pkgerrors.New(pkgerrors.CodeCouponUserLimitReached, "coupon already used the maximum number of times")
		}
	}
	return nil
}

// Subtotal sums live variant price times quantity. A line whose variant no
// longer exists is a conflict.
func (v *Validator) Subtotal(ctx context.Context, lines []models.CartLine) (int64, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	variants, err := v.variants.VariantsByID(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
	}

	var subtotal int64
	for _, line := range lines {
		variant, ok := variants[line.VariantID]
		if !ok {
			return 0, pkgerrors.New(pkgerrors.CodeConflict, "a cart item is no longer available").
				WithDetails(map[string]any{"variant_id": line.VariantID.String()})
		}
		subtotal += variant.PriceCents * int64(line.Quantity)
	}
	return subtotal, nil
}

// FindByID loads a coupon for re-validation.
func (v *Validator) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := v.store.FindByID(ctx, id)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeCouponNotFound, "coupon code is not valid")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	return coupon, nil
}

func (v *Validator) record(err error) {
	if err == nil {
		v.metrics.IncCouponResult("valid")
		return
	}
	if typed := pkgerrors.As(err); typed != nil && pkgerrors.IsCouponCode(typed.Code()) {
		v.metrics.IncCouponResult(string(typed.Code()))
	}
}
