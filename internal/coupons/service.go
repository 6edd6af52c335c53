package coupons

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type cartStore interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	SetAppliedCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error
}

type cartValidator interface {
	Validate(ctx context.Context, cart *models.Cart, code string) (*Validation, error)
}

// Service attaches coupons to carts. Redemptions are only written when an
// order is placed.
type Service interface {
	ApplyToCart(ctx context.Context, cartID uuid.UUID, code string, source enums.CouponSource) (*models.Cart, error)
	RemoveFromCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error)
}

type service struct {
	carts     cartStore
	validator cartValidator
}

func NewService(carts cartStore, validator cartValidator) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if validator == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	return &service{carts: carts, validator: validator}, nil
}

// ApplyToCart validates code and makes it the cart's only coupon, replacing
// any previous one.
func (s *service) ApplyToCart(ctx context.Context, cartID uuid.UUID, code string, source enums.CouponSource) (*models.Cart, error) {
	if source != enums.CouponSourceCart {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotAllowed, "coupons can only be applied from the cart")
	}

	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	validation, err := s.validator.Validate(ctx, cart, code)
	if err != nil {
		return nil, err
	}

	couponID := validation.Coupon.ID
	if cart.AppliedCouponID != nil && *cart.AppliedCouponID == couponID {
		return cart, nil
	}
	if err := s.carts.SetAppliedCoupon(ctx, cart.ID, &couponID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply coupon")
	}
	cart.AppliedCouponID = &couponID
	return cart, nil
}

func (s *service) RemoveFromCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.AppliedCouponID == nil {
		return cart, nil
	}
	if err := s.carts.SetAppliedCoupon(ctx, cart.ID, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove coupon")
	}
	cart.AppliedCouponID = nil
	return cart, nil
}

func (s *service) loadCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.FindActiveByID(ctx, cartID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}
