// Package checkout turns a user's active cart into an order.
package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartPricer interface {
	Price(ctx context.Context, cart *models.Cart) (*pricing.Result, error)
}

type shippingResolver interface {
	ResolveForOrder(ctx context.Context, input shipping.OrderInput) (*shipping.OrderShipping, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type variantLookup interface {
	VariantsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.Variant, error)
}

// Service places cash-on-delivery orders.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
}

// PlaceOrderInput captures the checkout request. CouponCode is accepted only
// to be refused: coupons are applied from the cart.
type PlaceOrderInput struct {
	UserID           uuid.UUID
	AddressID        uuid.UUID
	ShippingMethodID *uuid.UUID
	PaymentMethod    enums.PaymentMethod
	CouponCode       string
}

// Deps wires the checkout service.
type Deps struct {
	Tx       txRunner
	Carts    cart.CartRepository
	Orders   orders.Repository
	Coupons  *coupons.Repository
	Variants variantLookup
	Pricing  cartPricer
	Shipping shippingResolver
	// Outbox is optional; when set, order_placed and coupon_redeemed events
	// are written in the order transaction.
	Outbox eventEmitter
	Logger *logger.Logger
	Now    func() time.Time
}

type service struct {
	tx       txRunner
	carts    cart.CartRepository
	orders   orders.Repository
	coupons  *coupons.Repository
	variants variantLookup
	pricing  cartPricer
	shipping shippingResolver
	events   eventEmitter
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Carts == nil:
		return nil, fmt.Errorf("cart repository required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Coupons == nil:
		return nil, fmt.Errorf("coupon repository required")
	case deps.Variants == nil:
		return nil, fmt.Errorf("variant lookup required")
	case deps.Pricing == nil:
		return nil, fmt.Errorf("pricing resolver required")
	case deps.Shipping == nil:
		return nil, fmt.Errorf("shipping resolver required")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:       deps.Tx,
		carts:    deps.Carts,
		orders:   deps.Orders,
		coupons:  deps.Coupons,
		variants: deps.Variants,
		pricing:  deps.Pricing,
		shipping: deps.Shipping,
		events:   deps.Outbox,
		logg:     deps.Logger,
		now:      now,
	}, nil
}

// PlaceOrder re-prices the cart, resolves shipping and writes the order, the
// coupon redemption and the cart conversion in one transaction.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if strings.TrimSpace(input.CouponCode) != "" {
		return nil, pkgerrors.New(pkgerrors.CodeCouponNotAllowed, "coupons can only be applied from the cart")
	}
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCOD
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only cash on delivery is supported")
	}
	if input.AddressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address_id is required")
	}

	userCart, err := s.carts.FindActiveByUser(ctx, input.UserID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeCartNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(userCart.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if err := s.ensurePurchasable(ctx, userCart.Lines); err != nil {
		return nil, err
	}

	priced, err := s.pricing.Price(ctx, userCart)
	if err != nil {
		return nil, err
	}
	if issue := priced.CouponIssue; issue != nil {
		return nil, pkgerrors.New(pkgerrors.Code(issue.Code), issue.Message)
	}

	ship, err := s.shipping.ResolveForOrder(ctx, shipping.OrderInput{
		UserID:        input.UserID,
		AddressID:     input.AddressID,
		MethodID:      input.ShippingMethodID,
		SubtotalCents: priced.OriginalPrice,
	})
	if err != nil {
		return nil, err
	}

	order := buildOrder(input, userCart, priced, ship)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		if _, err := cartRepo.FindActiveByID(ctx, userCart.ID); err != nil {
			if repo.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart was already checked out")
			}
			return err
		}

		if order.CouponID != nil {
			if err := s.redeemCoupon(ctx, tx, order, priced.OriginalPrice); err != nil {
				return err
			}
		}
		if err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if order.CouponID != nil {
			if err := s.coupons.WithTx(tx).RecordRedemption(ctx, &models.CouponRedemption{
				CouponID: *order.CouponID,
				UserID:   &order.UserID,
				OrderID:  order.ID,
			}); err != nil {
				return err
			}
		}
		if err := s.emitEvents(ctx, tx, order); err != nil {
			return err
		}
		return cartRepo.UpdateStatus(ctx, userCart.ID, enums.CartStatusConverted)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
			"cart_id":     userCart.ID.String(),
			"user_id":     order.UserID.String(),
			"total_cents": order.TotalCents,
		})
		s.logg.Info(logCtx, "checkout.order_placed")
	}
	return order, nil
}

// redeemCoupon re-checks the coupon under a row lock so concurrent orders
// cannot exceed its caps.
func (s *service) redeemCoupon(ctx context.Context, tx *gorm.DB, order *models.Order, subtotal int64) error {
	couponRepo := s.coupons.WithTx(tx)
	coupon, err := couponRepo.LockForRedemption(ctx, *order.CouponID)
	if err != nil {
		if repo.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeCouponNotFound, "coupon code is not valid")
		}
		return err
	}
	validator, err := coupons.NewValidator(couponRepo, s.variants, nil, s.now)
	if err != nil {
		return err
	}
	return validator.Evaluate(ctx, coupon, subtotal, &order.UserID)
}

func (s *service) emitEvents(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if s.events == nil {
		return nil
	}
	actor := &outbox.ActorRef{UserID: order.UserID, Role: string(enums.UserRoleCustomer)}
	if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actor,
		OccurredAt:    s.now().UTC(),
		Data: outbox.OrderPlaced{
			OrderID:       order.ID,
			UserID:        order.UserID,
			CartID:        order.CartID,
			PaymentMethod: string(order.PaymentMethod),
			SubtotalCents: order.SubtotalCents,
			DiscountCents: order.DiscountCents + order.CouponDiscountCents,
			ShippingCents: order.ShippingCents,
			TotalCents:    order.TotalCents,
			CouponID:      order.CouponID,
			LineCount:     len(order.Lines),
		},
	}); err != nil {
		return fmt.Errorf("emit order placed: %w", err)
	}
	if order.CouponID == nil {
		return nil
	}
	if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCouponRedeemed,
		AggregateType: enums.AggregateCoupon,
		AggregateID:   *order.CouponID,
		Actor:         actor,
		OccurredAt:    s.now().UTC(),
		Data: outbox.CouponRedeemed{
			CouponID:            *order.CouponID,
			OrderID:             order.ID,
			UserID:              order.UserID,
			CouponDiscountCents: order.CouponDiscountCents,
		},
	}); err != nil {
		return fmt.Errorf("emit coupon redeemed: %w", err)
	}
	return nil
}

// ensurePurchasable rejects carts holding variants that were switched off
// after being added.
func (s *service) ensurePurchasable(ctx context.Context, lines []models.CartLine) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.VariantID)
	}
	variants, err := s.variants.VariantsByID(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
	}
	for _, line := range lines {
		v, ok := variants[line.VariantID]
		if !ok || !v.IsActive {
			return pkgerrors.New(pkgerrors.CodeConflict, "a cart item is no longer available").
				WithDetails(map[string]any{"variant_id": line.VariantID.String()})
		}
	}
	return nil
}

func buildOrder(input PlaceOrderInput, userCart *models.Cart, priced *pricing.Result, ship *shipping.OrderShipping) *models.Order {
	lines := make([]models.OrderLine, 0, len(priced.LineItems))
	for _, item := range priced.LineItems {
		lines = append(lines, models.OrderLine{
			ProductID:            item.ProductID,
			VariantID:            item.VariantID,
			Quantity:             item.Quantity,
			UnitPriceCents:       item.UnitPrice,
			OriginalTotalCents:   item.OriginalTotal,
			DiscountedTotalCents: item.DiscountedTotal,
			AppliedDiscounts:     types.AppliedDiscounts(item.AppliedDiscounts),
		})
	}

	order := &models.Order{
		UserID:              input.UserID,
		CartID:              userCart.ID,
		Status:              enums.OrderStatusPlaced,
		PaymentMethod:       input.PaymentMethod,
		SubtotalCents:       priced.OriginalPrice,
		DiscountCents:       priced.LineDiscount(),
		CouponDiscountCents: priced.CouponDiscount(),
		ShippingCents:       ship.Cost,
		TotalCents:          priced.DiscountedPrice + ship.Cost,
		ShippingMethodID:    ship.MethodID,
		ShippingRuleID:      ship.RuleID,
		ShippingZoneID:      ship.ZoneID,
		ShippingAddress:     ship.Address,
		AppliedDiscounts:    types.AppliedDiscounts(priced.AppliedDiscounts),
		Lines:               lines,
	}
	if priced.AppliedCoupon != nil && priced.AppliedCoupon.Applied {
		id := priced.AppliedCoupon.CouponID
		order.CouponID = &id
	}
	return order
}
