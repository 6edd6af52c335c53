package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/address"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/coupons"
	"github.com/angelmondragon/storefront-backend/internal/discounts"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/shipping"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return baseTime }

type fixture struct {
	db        *gorm.DB
	svc       Service
	userID    uuid.UUID
	addressID uuid.UUID
	methodID  uuid.UUID
	cart      *models.Cart
	variant   models.ProductVariant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, db := dbtest.Client(t)

	catalogRepo := catalog.NewRepository(db)
	cartRepo := cart.NewRepository(db)
	couponRepo := coupons.NewRepository(db)
	validator, err := coupons.NewValidator(couponRepo, catalogRepo, nil, fixedNow)
	require.NoError(t, err)
	resolver, err := pricing.NewResolver(pricing.Deps{
		Carts:     cartRepo,
		Variants:  catalogRepo,
		Discounts: discounts.NewMatcher(discounts.NewRepository(db), nil, fixedNow),
		Coupons:   validator,
	})
	require.NoError(t, err)
	addresses, err := address.NewService(address.NewRepository(db), client)
	require.NoError(t, err)
	shippingSvc, err := shipping.NewService(shipping.NewRepository(db), addresses, resolver)
	require.NoError(t, err)

	svc, err := NewService(Deps{
		Tx:       client,
		Carts:    cartRepo,
		Orders:   orders.NewRepository(db),
		Coupons:  couponRepo,
		Variants: catalogRepo,
		Pricing:  resolver,
		Shipping: shippingSvc,
		Outbox:   outbox.NewService(outbox.NewRepository(db), nil),
		Now:      fixedNow,
	})
	require.NoError(t, err)

	f := &fixture{db: db, svc: svc, userID: uuid.New()}

	addr := models.Address{
		UserID: f.userID, FullName: "Hina", Line1: "3 Model Town", City: "Lahore",
		State: "Punjab", PostalCode: "54700", Country: "Pakistan", IsDefault: true,
	}
	require.NoError(t, db.Create(&addr).Error)
	f.addressID = addr.ID

	country := "Pakistan"
	zone := models.ShippingZone{Name: "PK", Scope: enums.ZoneScopeCountry, Country: &country, IsActive: true}
	require.NoError(t, db.Create(&zone).Error)
	method := models.ShippingMethod{Name: "Standard", Type: enums.ShippingMethodTypeStandard, IsActive: true}
	require.NoError(t, db.Create(&method).Error)
	require.NoError(t, db.Create(&models.ShippingRule{
		ZoneID: zone.ID, MethodID: method.ID, BaseCostCents: 400, Priority: 1, IsActive: true,
		ConditionType: enums.ShippingConditionTypeNone,
	}).Error)
	f.methodID = method.ID

	product := models.Product{Name: "Kurta"}
	require.NoError(t, db.Create(&product).Error)
	f.variant = models.ProductVariant{ProductID: product.ID, SKU: "KURTA-M", PriceCents: 2000, IsActive: true}
	require.NoError(t, db.Create(&f.variant).Error)

	f.cart = &models.Cart{UserID: &f.userID, Status: enums.CartStatusActive}
	require.NoError(t, cartRepo.Create(context.Background(), f.cart))
	require.NoError(t, cartRepo.CreateLine(context.Background(), &models.CartLine{
		CartID: f.cart.ID, ProductID: product.ID, VariantID: f.variant.ID, Quantity: 1, UnitPriceCents: 2000,
	}))
	return f
}

func (f *fixture) discount(t *testing.T, typ enums.DiscountType, value int64, priority int, stackable bool) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.Discount{
		Name: "auto", Scope: enums.DiscountScopeSiteWide, DiscountType: typ, DiscountValue: value,
		Priority: priority, IsStackable: stackable, IsActive: true,
		StartDate: baseTime.Add(-time.Hour), EndDate: baseTime.Add(time.Hour),
	}).Error)
}

func (f *fixture) attachCoupon(t *testing.T, mutate func(*models.Coupon)) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		Code: "extra5", DiscountType: enums.DiscountTypePercentage, DiscountValue: 5, IsStackable: true,
		IsActive: true, StartDate: baseTime.Add(-time.Hour), EndDate: baseTime.Add(time.Hour),
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, f.db.Create(c).Error)
	require.NoError(t, f.db.Model(&models.Cart{}).Where("id = ?", f.cart.ID).Update("applied_coupon_id", c.ID).Error)
	return c
}

func (f *fixture) input() PlaceOrderInput {
	return PlaceOrderInput{UserID: f.userID, AddressID: f.addressID}
}

func TestPlaceOrderSnapshotsPricingAndShipping(t *testing.T) {
	f := newFixture(t)
	f.discount(t, enums.DiscountTypePercentage, 10, 5, false)
	f.discount(t, enums.DiscountTypeFixed, 150, 1, true)
	coupon := f.attachCoupon(t, nil)

	order, err := f.svc.PlaceOrder(context.Background(), f.input())
	require.NoError(t, err)

	// 2000 -> 1800 -> 1650 from line discounts, 5% coupon on 1650 = 82
	assert.Equal(t, int64(2000), order.SubtotalCents)
	assert.Equal(t, int64(350), order.DiscountCents)
	assert.Equal(t, int64(82), order.CouponDiscountCents)
	assert.Equal(t, int64(400), order.ShippingCents)
	assert.Equal(t, int64(1568+400), order.TotalCents)
	assert.Equal(t, f.methodID, order.ShippingMethodID)
	assert.Equal(t, enums.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, "Lahore", order.ShippingAddress.City)
	require.NotNil(t, order.CouponID)
	assert.Equal(t, coupon.ID, *order.CouponID)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(1650), order.Lines[0].DiscountedTotalCents)
	assert.Len(t, order.AppliedDiscounts, 2)

	var redemptions []models.CouponRedemption
	require.NoError(t, f.db.Find(&redemptions).Error)
	require.Len(t, redemptions, 1)
	assert.Equal(t, order.ID, redemptions[0].OrderID)
	require.NotNil(t, redemptions[0].UserID)
	assert.Equal(t, f.userID, *redemptions[0].UserID)

	var statuses []string
	require.NoError(t, f.db.Model(&models.Cart{}).Where("id = ?", f.cart.ID).Pluck("status", &statuses).Error)
	assert.Equal(t, []string{enums.CartStatusConverted.String()}, statuses)

	var events []models.OutboxEvent
	require.NoError(t, f.db.Order("event_type DESC").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, enums.EventOrderPlaced, events[0].EventType)
	assert.Equal(t, order.ID, events[0].AggregateID)
	assert.Equal(t, enums.EventCouponRedeemed, events[1].EventType)
	assert.Equal(t, coupon.ID, events[1].AggregateID)
	env, err := outbox.DecodeEnvelope(events[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, baseTime, env.OccurredAt.UTC())
	assert.Contains(t, string(env.Data), `"totalCents":1968`)

	// the cart is gone, a replay has nothing to check out
	_, err = f.svc.PlaceOrder(context.Background(), f.input())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCartNotFound))
}

func TestPlaceOrderRejectsCheckoutCoupon(t *testing.T) {
	f := newFixture(t)
	in := f.input()
	in.CouponCode = "extra5"

	_, err := f.svc.PlaceOrder(context.Background(), in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCouponNotAllowed))
}

func TestPlaceOrderFailsOnCouponIssue(t *testing.T) {
	f := newFixture(t)
	f.attachCoupon(t, func(c *models.Coupon) {
		minimum := int64(5000)
		c.MinimumCartValue = &minimum
	})

	_, err := f.svc.PlaceOrder(context.Background(), f.input())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCouponMinimumNotMet))

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, f.db.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPlaceOrderRejectsCouponOverUserCap(t *testing.T) {
	f := newFixture(t)
	coupon := f.attachCoupon(t, func(c *models.Coupon) {
		limit := int64(1)
		c.MaxRedemptionsPerUser = &limit
	})
	require.NoError(t, f.db.Create(&models.CouponRedemption{CouponID: coupon.ID, UserID: &f.userID, OrderID: uuid.New()}).Error)

	_, err := f.svc.PlaceOrder(context.Background(), f.input())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCouponUserLimitReached))
}

func TestPlaceOrderShippingUnavailable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.ShippingRule{}).Where("1 = 1").Update("is_active", false).Error)

	_, err := f.svc.PlaceOrder(context.Background(), f.input())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeShippingUnavailable))
}

func TestPlaceOrderRejectsInactiveVariant(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.ProductVariant{}).Where("id = ?", f.variant.ID).Update("is_active", false).Error)

	_, err := f.svc.PlaceOrder(context.Background(), f.input())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)

	in := f.input()
	in.PaymentMethod = "card"
	_, err := f.svc.PlaceOrder(context.Background(), in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	in = f.input()
	in.AddressID = uuid.Nil
	_, err = f.svc.PlaceOrder(context.Background(), in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	in = f.input()
	in.AddressID = uuid.New()
	_, err = f.svc.PlaceOrder(context.Background(), in)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAddressAbsent))

	require.NoError(t, f.db.Where("cart_id = ?", f.cart.ID).Delete(&models.CartLine{}).Error)
	_, err = f.svc.PlaceOrder(context.Background(), f.input())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestBuildOrderWithoutAppliedCoupon(t *testing.T) {
	priced := &pricing.Result{
		OriginalPrice:   2000,
		DiscountedPrice: 1500,
		TotalSavings:    500,
		AppliedCoupon:   &pricing.AppliedCoupon{CouponID: uuid.New(), Applied: false},
	}
	order := buildOrder(PlaceOrderInput{UserID: uuid.New(), PaymentMethod: enums.PaymentMethodCOD},
		&models.Cart{ID: uuid.New()}, priced, &shipping.OrderShipping{Cost: 300, Address: types.AddressSnapshot{City: "Lahore"}})
	assert.Nil(t, order.CouponID)
	assert.Equal(t, int64(500), order.DiscountCents)
	assert.Zero(t, order.CouponDiscountCents)
	assert.Equal(t, int64(1800), order.TotalCents)
}
