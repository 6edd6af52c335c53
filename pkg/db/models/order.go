package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Order freezes pricing and shipping as they were resolved at placement.
type Order struct {
	ID                  uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	UserID              uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	CartID              uuid.UUID              `gorm:"column:cart_id;type:uuid;not null"`
	Status              enums.OrderStatus      `gorm:"column:status;type:order_status;not null;default:'placed'"`
	PaymentMethod       enums.PaymentMethod    `gorm:"column:payment_method;type:payment_method;not null;default:'cod'"`
	SubtotalCents       int64                  `gorm:"column:subtotal_cents;not null"`
	DiscountCents       int64                  `gorm:"column:discount_cents;not null"`
	CouponDiscountCents int64                  `gorm:"column:coupon_discount_cents;not null;default:0"`
	ShippingCents       int64                  `gorm:"column:shipping_cents;not null"`
	TotalCents          int64                  `gorm:"column:total_cents;not null"`
	CouponID            *uuid.UUID             `gorm:"column:coupon_id;type:uuid"`
	ShippingMethodID    uuid.UUID              `gorm:"column:shipping_method_id;type:uuid;not null"`
	ShippingRuleID      uuid.UUID              `gorm:"column:shipping_rule_id;type:uuid;not null"`
	ShippingZoneID      uuid.UUID              `gorm:"column:shipping_zone_id;type:uuid;not null"`
	ShippingAddress     types.AddressSnapshot  `gorm:"column:shipping_address;type:jsonb;not null"`
	AppliedDiscounts    types.AppliedDiscounts `gorm:"column:applied_discounts;type:jsonb"`
	Lines               []OrderLine            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

type OrderLine struct {
	ID                   uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	OrderID              uuid.UUID              `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID            uuid.UUID              `gorm:"column:product_id;type:uuid;not null"`
	VariantID            uuid.UUID              `gorm:"column:variant_id;type:uuid;not null"`
	Quantity             int                    `gorm:"column:quantity;not null"`
	UnitPriceCents       int64                  `gorm:"column:unit_price_cents;not null"`
	OriginalTotalCents   int64                  `gorm:"column:original_total_cents;not null"`
	DiscountedTotalCents int64                  `gorm:"column:discounted_total_cents;not null"`
	AppliedDiscounts     types.AppliedDiscounts `gorm:"column:applied_discounts;type:jsonb"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
