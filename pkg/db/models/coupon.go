package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Coupon codes are stored normalized (trimmed, lowercase).
type Coupon struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Code                  string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType          enums.DiscountType `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue         int64              `gorm:"column:discount_value;not null"`
	StartDate             time.Time          `gorm:"column:start_date;not null"`
	EndDate               time.Time          `gorm:"column:end_date;not null"`
	IsActive              bool               `gorm:"column:is_active;not null"`
	MinimumCartValue      *int64             `gorm:"column:minimum_cart_value"`
	MaxRedemptions        *int64             `gorm:"column:max_redemptions"`
	MaxRedemptionsPerUser *int64             `gorm:"column:max_redemptions_per_user"`
	IsStackable           bool               `gorm:"column:is_stackable;not null"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// ActiveAt reports whether the coupon is switched on and inside its window.
func (c *Coupon) ActiveAt(now time.Time) bool {
	return c.IsActive && !now.Before(c.StartDate) && !now.After(c.EndDate)
}

// CouponRedemption is append-only; redemption counts are derived from it.
type CouponRedemption struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CouponID   uuid.UUID  `gorm:"column:coupon_id;type:uuid;not null;index"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	RedeemedAt time.Time  `gorm:"column:redeemed_at;not null"`
}

func (r *CouponRedemption) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	if r.RedeemedAt.IsZero() {
		r.RedeemedAt = time.Now().UTC()
	}
	return nil
}
