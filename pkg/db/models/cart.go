package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Cart is anchored either to a user or to an anonymous session, never both.
type Cart struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID          *uuid.UUID       `gorm:"column:user_id;type:uuid;index"`
	SessionID       *string          `gorm:"column:session_id;index"`
	Status          enums.CartStatus `gorm:"column:status;type:cart_status;not null;default:'active'"`
	AppliedCouponID *uuid.UUID       `gorm:"column:applied_coupon_id;type:uuid"`
	Lines           []CartLine       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// IsAnonymous reports whether the cart belongs to a session rather than a user.
func (c *Cart) IsAnonymous() bool {
	return c.UserID == nil
}
