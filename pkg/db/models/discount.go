package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Discount is an automatic price reduction. Only the id list matching Scope is
// meaningful; the others are kept empty.
type Discount struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name          string              `gorm:"column:name;not null"`
	Scope         enums.DiscountScope `gorm:"column:scope;type:discount_scope;not null"`
	DiscountType  enums.DiscountType  `gorm:"column:discount_type;type:discount_type;not null"`
	DiscountValue int64               `gorm:"column:discount_value;not null"`
	Priority      int                 `gorm:"column:priority;not null;default:0"`
	IsStackable   bool                `gorm:"column:is_stackable;not null"`
	IsActive      bool                `gorm:"column:is_active;not null"`
	StartDate     time.Time           `gorm:"column:start_date;not null"`
	EndDate       time.Time           `gorm:"column:end_date;not null"`
	ProductIDs    []uuid.UUID         `gorm:"column:product_ids;type:jsonb;serializer:json"`
	VariantIDs    []uuid.UUID         `gorm:"column:variant_ids;type:jsonb;serializer:json"`
	CategoryIDs   []uuid.UUID         `gorm:"column:category_ids;type:jsonb;serializer:json"`
	CollectionIDs []uuid.UUID         `gorm:"column:collection_ids;type:jsonb;serializer:json"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (d *Discount) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

// ActiveAt reports whether the discount is switched on and inside its window.
func (d *Discount) ActiveAt(now time.Time) bool {
	return d.IsActive && !now.Before(d.StartDate) && !now.After(d.EndDate)
}
