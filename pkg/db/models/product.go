package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is catalog data owned elsewhere; this service only reads it.
type Product struct {
	ID         uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name       string           `gorm:"column:name;not null"`
	CategoryID *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Variants   []ProductVariant `gorm:"foreignKey:ProductID"`
	CreatedAt  time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type ProductVariant struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SKU        string    `gorm:"column:sku;not null;uniqueIndex"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
	IsActive   bool      `gorm:"column:is_active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// ProductCollection links a product to a merchandising collection.
type ProductCollection struct {
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	CollectionID uuid.UUID `gorm:"column:collection_id;type:uuid;primaryKey"`
}
