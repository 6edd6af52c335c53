package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// ShippingZone fields beyond those required by Scope are ignored when matching.
type ShippingZone struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Scope     enums.ZoneScope `gorm:"column:scope;type:zone_scope;not null"`
	Country   *string         `gorm:"column:country"`
	State     *string         `gorm:"column:state"`
	City      *string         `gorm:"column:city"`
	IsActive  bool            `gorm:"column:is_active;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (z *ShippingZone) BeforeCreate(*gorm.DB) error {
	ensureID(&z.ID)
	return nil
}

type ShippingMethod struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Type      enums.ShippingMethodType `gorm:"column:type;type:shipping_method_type;not null"`
	Name      string                   `gorm:"column:name;not null"`
	IsActive  bool                     `gorm:"column:is_active;not null"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *ShippingMethod) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// ShippingRule prices one method inside one zone.
type ShippingRule struct {
	ID              uuid.UUID                   `gorm:"column:id;type:uuid;primaryKey"`
	ZoneID          uuid.UUID                   `gorm:"column:zone_id;type:uuid;not null;index"`
	MethodID        uuid.UUID                   `gorm:"column:method_id;type:uuid;not null;index"`
	BaseCostCents   int64                       `gorm:"column:base_cost_cents;not null"`
	Priority        int                         `gorm:"column:priority;not null;default:0"`
	IsActive        bool                        `gorm:"column:is_active;not null"`
	ConditionType   enums.ShippingConditionType `gorm:"column:condition_type;type:shipping_condition_type;not null;default:'NONE'"`
	ConditionConfig types.ShippingCondition     `gorm:"column:condition_config;type:jsonb"`
	CreatedAt       time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ShippingRule) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
