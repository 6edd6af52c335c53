package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository reads shipping reference data.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ActiveZones(ctx context.Context) ([]models.ShippingZone, error) {
	var out []models.ShippingZone
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) ActiveMethods(ctx context.Context) ([]models.ShippingMethod, error) {
	var out []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) FindMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	var m models.ShippingMethod
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveRules returns the active rules of a method in the given zones, best
// candidate first.
func (r *Repository) ActiveRules(ctx context.Context, methodID uuid.UUID, zoneIDs []uuid.UUID) ([]models.ShippingRule, error) {
	var out []models.ShippingRule
	if len(zoneIDs) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).
		Where("method_id = ? AND zone_id IN ? AND is_active = ?", methodID, zoneIDs, true).
		Order("priority DESC, created_at DESC, id ASC").
		Find(&out).Error
	return out, err
}
