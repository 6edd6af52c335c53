package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository encapsulates cart and cart line persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) withLines(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	})
}

// FindActiveByID returns the cart with its lines when it is still active.
func (r *Repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.withLines(ctx).
		Where("id = ? AND status = ?", id, enums.CartStatusActive).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindActiveByUser returns the user's active cart.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.withLines(ctx).
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindActiveBySession returns the active anonymous cart for a session.
func (r *Repository) FindActiveBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.withLines(ctx).
		Where("session_id = ? AND user_id IS NULL AND status = ?", sessionID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) Create(ctx context.Context, cart *models.Cart) error {
	if cart.Status == "" {
		cart.Status = enums.CartStatusActive
	}
	return r.db.WithContext(ctx).Omit("Lines").Create(cart).Error
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CartStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SetAppliedCoupon replaces the cart coupon; nil clears it.
func (r *Repository) SetAppliedCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("applied_coupon_id", couponID).Error
}

// Touch bumps updated_at so activity postpones abandoned-cart cleanup.
func (r *Repository) Touch(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *Repository) FindLineByItem(ctx context.Context, cartID, productID, variantID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ? AND variant_id = ?", cartID, productID, variantID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Repository) CreateLine(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateLine sets quantity and the price snapshot of an existing line.
func (r *Repository) UpdateLine(ctx context.Context, lineID uuid.UUID, quantity int, unitPriceCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Updates(map[string]any{
			"quantity":         quantity,
			"unit_price_cents": unitPriceCents,
		}).Error
}

// UpdateLineQuantity reports whether a line of the cart was updated.
func (r *Repository) UpdateLineQuantity(ctx context.Context, cartID, lineID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Update("quantity", quantity)
	return res.RowsAffected > 0, res.Error
}

// DeleteLine reports whether a line of the cart was removed.
func (r *Repository) DeleteLine(ctx context.Context, cartID, lineID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cartID).
		Delete(&models.CartLine{})
	return res.RowsAffected > 0, res.Error
}

// DeleteMergedBefore removes merged carts last touched before cutoff.
func (r *Repository) DeleteMergedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, "status = ? AND updated_at < ?", enums.CartStatusMerged, cutoff)
}

// DeleteAbandonedBefore removes active anonymous carts idle since cutoff.
func (r *Repository) DeleteAbandonedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, "status = ? AND user_id IS NULL AND updated_at < ?", enums.CartStatusActive, cutoff)
}

func (r *Repository) deleteWhere(ctx context.Context, query string, args ...any) (int64, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where(query, args...).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).
		Where("cart_id IN ?", ids).
		Delete(&models.CartLine{}).Error; err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&models.Cart{})
	return res.RowsAffected, res.Error
}
