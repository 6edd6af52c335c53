// Package catalog reads live product and variant data used for pricing.
package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Variant is a purchasable variant joined with the product attributes that
// discounts can target.
type Variant struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	CategoryID    *uuid.UUID
	CollectionIDs []uuid.UUID
	PriceCents    int64
	IsActive      bool
}

type variantRow struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	PriceCents int64
	IsActive   bool
}

// Repository exposes read-only catalog lookups.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.Tx(tx)}
}

// VariantsByID loads the requested variants in one round trip per table.
// Unknown ids are absent from the result.
func (r *Repository) VariantsByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Variant, error) {
	out := make(map[uuid.UUID]Variant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []variantRow
	err := r.base.DB(ctx).
		Table("product_variants AS pv").
		Select("pv.id AS id, pv.product_id AS product_id, p.category_id AS category_id, pv.price_cents AS price_cents, pv.is_active AS is_active").
		Joins("JOIN products AS p ON p.id = pv.product_id").
		Where("pv.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		productIDs = append(productIDs, row.ProductID)
	}
	collections, err := r.collectionsByProduct(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.ID] = Variant{
			ID:            row.ID,
			ProductID:     row.ProductID,
			CategoryID:    row.CategoryID,
			CollectionIDs: collections[row.ProductID],
			PriceCents:    row.PriceCents,
			IsActive:      row.IsActive,
		}
	}
	return out, nil
}

// Variant loads a single variant. gorm.ErrRecordNotFound is returned when it
// does not exist.
func (r *Repository) Variant(ctx context.Context, id uuid.UUID) (*Variant, error) {
	found, err := r.VariantsByID(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	v, ok := found[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *Repository) collectionsByProduct(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := map[uuid.UUID][]uuid.UUID{}
	if len(productIDs) == 0 {
		return out, nil
	}
	var links []models.ProductCollection
	if err := r.base.DB(ctx).Where("product_id IN ?", productIDs).Find(&links).Error; err != nil {
		return nil, err
	}
	for _, link := range links {
		out[link.ProductID] = append(out[link.ProductID], link.CollectionID)
	}
	return out, nil
}
