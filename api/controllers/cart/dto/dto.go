// Package cartdto holds the request and response shapes of the cart API.
package cartdto

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type CartLine struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	VariantID      uuid.UUID `json:"variant_id"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

type Cart struct {
	ID              uuid.UUID  `json:"id"`
	Status          string     `json:"status"`
	Anonymous       bool       `json:"anonymous"`
	AppliedCouponID *uuid.UUID `json:"applied_coupon_id,omitempty"`
	Lines           []CartLine `json:"lines"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CartResponse pairs the cart contents with its live pricing.
type CartResponse struct {
	Cart    Cart            `json:"cart"`
	Pricing *pricing.Result `json:"pricing"`
}

func NewCart(c *models.Cart) Cart {
	lines := make([]CartLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, CartLine{
			ID:             l.ID,
			ProductID:      l.ProductID,
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
	}
	return Cart{
		ID:              c.ID,
		Status:          c.Status.String(),
		Anonymous:       c.IsAnonymous(),
		AppliedCouponID: c.AppliedCouponID,
		Lines:           lines,
		UpdatedAt:       c.UpdatedAt,
	}
}
