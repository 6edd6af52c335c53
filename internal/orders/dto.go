package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// OrderLineDTO is the public view of an order line.
type OrderLineDTO struct {
	ID                   uuid.UUID               `json:"id"`
	ProductID            uuid.UUID               `json:"product_id"`
	VariantID            uuid.UUID               `json:"variant_id"`
	Quantity             int                     `json:"quantity"`
	UnitPriceCents       int64                   `json:"unit_price_cents"`
	OriginalTotalCents   int64                   `json:"original_total_cents"`
	DiscountedTotalCents int64                   `json:"discounted_total_cents"`
	AppliedDiscounts     []types.AppliedDiscount `json:"applied_discounts"`
}

// OrderDTO is the public view of a placed order.
type OrderDTO struct {
	ID                  uuid.UUID               `json:"id"`
	Status              string                  `json:"status"`
	PaymentMethod       string                  `json:"payment_method"`
	SubtotalCents       int64                   `json:"subtotal_cents"`
	DiscountCents       int64                   `json:"discount_cents"`
	CouponDiscountCents int64                   `json:"coupon_discount_cents"`
	ShippingCents       int64                   `json:"shipping_cents"`
	TotalCents          int64                   `json:"total_cents"`
	CouponID            *uuid.UUID              `json:"coupon_id,omitempty"`
	ShippingMethodID    uuid.UUID               `json:"shipping_method_id"`
	ShippingAddress     types.AddressSnapshot   `json:"shipping_address"`
	AppliedDiscounts    []types.AppliedDiscount `json:"applied_discounts"`
	Lines               []OrderLineDTO          `json:"lines"`
	CreatedAt           time.Time               `json:"created_at"`
}

// OrderList is one cursor page of a user's orders.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func nonNil(in types.AppliedDiscounts) []types.AppliedDiscount {
	if in == nil {
		return []types.AppliedDiscount{}
	}
	return in
}

// ToDTO maps an order row for API responses.
func ToDTO(o *models.Order) OrderDTO {
	lines := make([]OrderLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineDTO{
			ID:                   l.ID,
			ProductID:            l.ProductID,
			VariantID:            l.VariantID,
			Quantity:             l.Quantity,
			UnitPriceCents:       l.UnitPriceCents,
			OriginalTotalCents:   l.OriginalTotalCents,
			DiscountedTotalCents: l.DiscountedTotalCents,
			AppliedDiscounts:     nonNil(l.AppliedDiscounts),
		})
	}
	return OrderDTO{
		ID:                  o.ID,
		Status:              o.Status.String(),
		PaymentMethod:       o.PaymentMethod.String(),
		SubtotalCents:       o.SubtotalCents,
		DiscountCents:       o.DiscountCents,
		CouponDiscountCents: o.CouponDiscountCents,
		ShippingCents:       o.ShippingCents,
		TotalCents:          o.TotalCents,
		CouponID:            o.CouponID,
		ShippingMethodID:    o.ShippingMethodID,
		ShippingAddress:     o.ShippingAddress,
		AppliedDiscounts:    nonNil(o.AppliedDiscounts),
		Lines:               lines,
		CreatedAt:           o.CreatedAt,
	}
}
