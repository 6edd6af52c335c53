package pricing

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// LineItem is the priced view of one cart line.
type LineItem struct {
	LineID           uuid.UUID               `json:"line_id"`
	ProductID        uuid.UUID               `json:"product_id"`
	VariantID        uuid.UUID               `json:"variant_id"`
	Quantity         int                     `json:"quantity"`
	UnitPrice        int64                   `json:"unit_price"`
	OriginalTotal    int64                   `json:"original_total"`
	DiscountedTotal  int64                   `json:"discounted_total"`
	AppliedDiscounts []types.AppliedDiscount `json:"applied_discounts"`
}

// AppliedCoupon describes a valid cart coupon. Applied is set once its
// amount has been taken off the discounted total; AmountCents may be 0 when
// line discounts already brought the total to 0.
type AppliedCoupon struct {
	CouponID    uuid.UUID `json:"coupon_id"`
	Code        string    `json:"code"`
	Type        string    `json:"type"`
	Value       int64     `json:"value"`
	Stackable   bool      `json:"stackable"`
	Applied     bool      `json:"applied"`
	AmountCents int64     `json:"amount_cents"`
}

// CouponIssue explains why the cart coupon was left out of the totals.
type CouponIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the full pricing of a cart. Amounts are integer minor units.
type Result struct {
	CartID                 uuid.UUID               `json:"cart_id"`
	OriginalPrice          int64                   `json:"original_price"`
	DiscountedPrice        int64                   `json:"discounted_price"`
	LineItems              []LineItem              `json:"line_items"`
	AppliedDiscounts       []types.AppliedDiscount `json:"applied_discounts"`
	AppliedCoupon          *AppliedCoupon          `json:"applied_coupon,omitempty"`
	CouponIssue            *CouponIssue            `json:"coupon_issue,omitempty"`
	TotalSavings           int64                   `json:"total_savings"`
	TotalPercentageSavings int64                   `json:"total_percentage_savings"`
}

// CouponDiscount is the amount the coupon removed, 0 when not applied.
func (r *Result) CouponDiscount() int64 {
	if r == nil || r.AppliedCoupon == nil || !r.AppliedCoupon.Applied {
		return 0
	}
	return r.AppliedCoupon.AmountCents
}

// LineDiscount is the amount removed by line-level discounts.
func (r *Result) LineDiscount() int64 {
	if r == nil {
		return 0
	}
	return r.TotalSavings - r.CouponDiscount()
}

// aggregate merges per-line applied discounts by discount id, keeping first
// appearance order.
func aggregate(lines []LineItem) []types.AppliedDiscount {
	out := []types.AppliedDiscount{}
	index := map[uuid.UUID]int{}
	for _, line := range lines {
		for _, applied := range line.AppliedDiscounts {
			if i, ok := index[applied.DiscountID]; ok {
				out[i].AmountCents += applied.AmountCents
				continue
			}
			index[applied.DiscountID] = len(out)
			out = append(out, applied)
		}
	}
	return out
}
