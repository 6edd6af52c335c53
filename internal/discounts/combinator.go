package discounts

import (
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Combination is the outcome of applying discounts to one price.
type Combination struct {
	FinalPrice int64
	Applied    []types.AppliedDiscount
}

// Savings is the total removed from the base price.
func (c Combination) Savings(basePrice int64) int64 {
	return basePrice - c.FinalPrice
}

// Combine applies at most one non-stackable discount (the best ranked by
// Ordered, applied first) followed by every stackable discount in StackOrdered
// order, each against the running price. The price never drops below zero.
func Combine(discounts []Discount, basePrice int64) Combination {
	current := money.Floor(basePrice)
	out := Combination{FinalPrice: current}
	if len(discounts) == 0 {
		return out
	}

	var chain, stackable []Discount
	for _, d := range Ordered(discounts) {
		if !d.Stackable {
			chain = append(chain, d)
			break
		}
	}
	for _, d := range discounts {
		if d.Stackable {
			stackable = append(stackable, d)
		}
	}
	chain = append(chain, StackOrdered(stackable)...)

	for _, d := range chain {
		amount := money.Reduction(d.Type, d.Value, current)
		current -= amount
		out.Applied = append(out.Applied, types.AppliedDiscount{
			DiscountID:  d.ID,
			Name:        d.Name,
			Type:        d.Type.String(),
			Value:       d.Value,
			AmountCents: amount,
		})
	}

	out.FinalPrice = current
	return out
}
