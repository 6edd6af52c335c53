package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// AppliedDiscount records one discount (or coupon) that reduced a price.
type AppliedDiscount struct {
	DiscountID  uuid.UUID `json:"discount_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Value       int64     `json:"value"`
	AmountCents int64     `json:"amount_cents"`
}

// AppliedDiscounts is persisted as a JSON array on order rows.
type AppliedDiscounts []AppliedDiscount

// Total sums the amounts removed.
func (a AppliedDiscounts) Total() int64 {
	var total int64
	for _, d := range a {
		total += d.AmountCents
	}
	return total
}

// Value serializes the slice to JSON; nil is stored as an empty array.
func (a AppliedDiscounts) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return jsonValue([]AppliedDiscount(a))
}

// Scan decodes a JSON array.
func (a *AppliedDiscounts) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []AppliedDiscount
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*a = decoded
	return nil
}
