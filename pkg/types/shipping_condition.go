package types

import (
	"database/sql/driver"
	"encoding/json"
)

// ShippingCondition is the condition_config payload of a shipping rule. Only
// the field matching the rule's condition type is read.
type ShippingCondition struct {
	MinOrderValue *int64   `json:"minOrderValue,omitempty"`
	MinWeight     *float64 `json:"minWeight,omitempty"`
	MaxWeight     *float64 `json:"maxWeight,omitempty"`
	MaxDimension  *float64 `json:"maxDimension,omitempty"`
}

// Value serializes the condition to JSON.
func (c ShippingCondition) Value() (driver.Value, error) {
	return jsonValue(c)
}

// Scan decodes JSONB into the condition.
func (c *ShippingCondition) Scan(value any) error {
	if value == nil {
		*c = ShippingCondition{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}
