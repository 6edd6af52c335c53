package enums

import "fmt"

// ShippingConditionType gates whether a shipping rule applies.
type ShippingConditionType string

const (
	ShippingConditionTypeNone           ShippingConditionType = "NONE"
	ShippingConditionTypeMinOrderValue  ShippingConditionType = "MIN_ORDER_VALUE"
	ShippingConditionTypeWeightRange    ShippingConditionType = "WEIGHT_RANGE"
	ShippingConditionTypeDimensionRange ShippingConditionType = "DIMENSION_RANGE"
)

var validShippingConditionTypes = []ShippingConditionType{
	ShippingConditionTypeNone,
	ShippingConditionTypeMinOrderValue,
	ShippingConditionTypeWeightRange,
	ShippingConditionTypeDimensionRange,
}

// String implements fmt.Stringer.
func (s ShippingConditionType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingConditionType.
func (s ShippingConditionType) IsValid() bool {
	for _, candidate := range validShippingConditionTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingConditionType converts raw input into a ShippingConditionType.
func ParseShippingConditionType(value string) (ShippingConditionType, error) {
	for _, candidate := range validShippingConditionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping condition %q", value)
}
