package enums

import "fmt"

// ShippingMethodType classifies delivery options.
type ShippingMethodType string

const (
	ShippingMethodTypeStandard ShippingMethodType = "STANDARD"
	ShippingMethodTypeExpress  ShippingMethodType = "EXPRESS"
	ShippingMethodTypeFree     ShippingMethodType = "FREE"
)

var validShippingMethodTypes = []ShippingMethodType{
	ShippingMethodTypeStandard,
	ShippingMethodTypeExpress,
	ShippingMethodTypeFree,
}

// String implements fmt.Stringer.
func (s ShippingMethodType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ShippingMethodType.
func (s ShippingMethodType) IsValid() bool {
	for _, candidate := range validShippingMethodTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingMethodType converts raw input into a ShippingMethodType.
func ParseShippingMethodType(value string) (ShippingMethodType, error) {
	for _, candidate := range validShippingMethodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping method type %q", value)
}
