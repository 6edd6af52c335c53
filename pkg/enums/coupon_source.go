package enums

import "fmt"

// CouponSource identifies where a coupon code was submitted.
type CouponSource string

const (
	CouponSourceCart     CouponSource = "cart"
	CouponSourceCheckout CouponSource = "checkout"
)

var validCouponSources = []CouponSource{
	CouponSourceCart,
	CouponSourceCheckout,
}

// String implements fmt.Stringer.
func (c CouponSource) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponSource.
func (c CouponSource) IsValid() bool {
	for _, candidate := range validCouponSources {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponSource converts raw input into a CouponSource.
func ParseCouponSource(value string) (CouponSource, error) {
	for _, candidate := range validCouponSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon source %q", value)
}
