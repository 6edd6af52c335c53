package enums

import "fmt"

// DiscountScope selects which cart lines a discount targets.
type DiscountScope string

const (
	DiscountScopeSiteWide   DiscountScope = "SITE_WIDE"
	DiscountScopeProduct    DiscountScope = "PRODUCT"
	DiscountScopeVariant    DiscountScope = "VARIANT"
	DiscountScopeCategory   DiscountScope = "CATEGORY"
	DiscountScopeCollection DiscountScope = "COLLECTION"
)

var validDiscountScopes = []DiscountScope{
	DiscountScopeSiteWide,
	DiscountScopeProduct,
	DiscountScopeVariant,
	DiscountScopeCategory,
	DiscountScopeCollection,
}

// String implements fmt.Stringer.
func (d DiscountScope) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DiscountScope.
func (d DiscountScope) IsValid() bool {
	for _, candidate := range validDiscountScopes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDiscountScope converts raw input into a DiscountScope.
func ParseDiscountScope(value string) (DiscountScope, error) {
	for _, candidate := range validDiscountScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount scope %q", value)
}
