package enums

import "fmt"

// ZoneScope is the geographic granularity of a shipping zone.
type ZoneScope string

const (
	ZoneScopeCity    ZoneScope = "CITY"
	ZoneScopeState   ZoneScope = "STATE"
	ZoneScopeCountry ZoneScope = "COUNTRY"
)

var validZoneScopes = []ZoneScope{
	ZoneScopeCity,
	ZoneScopeState,
	ZoneScopeCountry,
}

// String implements fmt.Stringer.
func (z ZoneScope) String() string {
	return string(z)
}

// IsValid reports whether the value is a known ZoneScope.
func (z ZoneScope) IsValid() bool {
	for _, candidate := range validZoneScopes {
		if candidate == z {
			return true
		}
	}
	return false
}

// ParseZoneScope converts raw input into a ZoneScope.
func ParseZoneScope(value string) (ZoneScope, error) {
	for _, candidate := range validZoneScopes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid zone scope %q", value)
}
