package shipping

import (
	"context"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/types"
)

// Address is the geographic part of a delivery address.
type Address struct {
	Country string
	State   string
	City    string
}

// AddressFrom extracts the fields used for zone matching.
func AddressFrom(snapshot types.AddressSnapshot) Address {
	return Address{Country: snapshot.Country, State: snapshot.State, City: snapshot.City}
}

func (a Address) normalized() Address {
	return Address{Country: normalize(a.Country), State: normalize(a.State), City: normalize(a.City)}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func field(v *string) string {
	if v == nil {
		return ""
	}
	return normalize(*v)
}

// ZoneMatches reports whether zone covers addr at the given scope. A zone
// lacking a field its own scope requires never matches.
func ZoneMatches(zone models.ShippingZone, addr Address, scope enums.ZoneScope) bool {
	if zone.Scope != scope {
		return false
	}
	addr = addr.normalized()
	country, state, city := field(zone.Country), field(zone.State), field(zone.City)

	switch scope {
	case enums.ZoneScopeCity:
		if city == "" || city != addr.City {
			return false
		}
		fallthrough
	case enums.ZoneScopeState:
		if state == "" || state != addr.State {
			return false
		}
		fallthrough
	case enums.ZoneScopeCountry:
		return country != "" && country == addr.Country
	default:
		return false
	}
}

type zoneLoader interface {
	ActiveZones(ctx context.Context) ([]models.ShippingZone, error)
}

// ZoneMatcher selects the active zones covering an address.
type ZoneMatcher struct {
	zones zoneLoader
}

func NewZoneMatcher(zones zoneLoader) *ZoneMatcher {
	return &ZoneMatcher{zones: zones}
}

func (m *ZoneMatcher) MatchZones(ctx context.Context, addr Address, scope enums.ZoneScope) ([]models.ShippingZone, error) {
	all, err := m.zones.ActiveZones(ctx)
	if err != nil {
		return nil, err
	}
	return m.matchIn(all, addr, scope), nil
}

// matchIn filters preloaded zones so callers walking several scopes load the
// zone table once.
func (m *ZoneMatcher) matchIn(zones []models.ShippingZone, addr Address, scope enums.ZoneScope) []models.ShippingZone {
	var out []models.ShippingZone
	for _, z := range zones {
		if z.IsActive && ZoneMatches(z, addr, scope) {
			out = append(out, z)
		}
	}
	return out
}
