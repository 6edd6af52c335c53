package types

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// AddressSnapshot is the immutable copy of a delivery address stored on an order.
type AddressSnapshot struct {
	FullName   string  `json:"full_name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// Normalized lowercases and trims the geographic fields used for zone matching.
func (a AddressSnapshot) Normalized() (country, state, city string) {
	return normalizeGeo(a.Country), normalizeGeo(a.State), normalizeGeo(a.City)
}

func normalizeGeo(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Value serializes the snapshot to JSON.
func (a AddressSnapshot) Value() (driver.Value, error) {
	return jsonValue(a)
}

// Scan decodes JSONB into the snapshot.
func (a *AddressSnapshot) Scan(value any) error {
	if value == nil {
		*a = AddressSnapshot{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, a)
}
