package models

// All lists every persisted model, in dependency order. Tests and the SQLite
// dev mode migrate from it.
func All() []any {
	return []any{
		&Product{},
		&ProductVariant{},
		&ProductCollection{},
		&Discount{},
		&Coupon{},
		&Cart{},
		&CartLine{},
		&ShippingZone{},
		&ShippingMethod{},
		&ShippingRule{},
		&Address{},
		&Order{},
		&OrderLine{},
		&CouponRedemption{},
		&OutboxEvent{},
	}
}
