package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who produced the event.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// DecodeEnvelope parses a stored payload.
func DecodeEnvelope(raw []byte) (PayloadEnvelope, error) {
	var env PayloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return PayloadEnvelope{}, err
	}
	return env, nil
}

// OrderPlaced is the data of an order_placed event.
type OrderPlaced struct {
	OrderID       uuid.UUID  `json:"orderId"`
	UserID        uuid.UUID  `json:"userId"`
	CartID        uuid.UUID  `json:"cartId"`
	PaymentMethod string     `json:"paymentMethod"`
	SubtotalCents int64      `json:"subtotalCents"`
	DiscountCents int64      `json:"discountCents"`
	ShippingCents int64      `json:"shippingCents"`
	TotalCents    int64      `json:"totalCents"`
	CouponID      *uuid.UUID `json:"couponId,omitempty"`
	LineCount     int        `json:"lineCount"`
}

// CouponRedeemed is the data of a coupon_redeemed event.
type CouponRedeemed struct {
	CouponID            uuid.UUID `json:"couponId"`
	OrderID             uuid.UUID `json:"orderId"`
	UserID              uuid.UUID `json:"userId"`
	CouponDiscountCents int64     `json:"couponDiscountCents"`
}
