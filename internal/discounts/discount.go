package discounts

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Discount is a validated discount row with its target resolved.
type Discount struct {
	ID        uuid.UUID
	Name      string
	Target    Target
	Type      enums.DiscountType
	Value     int64
	Priority  int
	Stackable bool
	Active    bool
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

// ActiveAt reports whether the discount is switched on and inside its window.
func (d Discount) ActiveAt(now time.Time) bool {
	return d.Active && !now.Before(d.StartDate) && !now.After(d.EndDate)
}

// FromModel converts a row, rejecting rows whose target cannot be built.
func FromModel(m models.Discount) (Discount, error) {
	target, err := NewTarget(m.Scope, targetIDs(m))
	if err != nil {
		return Discount{}, err
	}
	return Discount{
		ID:        m.ID,
		Name:      m.Name,
		Target:    target,
		Type:      m.DiscountType,
		Value:     m.DiscountValue,
		Priority:  m.Priority,
		Stackable: m.IsStackable,
		Active:    m.IsActive,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		CreatedAt: m.CreatedAt,
	}, nil
}

func targetIDs(m models.Discount) []uuid.UUID {
	switch m.Scope {
	case enums.DiscountScopeProduct:
		return m.ProductIDs
	case enums.DiscountScopeVariant:
		return m.VariantIDs
	case enums.DiscountScopeCategory:
		return m.CategoryIDs
	case enums.DiscountScopeCollection:
		return m.CollectionIDs
	default:
		return nil
	}
}

// Ordered returns a copy sorted by priority (highest first), then most
// recently created, then lowest id.
func Ordered(discounts []Discount) []Discount {
	out := make([]Discount, len(discounts))
	copy(out, discounts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

// StackOrdered orders stackable discounts for application: priority (highest
// first), then percentages before fixed amounts, then oldest first, then
// lowest id. The order for equal priority does not depend on when rows were
// created, so a percentage always sees the price before flat reductions.
func StackOrdered(discounts []Discount) []Discount {
	out := make([]Discount, len(discounts))
	copy(out, discounts)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Type != b.Type {
			return a.Type == enums.DiscountTypePercentage
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}
