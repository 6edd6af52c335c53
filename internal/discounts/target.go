package discounts

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// LineContext is what a discount target is evaluated against.
type LineContext struct {
	ProductID     uuid.UUID
	VariantID     uuid.UUID
	CategoryID    *uuid.UUID
	CollectionIDs []uuid.UUID
}

// Target decides which lines a discount applies to. The set of
// implementations is closed: SiteWide, ByProduct, ByVariant, ByCategory and
// ByCollection.
type Target interface {
	Scope() enums.DiscountScope
	Matches(line LineContext) bool
	IDs() []uuid.UUID
	target()
}

type idSet map[uuid.UUID]struct{}

func newIDSet(ids []uuid.UUID) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) list() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// SiteWide matches every line.
type SiteWide struct{}

func (SiteWide) Scope() enums.DiscountScope { return enums.DiscountScopeSiteWide }

func (SiteWide) Matches(LineContext) bool { return true }

func (SiteWide) IDs() []uuid.UUID { return nil }

func (SiteWide) target() {}

// ByProduct matches lines whose product is in the set.
type ByProduct struct{ ids idSet }

func (t ByProduct) Scope() enums.DiscountScope { return enums.DiscountScopeProduct }

func (t ByProduct) Matches(line LineContext) bool {
	return t.ids.has(line.ProductID)
}

func (t ByProduct) IDs() []uuid.UUID { return t.ids.list() }

func (ByProduct) target() {}

// ByVariant matches lines whose variant is in the set.
type ByVariant struct{ ids idSet }

func (t ByVariant) Scope() enums.DiscountScope { return enums.DiscountScopeVariant }

func (t ByVariant) Matches(line LineContext) bool {
	return t.ids.has(line.VariantID)
}

func (t ByVariant) IDs() []uuid.UUID { return t.ids.list() }

func (ByVariant) target() {}

// ByCategory matches lines whose product category is in the set.
type ByCategory struct{ ids idSet }

func (t ByCategory) Scope() enums.DiscountScope { return enums.DiscountScopeCategory }

func (t ByCategory) Matches(line LineContext) bool {
	return line.CategoryID != nil && t.ids.has(*line.CategoryID)
}

func (t ByCategory) IDs() []uuid.UUID { return t.ids.list() }

func (ByCategory) target() {}

// ByCollection matches lines whose product belongs to any collection in the set.
type ByCollection struct{ ids idSet }

func (t ByCollection) Scope() enums.DiscountScope { return enums.DiscountScopeCollection }

func (t ByCollection) Matches(line LineContext) bool {
	for _, id := range line.CollectionIDs {
		if t.ids.has(id) {
			return true
		}
	}
	return false
}

func (t ByCollection) IDs() []uuid.UUID { return t.ids.list() }

func (ByCollection) target() {}

// NewTarget builds the target for scope. Every scope other than SITE_WIDE
// needs at least one id.
func NewTarget(scope enums.DiscountScope, ids []uuid.UUID) (Target, error) {
	if scope == enums.DiscountScopeSiteWide {
		return SiteWide{}, nil
	}

	set := newIDSet(ids)
	if len(set) == 0 {
		return nil, fmt.Errorf("scope %s requires at least one target id", scope)
	}

	switch scope {
	case enums.DiscountScopeProduct:
		return ByProduct{ids: set}, nil
	case enums.DiscountScopeVariant:
		return ByVariant{ids: set}, nil
	case enums.DiscountScopeCategory:
		return ByCategory{ids: set}, nil
	case enums.DiscountScopeCollection:
		return ByCollection{ids: set}, nil
	default:
		return nil, fmt.Errorf("unknown discount scope %q", scope)
	}
}
