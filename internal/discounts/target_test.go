package discounts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestNewTargetRejectsEmptyTargetSet(t *testing.T) {
	for _, scope := range []enums.DiscountScope{
		enums.DiscountScopeProduct,
		enums.DiscountScopeVariant,
		enums.DiscountScopeCategory,
		enums.DiscountScopeCollection,
	} {
		_, err := NewTarget(scope, nil)
		assert.Error(t, err, "scope %s", scope)

		_, err = NewTarget(scope, []uuid.UUID{uuid.Nil})
		assert.Error(t, err, "scope %s with nil id", scope)
	}

	_, err := NewTarget(enums.DiscountScope("BRAND"), []uuid.UUID{uuid.New()})
	assert.Error(t, err)
}

func TestTargetsMatchLines(t *testing.T) {
	productID, variantID, categoryID, collectionID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	line := LineContext{
		ProductID:     productID,
		VariantID:     variantID,
		CategoryID:    &categoryID,
		CollectionIDs: []uuid.UUID{uuid.New(), collectionID},
	}
	other := []uuid.UUID{uuid.New()}

	tests := []struct {
		scope enums.DiscountScope
		hit   []uuid.UUID
	}{
		{enums.DiscountScopeProduct, []uuid.UUID{productID}},
		{enums.DiscountScopeVariant, []uuid.UUID{variantID}},
		{enums.DiscountScopeCategory, []uuid.UUID{categoryID}},
		{enums.DiscountScopeCollection, []uuid.UUID{collectionID}},
	}
	for _, tt := range tests {
		t.Run(tt.scope.String(), func(t *testing.T) {
			hit, err := NewTarget(tt.scope, tt.hit)
			require.NoError(t, err)
			assert.True(t, hit.Matches(line))
			assert.Equal(t, tt.scope, hit.Scope())

			miss, err := NewTarget(tt.scope, other)
			require.NoError(t, err)
			assert.False(t, miss.Matches(line))
		})
	}

	site, err := NewTarget(enums.DiscountScopeSiteWide, nil)
	require.NoError(t, err)
	assert.True(t, site.Matches(LineContext{}))
	assert.Empty(t, site.IDs())
}

func TestCategoryTargetIgnoresUncategorisedLine(t *testing.T) {
	target, err := NewTarget(enums.DiscountScopeCategory, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	assert.False(t, target.Matches(LineContext{ProductID: uuid.New()}))
}
