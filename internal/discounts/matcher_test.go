package discounts

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stubLoader struct {
	rows []models.Discount
	err  error
}

func (s stubLoader) ListActive(context.Context) ([]models.Discount, error) {
	return s.rows, s.err
}

func TestMatchFiltersByWindowAndTarget(t *testing.T) {
	productID := uuid.New()
	line := LineContext{ProductID: productID, VariantID: uuid.New()}

	byProduct, err := NewTarget(enums.DiscountScopeProduct, []uuid.UUID{productID})
	require.NoError(t, err)

	live := pct("live", 10, 1, true)
	live.Target = byProduct

	expired := pct("expired", 10, 1, true)
	expired.EndDate = baseTime.Add(-time.Second)

	future := pct("future", 10, 1, true)
	future.StartDate = baseTime.Add(time.Second)

	disabled := pct("disabled", 10, 1, true)
	disabled.Active = false

	otherProduct := pct("other", 10, 1, true)
	otherProduct.Target, _ = NewTarget(enums.DiscountScopeProduct, []uuid.UUID{uuid.New()})

	got := Match(line, []Discount{live, expired, future, disabled, otherProduct}, baseTime)
	require.Len(t, got, 1)
	assert.Equal(t, live.ID, got[0].ID)
}

func TestMatcherSkipsRowsWithInvalidTargets(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})

	valid := models.Discount{
		ID: uuid.New(), Name: "site", Scope: enums.DiscountScopeSiteWide,
		DiscountType: enums.DiscountTypePercentage, DiscountValue: 10, IsActive: true,
		StartDate: baseTime.Add(-time.Hour), EndDate: baseTime.Add(time.Hour),
	}
	broken := valid
	broken.ID = uuid.New()
	broken.Scope = enums.DiscountScopeProduct
	broken.ProductIDs = nil

	m := NewMatcher(stubLoader{rows: []models.Discount{valid, broken}}, logg, func() time.Time { return baseTime })

	got, err := m.MatchActive(context.Background(), LineContext{ProductID: uuid.New()})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, valid.ID, got[0].ID)
	assert.Contains(t, buf.String(), "skipping discount with invalid target")
	assert.Contains(t, buf.String(), broken.ID.String())
}

func TestMatcherPropagatesLoadErrors(t *testing.T) {
	m := NewMatcher(stubLoader{err: errors.New("db down")}, nil, nil)
	_, err := m.Active(context.Background())
	assert.Error(t, err)
}
