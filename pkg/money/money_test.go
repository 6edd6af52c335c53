package money

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

func TestReduction(t *testing.T) {
	tests := []struct {
		name    string
		kind    enums.DiscountType
		value   int64
		current int64
		want    int64
	}{
		{name: "percentage", kind: enums.DiscountTypePercentage, value: 10, current: 2000, want: 200},
		{name: "percentage floors", kind: enums.DiscountTypePercentage, value: 15, current: 999, want: 149},
		{name: "full percentage", kind: enums.DiscountTypePercentage, value: 100, current: 1234, want: 1234},
		{name: "fixed", kind: enums.DiscountTypeFixed, value: 150, current: 1800, want: 150},
		{name: "fixed capped at price", kind: enums.DiscountTypeFixed, value: 5000, current: 1200, want: 1200},
		{name: "zero price", kind: enums.DiscountTypeFixed, value: 100, current: 0, want: 0},
		{name: "unknown type", kind: enums.DiscountType("BOGO"), value: 10, current: 100, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduction(tt.kind, tt.value, tt.current))
		})
	}
}

func TestPercentOf(t *testing.T) {
	assert.Equal(t, int64(18), PercentOf(350, 2000)) // 17.5 rounds away from zero
	assert.Equal(t, int64(33), PercentOf(1, 3))
	assert.Equal(t, int64(0), PercentOf(10, 0))
	assert.Equal(t, int64(100), PercentOf(500, 500))
}

func TestFloor(t *testing.T) {
	assert.Equal(t, int64(0), Floor(-5))
	assert.Equal(t, int64(7), Floor(7))
}
