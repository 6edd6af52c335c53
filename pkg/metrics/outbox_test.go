package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)

	m.IncPublished("order_placed")
	m.IncPublished("order_placed")
	m.IncFailed("coupon_redeemed")
	m.IncTerminal("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "storefront_outbox_published_total", "event_type", "order_placed")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	got, err = fetchCounterValue(mfs, "storefront_outbox_publish_failures_total", "event_type", "coupon_redeemed")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "storefront_outbox_terminal_total", "event_type", "unknown")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)
}

func TestOutboxMetricsNilSafe(t *testing.T) {
	var m *OutboxMetrics
	m.IncPublished("order_placed")
	NewOutboxMetrics(nil).IncTerminal("order_placed")
}
