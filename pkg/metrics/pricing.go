package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics tracks cart pricing resolutions and coupon validation outcomes.
type PricingMetrics struct {
	resolutions *prometheus.CounterVec
	latency     prometheus.Histogram
	coupons     *prometheus.CounterVec
}

func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	resolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_pricing_resolutions_total",
		Help:      "Cart pricing resolutions by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cart_pricing_duration_seconds",
		Help:      "Time spent resolving cart pricing.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	})
	coupons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "coupon_validations_total",
		Help:      "Coupon validations by result code.",
	}, []string{"result"})
	reg.MustRegister(resolutions, latency, coupons)
	return &PricingMetrics{resolutions: resolutions, latency: latency, coupons: coupons}
}

// ObserveResolution records one pricing run. outcome is "ok" or "error".
func (p *PricingMetrics) ObserveResolution(outcome string, duration time.Duration) {
	if p == nil || p.resolutions == nil {
		return
	}
	p.resolutions.WithLabelValues(normalizeLabel(outcome)).Inc()
	p.latency.Observe(duration.Seconds())
}

// IncCouponResult counts a coupon validation; result is "valid" or an error code.
func (p *PricingMetrics) IncCouponResult(result string) {
	if p == nil || p.coupons == nil {
		return
	}
	p.coupons.WithLabelValues(normalizeLabel(result)).Inc()
}
