// Package metrics exposes Prometheus counters and histograms for the
// three mutating lottery flows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchaseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_ticket_purchases_total",
			Help: "Total ticket purchase requests by result",
		},
		[]string{"result"},
	)

	purchaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lottery_ticket_purchase_duration_ms",
			Help:    "Ticket purchase duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"result"},
	)

	drawTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_draws_total",
			Help: "Total draw executions by result",
		},
		[]string{"result"},
	)

	drawDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lottery_draw_duration_ms",
			Help:    "Draw execution duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"result"},
	)

	refundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lottery_refunds_total",
			Help: "Total refund claims by result",
		},
		[]string{"result"},
	)

	refundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lottery_refund_duration_ms",
			Help:    "Refund claim duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"result"},
	)
)

func normalize(result string) string {
	if result != "success" {
		return "fail"
	}
	return result
}

// RecordPurchase records metrics for one ticket purchase call.
// result should be "success" or "fail".
func RecordPurchase(result string, started time.Time) {
	res := normalize(result)
	purchaseTotal.WithLabelValues(res).Inc()
	purchaseDuration.WithLabelValues(res).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordDraw records metrics for one draw execution
func RecordDraw(result string, started time.Time) {
	res := normalize(result)
	drawTotal.WithLabelValues(res).Inc()
	drawDuration.WithLabelValues(res).Observe(float64(time.Since(started).Milliseconds()))
}

// RecordRefund records metrics for one refund claim
func RecordRefund(result string, started time.Time) {
	res := normalize(result)
	refundTotal.WithLabelValues(res).Inc()
	refundDuration.WithLabelValues(res).Observe(float64(time.Since(started).Milliseconds()))
}
