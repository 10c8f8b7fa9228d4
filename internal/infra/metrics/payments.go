package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		gatewayCallLatency,
		gatewayCancelFailures,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payments_total",
			Help: "Charge attempts by provider and outcome (completed/pending/failed).",
		},
		[]string{"provider", "outcome"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payments_revenue_cents_total",
			Help: "Total monetary value of completed payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	gatewayCallLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_gateway_call_latency_ms",
			Help:    "Gateway call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "op", "success"},
	)

	gatewayCancelFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_gateway_cancel_failures_total",
			Help: "Mandate cancellations that failed gateway-side and were swallowed.",
		},
		[]string{"provider"},
	)
)

func IncPayment(provider, outcome string) {
	paymentsTotal.WithLabelValues(norm(provider), norm(outcome)).Inc()
}

func AddPaymentRevenue(currency string, amountCents int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amountCents))
}

func ObserveGatewayCall(provider, op string, elapsed time.Duration, success bool) {
	gatewayCallLatency.WithLabelValues(norm(provider), norm(op), strconv.FormatBool(success)).
		Observe(float64(elapsed.Milliseconds()))
}

func IncGatewayCancelFailure(provider string) {
	gatewayCancelFailures.WithLabelValues(norm(provider)).Inc()
}
