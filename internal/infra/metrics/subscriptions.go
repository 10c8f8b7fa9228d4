package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"hosting-billing-engine/internal/domain/model"
)

func init() {
	register(
		subscriptionsTotal,
		renewalsTotal,
		reconciledTotal,
	)
}

var (
	subscriptionsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "billing_subscriptions_total",
			Help: "Current number of subscriptions by status.",
		},
		[]string{"status"}, // 'trial', 'active', 'suspended', 'cancelled'
	)

	renewalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_renewals_total",
			Help: "Scheduled renewal attempts by result.",
		},
		[]string{"result"}, // 'ok', 'failed'
	)

	reconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_settlements_reconciled_total",
			Help: "Pending payments the reconciler resolved, by final state.",
		},
		[]string{"state"}, // 'paid', 'failed', 'pending'
	)
)

func SetSubscriptionsTotal(counts map[model.SubscriptionStatus]int) {
	statuses := []model.SubscriptionStatus{
		model.SubscriptionStatusTrial,
		model.SubscriptionStatusActive,
		model.SubscriptionStatusSuspended,
		model.SubscriptionStatusCancelled,
	}
	for _, status := range statuses {
		subscriptionsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

func IncRenewal(ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	renewalsTotal.WithLabelValues(result).Inc()
}

func IncReconciled(state string) {
	reconciledTotal.WithLabelValues(norm(state)).Inc()
}
