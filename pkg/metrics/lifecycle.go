package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrderTransitions counts accepted order status transitions by target status.
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lenscraft",
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Accepted order status transitions by target status.",
	}, []string{"to"})

	// PreorderConversions counts successful preorder-to-order conversions.
	PreorderConversions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lenscraft",
		Subsystem: "preorders",
		Name:      "conversions_total",
		Help:      "Preorders converted into orders.",
	})

	// PaymentOutcomes counts terminal gateway notification outcomes.
	PaymentOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lenscraft",
		Subsystem: "payments",
		Name:      "outcomes_total",
		Help:      "Payment completion outcomes reported by the gateway.",
	}, []string{"outcome"})
)

// Payment outcome label values.
const (
	PaymentOutcomeCompleted = "completed"
	PaymentOutcomeFailed    = "failed"
	PaymentOutcomeDuplicate = "duplicate"
	PaymentOutcomeInvalid   = "invalid_signature"
)
