package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshfetch_orders_created_total",
			Help: "Orders placed, by payment method.",
		},
		[]string{"payment_method"},
	)

	orderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freshfetch_order_transitions_total",
			Help: "Order status changes, by source and target status.",
		},
		[]string{"from", "to"},
	)
)
