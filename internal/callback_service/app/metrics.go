package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callbacksReceivedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bdapps_callback",
			Name:      "received_total",
			Help:      "Total number of BDApps callbacks received.",
		},
		[]string{"kind"},
	)

	callbacksRejectedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bdapps_callback",
			Name:      "rejected_total",
			Help:      "Total number of BDApps callbacks that failed validation.",
		},
		[]string{"kind", "reason"}, // reason: malformed_payload, missing_field
	)

	callbacksPublishedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bdapps_callback",
			Name:      "published_total",
			Help:      "Total number of validated callbacks published to NATS.",
		},
		[]string{"kind", "status"}, // status: success, error
	)
)
