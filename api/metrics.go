package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brokerclient",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Completed API requests by method and HTTP status code.",
	}, []string{"method", "code"})

	requestTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brokerclient",
		Subsystem: "api",
		Name:      "request_timeouts_total",
		Help:      "Requests aborted by the per-request timeout.",
	})

	networkErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brokerclient",
		Subsystem: "api",
		Name:      "network_errors_total",
		Help:      "Requests that failed at the transport level.",
	})

	unauthorizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "brokerclient",
		Subsystem: "api",
		Name:      "unauthorized_total",
		Help:      "HTTP 401 responses that triggered session teardown.",
	})
)
