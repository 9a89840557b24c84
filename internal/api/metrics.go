package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const outcomeOK = "ok"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "diary_client",
			Name:      "requests_total",
			Help:      "Client operations by outcome (ok or error kind).",
		},
		[]string{"op", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "diary_client",
			Name:      "request_duration_seconds",
			Help:      "Round trip time of requests that reached the network.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func observe(op string, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = KindOf(err).String()
	}
	requestsTotal.WithLabelValues(op, outcome).Inc()
}
