package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_lfs",
		Subsystem: "http",
		Name:      "batch_total",
		Help:      "The total number of LFS batch requests",
	}, []string{"operation", "status"})

	batchObjectsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_lfs",
		Subsystem: "http",
		Name:      "batch_objects_total",
		Help:      "The total number of objects given transfer actions",
	}, []string{"operation"})

	// AuthFailuresCounter counts rejected callers by reason.
	AuthFailuresCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_lfs",
		Subsystem: "http",
		Name:      "auth_failures_total",
		Help:      "The total number of failed authentications",
	}, []string{"reason"})

	passwordUpdatesCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soft_lfs",
		Subsystem: "http",
		Name:      "password_updates_total",
		Help:      "The total number of password update requests",
	}, []string{"status"})
)

// ObserveAuthFailure records an authentication failure. It is meant to be
// passed to auth.NewAuthenticator.
func ObserveAuthFailure(reason string) {
	AuthFailuresCounter.WithLabelValues(reason).Inc()
}
