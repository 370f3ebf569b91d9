package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	roomTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontdesk_room_transitions_total",
		Help: "Committed room status transitions.",
	}, []string{"from", "to"})

	lifecycleOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontdesk_lifecycle_operations_total",
		Help: "Front-desk lifecycle operations by outcome.",
	}, []string{"operation", "outcome"})
)

func observe(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case isKind(err, ErrValidation):
		outcome = "invalid"
	case isKind(err, ErrNotFound):
		outcome = "not_found"
	case isKind(err, ErrConflict):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	lifecycleOps.WithLabelValues(op, outcome).Inc()
}
