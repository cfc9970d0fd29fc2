package store

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// opDuration tracks the latency of every gateway round trip by operation and
// outcome.
var opDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "users_store_op_duration_seconds",
		Help: "Duration of record store operations.",
	},
	[]string{"op", "outcome"},
)

// observe is deferred by every gateway operation; err must point at the named
// return so the outcome label reflects the final result.
func observe(op string, start time.Time, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = "error"
	}
	opDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}
