package invoke

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surrogated",
			Subsystem: "invoke",
			Name:      "invocations_total",
			Help:      "Total model invocations by protocol and result",
		},
		[]string{"protocol", "result"},
	)

	invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "surrogated",
			Subsystem: "invoke",
			Name:      "duration_seconds",
			Help:      "Duration of one model invocation, retries included",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"protocol"},
	)

	layoutRepairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "surrogated",
			Subsystem: "invoke",
			Name:      "layout_repairs_total",
			Help:      "Total repair passes triggered by a layout failure",
		},
	)

	flattenedRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "surrogated",
			Subsystem: "invoke",
			Name:      "flattened_retries_total",
			Help:      "Total retries with 1-D input after a dimensionality failure",
		},
	)
)

func init() {
	prometheus.MustRegister(invocationsTotal, invocationDuration, layoutRepairs, flattenedRetries)
}

func observe(tr *Trace, err error, d time.Duration) {
	result := "success"
	if err != nil {
		result = string(KindOf(err))
	}
	invocationsTotal.WithLabelValues(string(tr.Protocol), result).Inc()
	invocationDuration.WithLabelValues(string(tr.Protocol)).Observe(d.Seconds())
	if tr.Flattened {
		flattenedRetries.Inc()
	}
}
