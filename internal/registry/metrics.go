package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	registryModels = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "surrogated",
			Subsystem: "registry",
			Name:      "models",
			Help:      "Configurations by load status after the last registry load",
		},
		[]string{"status"},
	)

	buffersRepaired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "surrogated",
			Subsystem: "registry",
			Name:      "buffers_repaired_total",
			Help:      "Total model buffers replaced with a canonical copy",
		},
	)
)

func init() {
	prometheus.MustRegister(registryModels, buffersRepaired)
}
