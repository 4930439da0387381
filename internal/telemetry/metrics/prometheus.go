package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus builds the registry served on the metrics endpoint: build
// info, Go runtime and process collectors, plus any extra collectors such as
// the pgx pool stats. Nil collectors are skipped so optional ones can be passed
// unconditionally.
func SetupPrometheus(extraCollectors ...prometheus.Collector) *prometheus.Registry {
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, c := range extraCollectors {
		if c != nil {
			promRegistry.MustRegister(c)
		}
	}

	return promRegistry
}
