package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var endpointSeverity = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "academia_monitoring_endpoint_severity_level",
		Help: "Severity level of the last check of a monitored endpoint.",
	},
	[]string{"application", "url"},
)
