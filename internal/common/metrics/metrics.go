// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_processed_total",
			Help: "Total number of bot commands processed",
		},
		[]string{"command", "status"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "bot_command_duration_seconds",
			Help: "Duration of command pipeline runs in seconds",
		},
		[]string{"command"},
	)

	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datasource_fetch_requests_total",
			Help: "Total number of data source fetch attempts",
		},
		[]string{"endpoint", "outcome"},
	)

	ChartsRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "charts_rendered_total",
			Help: "Total number of rating charts rendered",
		},
	)

	ChunksDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_chunks_sent_total",
			Help: "Total number of message chunks sent to the channel",
		},
		[]string{"status"},
	)
)
