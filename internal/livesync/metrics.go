package livesync

import "github.com/prometheus/client_golang/prometheus"

func init() {
	prometheus.MustRegister(
		reconnectsTotal,
		suppressedEventsTotal,
		acceptedEventsTotal,
		refreshesTotal,
		pollingActive,
		connectedStreams,
	)
}

var (
	reconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fluidboard_livesync_reconnects_scheduled_total",
			Help: "Total number of reconnect attempts scheduled after a watch failure",
		},
	)
	suppressedEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fluidboard_livesync_events_suppressed_total",
			Help: "Total number of watch events classified as initial replay",
		},
	)
	acceptedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluidboard_livesync_events_accepted_total",
			Help: "Total number of watch events that triggered a refresh, by type",
		},
		[]string{"type"},
	)
	refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluidboard_livesync_refreshes_total",
			Help: "Total number of list refreshes, by trigger and outcome",
		},
		[]string{"trigger", "outcome"},
	)
	pollingActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fluidboard_livesync_polling_active",
			Help: "Number of synchronizers currently in fallback polling",
		},
	)
	connectedStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fluidboard_livesync_streams_connected",
			Help: "Number of watch streams currently connected",
		},
	)
)
