package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // prometheus collectors are process-wide
var (
	hubListeners = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "boardlive_hub_listeners",
		Help: "Number of listeners currently registered on the local event hub",
	})

	hubBroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardlive_hub_broadcasts_total",
		Help: "Total number of events broadcast by the local event hub",
	})

	// HubDroppedTotal counts events evicted from a full listener queue.
	HubDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardlive_hub_dropped_events_total",
		Help: "Total number of events dropped from full listener queues (drop-oldest backpressure)",
	})

	// BridgeMalformedTotal counts broker messages that failed to decode.
	BridgeMalformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardlive_bridge_malformed_messages_total",
		Help: "Total number of broker messages discarded because they were not valid kanban events",
	})

	bridgeSubscribeFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardlive_bridge_subscribe_failures_total",
		Help: "Total number of failed attempts to subscribe to the events topic",
	})

	bridgeHealthFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardlive_bridge_health_check_failures_total",
		Help: "Total number of broker pings that failed while the events subscription was held",
	})

	// PublishFailuresTotal counts events that never reached the broker.
	PublishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardlive_publisher_failures_total",
		Help: "Total number of kanban events that could not be published, by reason",
	}, []string{"reason"})

	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boardlive_publisher_events_total",
		Help: "Total number of kanban events published, by kind",
	}, []string{"kind"})
)
