package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appevents "github.com/andrescamacho/tradewars-server/internal/application/events"
)

// Collector exports the server's operational counters. It implements the
// event bus Observer so emission counts need no extra plumbing.
type Collector struct {
	registry *prometheus.Registry

	eventsEmitted *prometheus.CounterVec
	commandsTotal *prometheus.CounterVec
	combatRounds  prometheus.Counter
	connections   prometheus.Gauge
	queueDepth    prometheus.GaugeFunc
}

// NewCollector builds and registers the metric set. hub may be nil in
// tests; the queue depth gauge then reports zero.
func NewCollector(hub *appevents.Hub) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		eventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewars_events_emitted_total",
			Help: "Events emitted by the bus, by event name.",
		}, []string{"event"}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tradewars_commands_total",
			Help: "Commands dispatched, by command name and outcome.",
		}, []string{"command", "outcome"}),
		combatRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tradewars_combat_rounds_resolved_total",
			Help: "Combat rounds resolved.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tradewars_connections",
			Help: "Open websocket connections.",
		}),
	}
	c.queueDepth = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "tradewars_subscription_queue_depth",
		Help: "Total undelivered events across all subscriptions.",
	}, func() float64 {
		if hub == nil {
			return 0
		}
		total := 0
		for _, depth := range hub.Depths() {
			total += depth
		}
		return float64(total)
	})

	registry.MustRegister(
		c.eventsEmitted,
		c.commandsTotal,
		c.combatRounds,
		c.connections,
		c.queueDepth,
	)
	return c
}

// EventEmitted implements the bus Observer.
func (c *Collector) EventEmitted(name string) {
	c.eventsEmitted.WithLabelValues(name).Inc()
}

// CommandDispatched records one command outcome ("ok" or "error").
func (c *Collector) CommandDispatched(command, outcome string) {
	c.commandsTotal.WithLabelValues(command, outcome).Inc()
}

// CombatRoundResolved counts one resolved round.
func (c *Collector) CombatRoundResolved() {
	c.combatRounds.Inc()
}

// ConnectionOpened and ConnectionClosed track the connection gauge.
func (c *Collector) ConnectionOpened() { c.connections.Inc() }
func (c *Collector) ConnectionClosed() { c.connections.Dec() }

// Handler returns the scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
