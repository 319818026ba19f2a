package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/scorekeeper/internal/services/games"
)

const namespace = "scorekeeper"

// Recorder exposes server metrics on its own Prometheus registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	requestSeconds *prometheus.HistogramVec
	gameEvents     *prometheus.CounterVec
	storeConnected prometheus.Gauge
	sseClients     prometheus.Gauge
	panics         prometheus.Counter
}

// Ensure Recorder can subscribe to game changes
var _ games.Listener = (*Recorder)(nil)

// NewRecorder creates a Recorder with Go runtime and process collectors registered
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gameEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_events_total",
			Help:      "Persisted game changes by kind.",
		}, []string{"kind"}),
		storeConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_connected",
			Help:      "1 when the last storage health check succeeded.",
		}),
		sseClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Open game event streams.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Handler panics recovered by the API.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.requestSeconds,
		r.gameEvents,
		r.storeConnected,
		r.sseClients,
		r.panics,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordHTTPRequest counts a finished request. route is the matched route template,
// not the raw path, to keep label cardinality bounded.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// GameChanged counts a persisted game change
func (r *Recorder) GameChanged(_ context.Context, event games.Event) {
	if r == nil {
		return
	}
	r.gameEvents.WithLabelValues(string(event.Kind)).Inc()
}

// GameEventsCounter returns the counter for one kind of game change.
// A nil Recorder returns an unregistered counter that stays at zero.
func (r *Recorder) GameEventsCounter(kind string) prometheus.Counter {
	if r == nil {
		return unregisteredCounter()
	}
	return r.gameEvents.WithLabelValues(kind)
}

// SetStoreConnected records the result of the latest storage health check
func (r *Recorder) SetStoreConnected(connected bool) {
	if r == nil {
		return
	}
	if connected {
		r.storeConnected.Set(1)
	} else {
		r.storeConnected.Set(0)
	}
}

// SSEClientConnected tracks a newly opened event stream
func (r *Recorder) SSEClientConnected() {
	if r == nil {
		return
	}
	r.sseClients.Inc()
}

// SSEClientDisconnected tracks a closed event stream
func (r *Recorder) SSEClientDisconnected() {
	if r == nil {
		return
	}
	r.sseClients.Dec()
}

// PanicsCounter returns the counter of recovered handler panics
func (r *Recorder) PanicsCounter() prometheus.Counter {
	if r == nil {
		return unregisteredCounter()
	}
	return r.panics
}

func unregisteredCounter() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "unrecorded_total"})
}

// RecordPanic counts a recovered handler panic
func (r *Recorder) RecordPanic() {
	if r == nil {
		return
	}
	r.panics.Inc()
}
