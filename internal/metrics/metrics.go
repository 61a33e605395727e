package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Collector holds the service metrics behind its own registry.
type Collector struct {
	reg *prometheus.Registry

	PositionsIngested *prometheus.CounterVec // source label: http|mqtt
	TripsStarted      prometheus.Counter
	TripsEnded        prometheus.Counter

	IngestErrs  prometheus.Counter
	PublishErrs prometheus.Counter

	RequestDuration *prometheus.HistogramVec // method, path labels
}

// NewCollector registers and returns the service metrics.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		PositionsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleettrack_positions_ingested_total",
			Help: "Total position samples stored.",
		}, []string{"source"}),
		TripsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleettrack_trips_started_total",
			Help: "Total trips started.",
		}),
		TripsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleettrack_trips_ended_total",
			Help: "Total trips ended with a computed distance.",
		}),
		IngestErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleettrack_ingest_errors_total",
			Help: "Total MQTT messages that failed to decode or store.",
		}),
		PublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleettrack_event_publish_errors_total",
			Help: "Total event publish errors.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fleettrack_http_request_duration_seconds",
			Help:    "Duration of HTTP request handling.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.PositionsIngested, c.TripsStarted, c.TripsEnded,
		c.IngestErrs, c.PublishErrs, c.RequestDuration,
	)
	return c
}

// PositionIngested counts a stored position sample by source ("http" or "mqtt").
func (c *Collector) PositionIngested(source string) {
	c.PositionsIngested.WithLabelValues(source).Inc()
}

// IngestError counts a dropped or failed ingest message.
func (c *Collector) IngestError() {
	c.IngestErrs.Inc()
}

// TripStartedInc counts a started trip.
func (c *Collector) TripStartedInc() {
	c.TripsStarted.Inc()
}

// TripEndedInc counts an ended trip.
func (c *Collector) TripEndedInc() {
	c.TripsEnded.Inc()
}

// ObserveRequest records one handled request's duration by route.
func (c *Collector) ObserveRequest(method, path string, seconds float64) {
	c.RequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// Handler returns the scrape handler for the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server error")
		}
	}()
	log.WithField("addr", addr).Info("metrics listening")
	return srv
}
