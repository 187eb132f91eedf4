// Package metrics exposes Prometheus collectors for the image scraper.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Scrape outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
)

var (
	scrapesTotal               *prometheus.CounterVec
	candidatesSkippedTotal     *prometheus.CounterVec
	recordsExtracted           prometheus.Histogram
	providerStatusTotal        *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagescraper_scrapes_total",
				Help: "Total number of scrape operations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		candidatesSkippedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagescraper_candidates_skipped_total",
				Help: "Image candidates dropped during extraction, labeled by reason.",
			},
			[]string{"reason"},
		)

		recordsExtracted = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "imagescraper_records_extracted",
				Help:    "Number of image records extracted per scrape.",
				Buckets: []float64{0, 1, 5, 10, 20, 30, 35},
			},
		)

		providerStatusTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "imagescraper_provider_status_total",
				Help: "Provider responses, labeled by HTTP status code.",
			},
			[]string{"code"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveScrape increments the scrape counter for outcome.
func ObserveScrape(outcome string) {
	Init()
	scrapesTotal.WithLabelValues(outcome).Inc()
}

// ObserveSkip counts one dropped candidate.
func ObserveSkip(reason string) {
	Init()
	candidatesSkippedTotal.WithLabelValues(reason).Inc()
}

// ObserveRecords records how many records one scrape produced.
func ObserveRecords(n int) {
	Init()
	recordsExtracted.Observe(float64(n))
}

// ObserveProviderStatus counts a provider response status.
func ObserveProviderStatus(code int) {
	Init()
	providerStatusTotal.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
