package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	if scrapesTotal == nil || httpRequestsTotal == nil {
		t.Fatalf("collectors not initialized")
	}
}

func TestObserveScrapeAndSkip(t *testing.T) {
	Init()
	before := testutil.ToFloat64(scrapesTotal.WithLabelValues(OutcomeSuccess))
	ObserveScrape(OutcomeSuccess)
	if got := testutil.ToFloat64(scrapesTotal.WithLabelValues(OutcomeSuccess)); got != before+1 {
		t.Fatalf("scrapes_total = %v want %v", got, before+1)
	}

	ObserveSkip("missing_media")
	if got := testutil.ToFloat64(candidatesSkippedTotal.WithLabelValues("missing_media")); got < 1 {
		t.Fatalf("skip counter = %v", got)
	}

	ObserveProviderStatus(http.StatusOK)
	ObserveRecords(3)
	ObserveHTTPRequest(http.MethodPost, "/images", http.StatusOK, 10*time.Millisecond)
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	Init()
	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things/42", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "418")); got != before+1 {
		t.Fatalf("http_requests_total = %v want %v", got, before+1)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveScrape(OutcomeTransportError)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "imagescraper_scrapes_total") {
		t.Fatalf("metrics output missing scrape counter")
	}
}
