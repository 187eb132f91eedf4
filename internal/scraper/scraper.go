package scraper

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-image-scraper/internal/domain"
	"github.com/samvad-hq/samvad-image-scraper/internal/logger"
	"github.com/samvad-hq/samvad-image-scraper/internal/metrics"
	"github.com/samvad-hq/samvad-image-scraper/pkg/bing"
	"github.com/samvad-hq/samvad-image-scraper/pkg/httpclient"
	"github.com/samvad-hq/samvad-image-scraper/pkg/publishers"
)

const defaultTimeout = 15 * time.Second

// Scraper turns a SearchRequest into image records: build URL, fetch, extract.
// It holds no per-call state and is safe for concurrent use.
type Scraper struct {
	client  httpclient.Client
	baseURL string
	headers map[string]string
	events  EventPublisher
	log     logger.Logger
}

// Option customizes a Scraper.
type Option func(*Scraper)

// WithBaseURL overrides the provider endpoint.
func WithBaseURL(u string) Option {
	return func(s *Scraper) { s.baseURL = u }
}

// WithHeaders sets headers sent with every provider request.
func WithHeaders(h map[string]string) Option {
	return func(s *Scraper) {
		s.headers = make(map[string]string, len(h))
		for k, v := range h {
			s.headers[k] = v
		}
	}
}

// WithEvents publishes an event after every successful scrape.
func WithEvents(p EventPublisher) Option {
	return func(s *Scraper) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs a scraper over client (or a default resty client).
func New(client httpclient.Client, opts ...Option) *Scraper {
	if client == nil {
		client = httpclient.NewRestyClient(defaultTimeout, nil)
	}
	s := &Scraper{
		client:  client,
		baseURL: bing.DefaultBaseURL,
		log:     logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeImages runs one provider round trip. Only transport failures are
// returned as errors; a non-2xx page is still handed to the extractor.
func (s *Scraper) ScrapeImages(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	target := bing.BuildURL(s.baseURL, req)

	resp, err := s.client.Get(ctx, target, s.headers)
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		metrics.ObserveScrape(metrics.OutcomeTransportError)
		s.log.ErrorObj("provider fetch failed", "scrape_error", map[string]any{
			"url":   target,
			"error": err.Error(),
		})
		return domain.SearchResult{}, &TransportError{URL: target, Err: err}
	}

	status := resp.StatusCode()
	metrics.ObserveProviderStatus(status)
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		s.log.WarnObj("provider returned non-2xx status", "provider_response", map[string]any{
			"url":    target,
			"status": status,
			"body":   snippet(resp.Body()),
		})
	}

	ex := bing.ExtractDetailed(resp.Body())
	for _, skip := range ex.Skips {
		metrics.ObserveSkip(string(skip.Reason))
		s.log.DebugObj("image candidate skipped", "candidate_skip", skip)
	}
	metrics.ObserveRecords(ex.Result.Len())
	metrics.ObserveScrape(metrics.OutcomeSuccess)

	s.log.InfoObj("scrape completed", "scrape_result", map[string]any{
		"query":      req.Query(),
		"page":       req.Page(),
		"format":     string(req.Aspect()),
		"candidates": ex.Candidates,
		"skipped":    len(ex.Skips),
		"records":    ex.Result.Len(),
	})

	s.publish(ctx, req, target, ex.Result)
	return ex.Result, nil
}

func (s *Scraper) publish(ctx context.Context, req domain.SearchRequest, target string, result domain.SearchResult) {
	if s.events == nil {
		return
	}
	evt := publishers.NewEvent(req, target, result)
	delivered, err := s.events.Publish(ctx, evt)
	if err != nil {
		s.log.WarnObj("scrape event publish failed", "publish_error", map[string]any{
			"event_id":  evt.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

func snippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
