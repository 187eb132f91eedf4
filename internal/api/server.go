// Package api exposes the HTTP interface for the image scraper.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-image-scraper/internal/domain"
	"github.com/samvad-hq/samvad-image-scraper/internal/logger"
	"github.com/samvad-hq/samvad-image-scraper/internal/metrics"
)

const maxBodyBytes = 1 << 20

// ImageScraper runs a single search against the provider.
type ImageScraper interface {
	ScrapeImages(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
}

// Server wires HTTP handlers to the scraper.
type Server struct {
	router  chi.Router
	scraper ImageScraper
	log     logger.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(scraper ImageScraper, log logger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	s := &Server{scraper: scraper, log: log}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(metrics.Middleware)
	r.Use(s.recoverMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed)
	})

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/images", s.searchImages)

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) searchImages(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSearchRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.log.DebugObj("search request rejected", "validation_error", map[string]any{
			"request_id": requestID(r.Context()),
			"error":      err.Error(),
		})
		writeError(w, http.StatusBadRequest)
		return
	}

	result, err := s.scraper.ScrapeImages(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		s.log.ErrorObj("search failed", "search_error", map[string]any{
			"request_id": requestID(r.Context()),
			"query":      req.Query(),
			"error":      err.Error(),
		})
		writeError(w, status)
		return
	}
	if result.Records == nil {
		result.Records = []domain.ImageRecord{}
	}
	writeJSON(w, http.StatusOK, result)
}

// decodeSearchRequest checks the body against the request shape
// {query: non-empty string, format?: square|tall|wide, page?: integer >= 1}.
func decodeSearchRequest(body io.Reader) (domain.SearchRequest, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return domain.SearchRequest{}, fmt.Errorf("%w: invalid JSON: %v", domain.ErrInvalidRequest, err)
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return domain.SearchRequest{}, fmt.Errorf("%w: body must be an object", domain.ErrInvalidRequest)
	}

	query, ok := fields["query"].(string)
	if !ok {
		return domain.SearchRequest{}, fmt.Errorf("%w: query must be a string", domain.ErrInvalidRequest)
	}

	aspect := domain.AspectNone
	if v, present := fields["format"]; present {
		str, ok := v.(string)
		if !ok {
			return domain.SearchRequest{}, fmt.Errorf("%w: format must be a string", domain.ErrInvalidRequest)
		}
		parsed, err := domain.ParseAspectFilter(str)
		if err != nil {
			return domain.SearchRequest{}, err
		}
		aspect = parsed
	}

	page := 1
	if v, present := fields["page"]; present {
		n, err := integer(v)
		if err != nil {
			return domain.SearchRequest{}, fmt.Errorf("%w: page %v", domain.ErrInvalidRequest, err)
		}
		page = n
	}

	return domain.NewSearchRequest(query, aspect, page)
}

func integer(v any) (int, error) {
	num, ok := v.(json.Number)
	if !ok {
		return 0, errors.New("must be an integer")
	}
	if i, err := num.Int64(); err == nil {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return 0, errors.New("out of range")
		}
		return int(i), nil
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("must be an integer")
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errors.New("out of range")
	}
	return int(f), nil
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.log.InfoObj("request completed", "http_request", map[string]any{
			"request_id":  requestID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.log.ErrorObj("panic recovered", "panic", map[string]any{
					"request_id": requestID(r.Context()),
					"error":      fmt.Sprint(rec),
				})
				writeError(w, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ErrorObj("write JSON failed", "error", err)
	}
}

// writeError responds with the standard text for status.
func writeError(w http.ResponseWriter, status int) {
	msg := http.StatusText(status)
	if strings.TrimSpace(msg) == "" {
		msg = "Unknown Error"
	}
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}
