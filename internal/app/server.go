package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/samvad-hq/samvad-image-scraper/internal/api"
	"github.com/samvad-hq/samvad-image-scraper/internal/config"
	"github.com/samvad-hq/samvad-image-scraper/internal/logger"
	"github.com/samvad-hq/samvad-image-scraper/internal/metrics"
	"github.com/samvad-hq/samvad-image-scraper/internal/scraper"
	"github.com/samvad-hq/samvad-image-scraper/internal/storage"
	"github.com/samvad-hq/samvad-image-scraper/pkg/httpclient"
	"github.com/samvad-hq/samvad-image-scraper/pkg/publishers"
)

// Server represents the image scraper runtime. It owns the response cache,
// the event fanout and the inbound HTTP server.
type Server struct {
	cfg     *config.Config
	log     logger.Logger
	store   storage.Store
	fanout  *publishers.Fanout
	scraper *scraper.Scraper
	api     *api.Server
}

// NewServer builds the runtime from config.
func NewServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	metrics.Init()

	storeOpts := storage.Options{
		TTL:             cfg.CacheTTL,
		CleanupInterval: cfg.CacheCleanupInterval,
	}
	store, err := storage.NewStore(cfg.CacheType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.CacheType,
		"path":                     cfg.BBoltPath,
		"ttl_seconds":              int(cfg.CacheTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.CacheCleanupInterval.Seconds()),
	})

	fanout, err := loadFanout(ctx, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client := httpclient.NewCachingClient(
		httpclient.NewRestyClient(cfg.HTTPTimeout, nil),
		store,
		log,
	)

	opts := []scraper.Option{
		scraper.WithBaseURL(cfg.BingBaseURL),
		scraper.WithHeaders(cfg.OutboundHeaders()),
		scraper.WithLogger(log),
	}
	if fanout != nil {
		opts = append(opts, scraper.WithEvents(fanout))
	}
	sc := scraper.New(client, opts...)

	return &Server{
		cfg:     cfg,
		log:     log,
		store:   store,
		fanout:  fanout,
		scraper: sc,
		api:     api.NewServer(sc, log),
	}, nil
}

// loadFanout builds the event fanout from the publishers file. No file means no events.
func loadFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		log.InfoObj("scrape events disabled", "publishers_file", "")
		return nil, nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	if len(enabled) == 0 {
		log.WarnObj("no enabled publishers; scrape events disabled", "publishers_file", cfg.PublishersFile)
		return nil, nil
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Handler returns the inbound HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.api.Handler()
}

// Run serves HTTP on cfg.HTTPAddr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		s.close()
		return fmt.Errorf("listen %s: %w", s.cfg.HTTPAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s == nil || s.api == nil {
		return fmt.Errorf("server is not initialized")
	}
	defer s.close()

	srv := &http.Server{
		Handler:           s.api.Handler(),
		ReadHeaderTimeout: s.cfg.HTTPTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.InfoObj("http server listening", "http_server", map[string]any{
		"addr":          ln.Addr().String(),
		"bing_base_url": s.cfg.BingBaseURL,
	})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	s.log.InfoObj("http server shutting down", "reason", ctx.Err())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

// close releases the cache and publishers, logging any errors encountered.
func (s *Server) close() {
	if s.fanout != nil {
		if err := s.fanout.Close(); err != nil {
			s.log.ErrorObj("publishers close failed", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.log.ErrorObj("storage close failed", "error", err)
		}
	}
}
