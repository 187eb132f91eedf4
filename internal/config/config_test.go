package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BingBaseURL != "https://www.bing.com/images/async" {
		t.Fatalf("BingBaseURL = %s", cfg.BingBaseURL)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
	if cfg.CacheTTL != time.Hour || cfg.CacheCleanupInterval != 10*time.Minute {
		t.Fatalf("cache durations = %v / %v", cfg.CacheTTL, cfg.CacheCleanupInterval)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %s", cfg.HTTPAddr)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("CACHE_TYPE", "none")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" || cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.CacheType != "none" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	for _, key := range []string{
		"HTTP_TIMEOUT_SECONDS",
		"SHUTDOWN_TIMEOUT_SECONDS",
		"CACHE_TTL_SECONDS",
		"CACHE_CLEANUP_INTERVAL_SECONDS",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=0", key)
			}
		})
	}
}

func TestOutboundHeadersSkipsEmpty(t *testing.T) {
	cfg := &Config{UserAgent: "UA"}
	headers := cfg.OutboundHeaders()
	if len(headers) != 1 || headers["User-Agent"] != "UA" {
		t.Fatalf("unexpected headers %v", headers)
	}
}
