package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	HTTPAddr               string        `mapstructure:"http_addr"`
	ShutdownTimeoutSeconds int64         `mapstructure:"shutdown_timeout_seconds"`
	ShutdownTimeout        time.Duration `mapstructure:"-"`

	BingBaseURL        string        `mapstructure:"bing_base_url"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	UserAgent          string        `mapstructure:"user_agent"`
	AcceptLanguage     string        `mapstructure:"accept_language"`

	CacheType            string        `mapstructure:"cache_type"`
	BBoltPath            string        `mapstructure:"bbolt_path"`
	CacheTTLSeconds      int64         `mapstructure:"cache_ttl_seconds"`
	CacheCleanupSeconds  int64         `mapstructure:"cache_cleanup_interval_seconds"`
	CacheTTL             time.Duration `mapstructure:"-"`
	CacheCleanupInterval time.Duration `mapstructure:"-"`

	PublishersFile string `mapstructure:"publishers_file"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "samvad-image-scraper")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout_seconds", 10)
	v.SetDefault("bing_base_url", "https://www.bing.com/images/async")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("user_agent", defaultUserAgent)
	v.SetDefault("accept_language", "en-US,en;q=0.9")
	v.SetDefault("cache_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/cache.db")
	v.SetDefault("cache_ttl_seconds", int64(time.Hour/time.Second))
	v.SetDefault("cache_cleanup_interval_seconds", int64((10*time.Minute)/time.Second))
	v.SetDefault("publishers_file", "")
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid shutdown_timeout_seconds (must be positive seconds)")
	}
	if cfg.CacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_ttl_seconds (must be positive seconds)")
	}
	if cfg.CacheCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid cache_cleanup_interval_seconds (must be positive seconds)")
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http_addr is required")
	}

	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second
	cfg.ShutdownTimeout = time.Duration(cfg.ShutdownTimeoutSeconds) * time.Second
	cfg.CacheTTL = time.Duration(cfg.CacheTTLSeconds) * time.Second
	cfg.CacheCleanupInterval = time.Duration(cfg.CacheCleanupSeconds) * time.Second

	return &cfg, nil
}

// OutboundHeaders returns the default headers sent to the search provider.
func (c *Config) OutboundHeaders() map[string]string {
	headers := make(map[string]string, 2)
	if c.UserAgent != "" {
		headers["User-Agent"] = c.UserAgent
	}
	if c.AcceptLanguage != "" {
		headers["Accept-Language"] = c.AcceptLanguage
	}
	return headers
}
