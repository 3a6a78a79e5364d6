package ratelimit

import (
	"net/http"
	"time"

	"github.com/jonathan/cover-letter-agent/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (a trailing "/" matches by prefix)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // Buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig loads rate limiting configuration from RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !config.EnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	cfg := DefaultConfig()
	cfg.DefaultLimit = config.EnvInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = config.EnvDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = config.EnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.IdleTTL = config.EnvDuration("RATE_LIMIT_IDLE_TTL", cfg.IdleTTL)
	cfg.Whitelist = toSet(config.EnvList("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = toSet(config.EnvList("RATE_LIMIT_BLACKLIST"))

	generation := config.EnvInt("RATE_LIMIT_GENERATION_LIMIT", 0)
	if generation > 0 {
		for i := range cfg.EndpointConfigs {
			if cfg.EndpointConfigs[i].Method == http.MethodPost {
				cfg.EndpointConfigs[i].Limit = generation
			}
		}
	}
	return cfg
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Model-backed operations (strictest limits)
		{Path: "/package", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/package/stream", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/cover-letter", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/match", Method: http.MethodPost, Limit: 120, Window: time.Hour, Burst: 10},
		{Path: "/extract", Method: http.MethodPost, Limit: 120, Window: time.Hour, Burst: 10},

		// Cache writes
		{Path: "/cache", Method: http.MethodDelete, Limit: 10, Window: time.Minute, Burst: 2},
		{Path: "/cache/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},

		// Reads fall back to the default limit; /health is unlimited (see MatchEndpoint)
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
