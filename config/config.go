// Package config loads service configuration from environment variables,
// with struct-tag defaults for local development.
package config

import (
	"fmt"
	"time"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Logging   LoggingConfig   `json:"logging"`
	HTTP      HTTPConfig      `json:"http"`
	Probe     ProbeConfig     `json:"probe"`
	Network   NetworkConfig   `json:"network"`
	Cache     CacheConfig     `json:"cache"`
	Preload   PreloadConfig   `json:"preload"`
	Proxy     ProxyConfig     `json:"proxy"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

type ServerConfig struct {
	Port         int           `json:"port" env:"SERVER_PORT" default:"9300"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"SERVER_READ_TIMEOUT" default:"60s"`
	WriteTimeout time.Duration `json:"write_timeout" env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `json:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" default:"120s"`
}

type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"json"`
}

type HTTPConfig struct {
	ClientTimeout time.Duration `json:"client_timeout" env:"HTTP_CLIENT_TIMEOUT" default:"30s"`
}

// ProbeConfig points the active measurement at endpoints that serve
// synthetic payloads. The bandwidth endpoint must honor a "bytes" query
// parameter; the latency endpoint should serve a minimal response.
type ProbeConfig struct {
	BandwidthURL string        `json:"bandwidth_url" env:"PROBE_BANDWIDTH_URL" default:"https://storage.neopins.app/speedtest/payload"`
	LatencyURL   string        `json:"latency_url" env:"PROBE_LATENCY_URL" default:"https://storage.neopins.app/speedtest/ping"`
	Timeout      time.Duration `json:"timeout" env:"PROBE_TIMEOUT" default:"30s"`
}

type NetworkConfig struct {
	// ReassessInterval is the minimum age of an assessment before an
	// opportunistic refresh fires. ReassessTick is how often the cadence
	// is checked.
	ReassessInterval time.Duration `json:"reassess_interval" env:"NETWORK_REASSESS_INTERVAL" default:"120s"`
	ReassessTick     time.Duration `json:"reassess_tick" env:"NETWORK_REASSESS_TICK" default:"15s"`
}

type CacheConfig struct {
	Capacity int `json:"capacity" env:"CACHE_CAPACITY" default:"50"`
}

type PreloadConfig struct {
	MaxConcurrent int           `json:"max_concurrent" env:"PRELOAD_MAX_CONCURRENT" default:"3"`
	Timeout       time.Duration `json:"timeout" env:"PRELOAD_TIMEOUT" default:"30s"`
	BaseWidth     int           `json:"base_width" env:"PRELOAD_BASE_WIDTH" default:"400"`
}

type ProxyConfig struct {
	SigningSecret string `json:"-" env:"PROXY_SIGNING_SECRET" default:"neopins-dev-secret"`
	MaxWidth      int    `json:"max_width" env:"PROXY_MAX_WIDTH" default:"2400"`
	MaxQuality    int    `json:"max_quality" env:"PROXY_MAX_QUALITY" default:"95"`
}

type RateLimitConfig struct {
	HostInterval time.Duration `json:"host_interval" env:"RATE_LIMIT_HOST_INTERVAL" default:"100ms"`
	HostBurst    int           `json:"host_burst" env:"RATE_LIMIT_HOST_BURST" default:"4"`
}

// NewConfig loads configuration from environment variables with fallback to
// tag defaults, then validates it.
func NewConfig() (*Config, error) {
	config := &Config{}

	if err := loadFromEnvironment(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.Cache.Capacity)
	}
	if c.Preload.MaxConcurrent < 1 {
		return fmt.Errorf("preload max concurrent must be positive, got %d", c.Preload.MaxConcurrent)
	}
	if c.Network.ReassessInterval <= 0 {
		return fmt.Errorf("reassess interval must be positive, got %s", c.Network.ReassessInterval)
	}
	if c.Proxy.SigningSecret == "" {
		return fmt.Errorf("proxy signing secret must not be empty")
	}
	return nil
}
