package config

import (
	"net"
	"time"

	"imgguard/pkg/remotepattern"
)

type Config struct {
	// Images: Remote image sources the pipeline is allowed to fetch
	Images ImagesConfig `mapstructure:"images"`

	// Server: Decision API listener and execution environment
	Server ServerConfig `mapstructure:"server"`

	// Security: CORS whitelist and per-client rate limiting for the decision API
	Security SecurityConfig `mapstructure:"security"`

	// Fetch: Behaviour of the guarded HTTP client handed to image fetchers
	Fetch FetchConfig `mapstructure:"fetch"`

	// Logging: Console log verbosity
	Logging LoggingConfig `mapstructure:"logging"`

	// Output: Terminal rendering for CLI commands
	Output OutputConfig `mapstructure:"output"`

	// File: Config file that was read, empty when running on defaults and env
	File string `mapstructure:"-" json:"-"`

	allowlist      *remotepattern.Allowlist
	trustedProxies []*net.IPNet
}

type ImagesConfig struct {
	// RemotePatterns: Ordered allowlist; a URL is fetched only if one entry matches
	RemotePatterns []remotepattern.RemotePattern `mapstructure:"remotePatterns" json:"remotePatterns" validate:"dive"`
}

type ServerConfig struct {
	// Port: The TCP port the decision API binds to (default: 9980)
	Port int `mapstructure:"port" validate:"min=1,max=65535"`

	// Env: Execution context (development, staging, production)
	Env string `mapstructure:"env" validate:"oneof=development staging production"`

	// BaseURL: Public root URL printed on startup
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	// MaxBodySize: Largest accepted batch request body (e.g., "64KB")
	MaxBodySize string `mapstructure:"max_body_size" validate:"required"`

	// ReadTimeout / WriteTimeout: http.Server timeouts
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gt=0"`

	// ShutdownTimeout: Grace period for in-flight requests on SIGINT/SIGTERM
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type SecurityConfig struct {
	// CorsOrigins: Browser origins allowed to call the decision API
	CorsOrigins []string `mapstructure:"cors_origins"`

	// TrustedProxies: Peers (CIDR or IP) whose X-Forwarded-For / X-Real-IP headers are believed
	TrustedProxies []string `mapstructure:"trusted_proxies" validate:"dive,cidr|ip"`

	// RateLimit: Token-bucket limit per client IP
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	// Enabled: Global toggle for the rate limiting middleware
	Enabled bool `mapstructure:"enabled"`

	// Requests: Number of allowed requests per window
	Requests int `mapstructure:"requests" validate:"gte=0"`

	// Window: The timeframe for the request limit (e.g., "1s", "1m")
	Window time.Duration `mapstructure:"window" validate:"gte=0"`

	// Burst: Temporary spike capacity above the steady rate
	Burst int `mapstructure:"burst" validate:"gte=0"`
}

type FetchConfig struct {
	// Timeout: Whole-request timeout of the guarded client
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`

	// MaxRedirects: Redirect hops followed (each hop is checked against the allowlist)
	MaxRedirects int `mapstructure:"max_redirects" validate:"gte=0,lte=20"`

	// HostRateLimit: Outbound requests per second per remote host, 0 disables
	HostRateLimit float64 `mapstructure:"host_rate_limit" validate:"gte=0"`

	// HostBurst: Burst size of the per-host limiter
	HostBurst int `mapstructure:"host_burst" validate:"gte=0"`

	// UserAgent: Sent on outbound image requests
	UserAgent string `mapstructure:"user_agent"`
}

type LoggingConfig struct {
	// Level: debug, info, warn or error
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
}

type OutputConfig struct {
	// Colors: ANSI colors in logs and CLI tables
	Colors bool `mapstructure:"colors"`

	// Banner: Startup banner printed by serve
	Banner bool `mapstructure:"banner"`
}
