package config

import "time"

// ServerConfig holds the WebSocket gateway configuration
type ServerConfig struct {
	// Listen address for the gateway, e.g. ":8080"
	ListenAddr string `mapstructure:"listen_addr"`

	// Per-connection command rate limit (commands per second + burst)
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// WebSocket read limit in bytes
	MaxMessageBytes int64 `mapstructure:"max_message_bytes"`

	// Outbound write deadline per frame
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Read deadline between client pongs; pings go out at 90% of this
	PongTimeout time.Duration `mapstructure:"pong_timeout"`

	// Grace period for draining connections on shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RateLimitConfig holds token-bucket rate limiting configuration
type RateLimitConfig struct {
	Requests float64 `mapstructure:"requests"` // commands per second
	Burst    int     `mapstructure:"burst"`
}
