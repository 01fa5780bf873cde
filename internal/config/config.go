// Package config loads homestead's settings from built-in defaults, an
// optional YAML file and HOMESTEAD_ environment variables, in that order of
// precedence.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Session   SessionConfig   `koanf:"session"`
	Email     EmailConfig     `koanf:"email"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// AllowedOrigins is a comma-separated list of extra origin patterns
	// accepted on websocket upgrades.
	AllowedOrigins  string        `koanf:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type SessionConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	SecureCookie    bool          `koanf:"secure_cookie"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// EmailConfig configures invitation mail. An empty ServerToken disables it.
type EmailConfig struct {
	ServerToken string `koanf:"server_token"`
	From        string `koanf:"from"`
	BaseURL     string `koanf:"base_url"`
}

type RateLimitConfig struct {
	Login  LimitConfig `koanf:"login"`
	Invite LimitConfig `koanf:"invite"`
}

// LimitConfig allows Requests per Window for one key.
type LimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Origins splits AllowedOrigins into patterns.
func (s ServerConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// EmailEnabled reports whether invitation mail should be sent.
func (c *Config) EmailEnabled() bool {
	return c.Email.ServerToken != ""
}
