package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks every section and returns all problems at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.Server.validate(),
		c.Database.validate(),
		c.Log.validate(),
		c.Session.validate(),
		c.Email.validate(),
		c.RateLimit.Login.validate("ratelimit.login"),
		c.RateLimit.Invite.validate("ratelimit.invite"),
	)
}

func (s *ServerConfig) validate() error {
	var errs []error
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", s.Port))
	}
	if s.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if s.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	if s.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() error {
	if strings.TrimSpace(d.Path) == "" {
		return errors.New("database.path is required")
	}
	return nil
}

func (l *LogConfig) validate() error {
	var errs []error
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", l.Level))
	}
	switch l.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", l.Format))
	}
	return errors.Join(errs...)
}

func (s *SessionConfig) validate() error {
	var errs []error
	if s.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if s.CleanupInterval <= 0 {
		errs = append(errs, errors.New("session.cleanup_interval must be positive"))
	}
	return errors.Join(errs...)
}

func (e *EmailConfig) validate() error {
	if e.ServerToken != "" && e.From == "" {
		return errors.New("email.from is required when email.server_token is set")
	}
	return nil
}

func (l *LimitConfig) validate(name string) error {
	var errs []error
	if l.Requests < 1 {
		errs = append(errs, fmt.Errorf("%s.requests must be at least 1, got %d", name, l.Requests))
	}
	if l.Window <= 0 {
		errs = append(errs, fmt.Errorf("%s.window must be positive", name))
	}
	return errors.Join(errs...)
}
