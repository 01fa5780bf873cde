package config

const (
	defaultServerPort = 8080

	defaultLoginRequests  = 10
	defaultInviteRequests = 30
)

// defaults are loaded before the YAML file and environment.
func defaults() map[string]any {
	return map[string]any{
		"server.host":             "",
		"server.port":             defaultServerPort,
		"server.read_timeout":     "5s",
		"server.write_timeout":    "10s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "5s",
		"server.allowed_origins":  "",

		"database.path": "homestead.db",

		"log.level":  "info",
		"log.format": "text",

		"session.ttl":              "720h",
		"session.secure_cookie":    false,
		"session.cleanup_interval": "15m",

		"email.server_token": "",
		"email.from":         "",
		"email.base_url":     "http://localhost:8080",

		"ratelimit.login.requests":  defaultLoginRequests,
		"ratelimit.login.window":    "15m",
		"ratelimit.invite.requests": defaultInviteRequests,
		"ratelimit.invite.window":   "1h",
	}
}
