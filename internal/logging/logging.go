package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/masq"
)

// redactedFields never reach the log in clear text, however deeply they are
// nested in a logged value.
var redactedFields = []string{
	"password",
	"current_password",
	"new_password",
	"token",
	"session",
	"cookie",
	"email",
	"invitee_email",
}

func redactAttr() func([]string, slog.Attr) slog.Attr {
	opts := make([]masq.Option, 0, len(redactedFields)+1)
	for _, name := range redactedFields {
		opts = append(opts, masq.WithFieldName(name))
	}
	opts = append(opts, masq.WithTag("secret"))
	return masq.New(opts...)
}

// ParseLevel maps "debug", "info", "warn" and "error" (case-insensitive) to a
// slog level. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. format is "json" or "text".
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redactAttr(),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Setup creates a logger on stderr, sets it as the default, and returns it.
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}
