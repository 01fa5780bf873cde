package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"chatty", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewRedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	logger.Info("login",
		slog.String("email", "bob@x.com"),
		slog.String("password", "hunter22"),
		slog.Int64("person_id", 7),
	)

	out := buf.String()
	if strings.Contains(out, "bob@x.com") {
		t.Errorf("email leaked: %s", out)
	}
	if strings.Contains(out, "hunter22") {
		t.Errorf("password leaked: %s", out)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["person_id"] != float64(7) {
		t.Errorf("person_id = %v, want 7", entry["person_id"])
	}
}

func TestNewRedactsNestedStructs(t *testing.T) {
	type credentials struct {
		Email string
		Token string `masq:"secret"`
		Name  string
	}

	var buf bytes.Buffer
	logger := New(&buf, "info", "text")
	logger.Info("session", slog.Any("creds", credentials{Email: "bob@x.com", Token: "abc123def", Name: "Bob"}))

	out := buf.String()
	if strings.Contains(out, "abc123def") {
		t.Errorf("token leaked: %s", out)
	}
	if !strings.Contains(out, "Bob") {
		t.Errorf("expected name in output: %s", out)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn missing: %s", out)
	}
}
