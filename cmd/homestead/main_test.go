package main

import (
	"path/filepath"
	"testing"
)

func TestRunMissingConfig(t *testing.T) {
	err := run(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("HOMESTEAD_SERVER_PORT", "0")
	if err := run(""); err == nil {
		t.Fatal("expected error for invalid port")
	}
}
