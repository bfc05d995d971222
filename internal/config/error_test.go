package config

import (
	"strings"
	"testing"
)

func TestConfigError_Empty(t *testing.T) {
	e := &ConfigError{Path: "config.toml"}
	if e.HasErrors() {
		t.Error("expected no errors")
	}
	if e.Error() != "" {
		t.Errorf("expected empty message, got %q", e.Error())
	}
}

func TestConfigError_Missing(t *testing.T) {
	e := &ConfigError{Missing: []string{"API_KEY", "BASE_URL"}}
	if !e.HasErrors() {
		t.Error("expected errors")
	}
	msg := e.Error()
	if !strings.Contains(msg, "missing environment variables") {
		t.Errorf("expected missing-vars section, got %q", msg)
	}
	if !strings.Contains(msg, "API_KEY, BASE_URL") {
		t.Errorf("expected var names, got %q", msg)
	}
}

func TestConfigError_Validation(t *testing.T) {
	e := &ConfigError{Errors: []string{"server.port: out of range"}}
	msg := e.Error()
	if !strings.Contains(msg, "validation failed") {
		t.Errorf("expected validation section, got %q", msg)
	}
	if !strings.Contains(msg, "server.port") {
		t.Errorf("expected error detail, got %q", msg)
	}
}
