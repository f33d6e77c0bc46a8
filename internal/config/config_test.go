package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Kubeconfig != "" || cfg.Context != "" || cfg.Namespace != "" || cfg.MetricsAddr != "" {
		t.Fatalf("unexpected non-empty defaults: %+v", cfg)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Sync != DefaultSync() {
		t.Fatalf("Sync = %+v, want defaults", cfg.Sync)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
kubeconfig = "  ~/.kube/lab  "
context = " lab-admin "
namespace = " fluid-system "
log_file = "~/logs/fb.log"
log_level = "DEBUG"
metrics_addr = "127.0.0.1:9090"

[sync]
backoff_base_ms = 250
backoff_max_ms = 4000
max_attempts = 3
poll_interval_ms = 5000
debounce_ms = 300
initial_events_window_ms = 1500
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Kubeconfig != filepath.Join(home, ".kube/lab") {
		t.Fatalf("Kubeconfig = %q", cfg.Kubeconfig)
	}
	if cfg.Context != "lab-admin" || cfg.Namespace != "fluid-system" {
		t.Fatalf("Context = %q, Namespace = %q", cfg.Context, cfg.Namespace)
	}
	if !strings.HasPrefix(cfg.LogFile, home) {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LogLevel != "debug" || cfg.MetricsAddr != "127.0.0.1:9090" {
		t.Fatalf("LogLevel = %q, MetricsAddr = %q", cfg.LogLevel, cfg.MetricsAddr)
	}
	want := Sync{
		BackoffBase:         250 * time.Millisecond,
		BackoffMax:          4 * time.Second,
		MaxAttempts:         3,
		PollInterval:        5 * time.Second,
		Debounce:            300 * time.Millisecond,
		InitialEventsWindow: 1500 * time.Millisecond,
	}
	if cfg.Sync != want {
		t.Fatalf("Sync = %+v, want %+v", cfg.Sync, want)
	}
}

func TestLoad_EmptyAndNonPositiveValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := writeConfig(t, `
log_file = "   "
log_level = ""

[sync]
backoff_base_ms = 0
max_attempts = -2
poll_interval_ms = -1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LogFile != Default().LogFile || cfg.LogLevel != "info" {
		t.Fatalf("LogFile = %q, LogLevel = %q", cfg.LogFile, cfg.LogLevel)
	}
	if cfg.Sync != DefaultSync() {
		t.Fatalf("Sync = %+v, want defaults", cfg.Sync)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `context = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_UnknownLogLevelFails(t *testing.T) {
	path := writeConfig(t, `log_level = "verbose"`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("Load error = %v, want log_level error", err)
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
