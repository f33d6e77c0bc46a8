package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds fluidboard's settings.
type Config struct {
	Kubeconfig  string // empty uses client-go loading rules
	Context     string // empty uses the kubeconfig current-context
	Namespace   string // empty watches all namespaces
	LogFile     string
	LogLevel    string
	MetricsAddr string // empty disables the metrics listener
	Sync        Sync
}

// Sync carries the synchronizer timing parameters.
type Sync struct {
	BackoffBase         time.Duration
	BackoffMax          time.Duration
	MaxAttempts         int
	PollInterval        time.Duration
	Debounce            time.Duration
	InitialEventsWindow time.Duration
}

const (
	defaultConfigPath = "~/.config/fluidboard/config.toml"
	defaultLogFile    = "~/.local/state/fluidboard/fluidboard.log"
	defaultLogLevel   = "info"
)

// DefaultSync returns the built-in synchronizer timings.
func DefaultSync() Sync {
	return Sync{
		BackoffBase:         1000 * time.Millisecond,
		BackoffMax:          10000 * time.Millisecond,
		MaxAttempts:         5,
		PollInterval:        15000 * time.Millisecond,
		Debounce:            1000 * time.Millisecond,
		InitialEventsWindow: 2000 * time.Millisecond,
	}
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogFile:  mustExpand(defaultLogFile),
		LogLevel: defaultLogLevel,
		Sync:     DefaultSync(),
	}
}

type rawConfig struct {
	Kubeconfig  string  `toml:"kubeconfig"`
	Context     string  `toml:"context"`
	Namespace   string  `toml:"namespace"`
	LogFile     string  `toml:"log_file"`
	LogLevel    string  `toml:"log_level"`
	MetricsAddr string  `toml:"metrics_addr"`
	Sync        rawSync `toml:"sync"`
}

type rawSync struct {
	BackoffBaseMS         int64 `toml:"backoff_base_ms"`
	BackoffMaxMS          int64 `toml:"backoff_max_ms"`
	MaxAttempts           int   `toml:"max_attempts"`
	PollIntervalMS        int64 `toml:"poll_interval_ms"`
	DebounceMS            int64 `toml:"debounce_ms"`
	InitialEventsWindowMS int64 `toml:"initial_events_window_ms"`
}

// Load locates and parses the config file, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if kc := strings.TrimSpace(raw.Kubeconfig); kc != "" {
		cfg.Kubeconfig = mustExpand(kc)
	}
	cfg.Context = strings.TrimSpace(raw.Context)
	cfg.Namespace = strings.TrimSpace(raw.Namespace)
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	if lf := strings.TrimSpace(raw.LogFile); lf != "" {
		cfg.LogFile = mustExpand(lf)
	}
	switch level := strings.ToLower(strings.TrimSpace(raw.LogLevel)); level {
	case "debug", "info", "error":
		cfg.LogLevel = level
	case "":
	default:
		return Config{}, fmt.Errorf("parse config: unknown log_level %q", raw.LogLevel)
	}

	cfg.Sync = raw.Sync.resolve()
	return cfg, nil
}

func (r rawSync) resolve() Sync {
	s := DefaultSync()
	if r.BackoffBaseMS > 0 {
		s.BackoffBase = millis(r.BackoffBaseMS)
	}
	if r.BackoffMaxMS > 0 {
		s.BackoffMax = millis(r.BackoffMaxMS)
	}
	if r.MaxAttempts > 0 {
		s.MaxAttempts = r.MaxAttempts
	}
	if r.PollIntervalMS > 0 {
		s.PollInterval = millis(r.PollIntervalMS)
	}
	if r.DebounceMS > 0 {
		s.Debounce = millis(r.DebounceMS)
	}
	if r.InitialEventsWindowMS > 0 {
		s.InitialEventsWindow = millis(r.InitialEventsWindowMS)
	}
	return s
}

func millis(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
