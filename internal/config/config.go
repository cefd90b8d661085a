package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

const (
	defaultListenAddr      = ":8080"
	defaultWorkerBin       = "squircle-worker"
	defaultDispatchTimeout = 10 * time.Second

	envListenAddr      = "SQUIRCLE_LISTEN_ADDR"
	envWorkerBin       = "SQUIRCLE_WORKER_BIN"
	envDispatchTimeout = "SQUIRCLE_DISPATCH_TIMEOUT"
	envDisableWorker   = "SQUIRCLE_DISABLE_WORKER"
	envLogLevel        = "SQUIRCLE_LOG_LEVEL"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr      string
	WorkerBin       string
	DispatchTimeout time.Duration
	DisableWorker   bool
	LogLevel        slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:      defaultListenAddr,
		WorkerBin:       defaultWorkerBin,
		DispatchTimeout: defaultDispatchTimeout,
		LogLevel:        slog.LevelInfo,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envWorkerBin); v != "" {
		cfg.WorkerBin = v
	}
	if v := os.Getenv(envDispatchTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.DispatchTimeout = d
		}
	}
	if v := os.Getenv(envDisableWorker); v != "" {
		cfg.DisableWorker = parseBool(v)
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}

	return cfg
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
