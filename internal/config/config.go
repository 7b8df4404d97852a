// Package config loads the cache daemon settings from flags, falling back to
// KVCACHE_* environment variables and then to built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/leonardcser/kvcache/internal/storage"
)

const (
	DefaultMaxWorkers = 10
	DefaultMinWorkers = 1
)

type Config struct {
	Network     string
	Address     string
	MaxSize     int
	MinWorkers  int
	MaxWorkers  int
	MetricsAddr string
	LogPath     string
	LogLevel    string
}

// Load parses args (without the program name) on top of the environment.
func Load(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("kvcache-server", flag.ContinueOnError)
	fs.StringVar(&cfg.Network, "network", envString("KVCACHE_NETWORK", "unix"), "Listener network: unix or tcp")
	fs.StringVar(&cfg.Address, "addr", envString("KVCACHE_ADDR", ""), "Listen address; defaults to the user socket path for unix")
	fs.IntVar(&cfg.MaxSize, "max-size", envInt("KVCACHE_MAX_SIZE", storage.DefaultMaxSize), "Cache capacity in bytes of keys plus values")
	fs.IntVar(&cfg.MinWorkers, "min-workers", envInt("KVCACHE_MIN_WORKERS", DefaultMinWorkers), "Expected number of concurrent connections")
	fs.IntVar(&cfg.MaxWorkers, "max-workers", envInt("KVCACHE_MAX_WORKERS", DefaultMaxWorkers), "Maximum concurrent connections; extra ones are rejected")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", envString("KVCACHE_METRICS_ADDR", ""), "Address for the Prometheus /metrics endpoint (disabled if empty)")
	fs.StringVar(&cfg.LogPath, "log", envString("KVCACHE_LOG", ""), "Log file path; empty or - for stderr")
	fs.StringVar(&cfg.LogLevel, "log-level", envString("KVCACHE_LOG_LEVEL", "info"), "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if cfg.Address == "" && cfg.Network == "unix" {
		cfg.Address = DefaultSocketPath()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Network != "unix" && c.Network != "tcp" {
		return fmt.Errorf("unsupported network %q", c.Network)
	}
	if c.Address == "" {
		return errors.New("listen address is required")
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max-size must be positive, got %d", c.MaxSize)
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max-workers must be at least 1, got %d", c.MaxWorkers)
	}
	if c.MinWorkers < 0 || c.MinWorkers > c.MaxWorkers {
		return fmt.Errorf("min-workers must be between 0 and max-workers (%d), got %d", c.MaxWorkers, c.MinWorkers)
	}
	return nil
}

// DefaultSocketPath returns KVCACHE_SOCK or a socket under the user cache dir.
func DefaultSocketPath() string {
	if s := os.Getenv("KVCACHE_SOCK"); s != "" {
		return s
	}
	home, _ := os.UserHomeDir()
	if home == "" {
		home = "."
	}
	return filepath.Join(home, ".cache", "kvcache", "kvcache.sock")
}

func envString(key, d string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return d
}

func envInt(key string, d int) int {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}
