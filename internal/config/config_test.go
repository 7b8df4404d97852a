package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leonardcser/kvcache/internal/storage"
)

func TestLoad_Defaults(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "kv.sock")
	t.Setenv("KVCACHE_SOCK", sock)

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "unix", cfg.Network)
	require.Equal(t, sock, cfg.Address)
	require.Equal(t, storage.DefaultMaxSize, cfg.MaxSize)
	require.Equal(t, DefaultMaxWorkers, cfg.MaxWorkers)
	require.Equal(t, DefaultMinWorkers, cfg.MinWorkers)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("KVCACHE_NETWORK", "tcp")
	t.Setenv("KVCACHE_ADDR", "127.0.0.1:9000")
	t.Setenv("KVCACHE_MAX_SIZE", "4096")
	t.Setenv("KVCACHE_MAX_WORKERS", "not-a-number")

	cfg, err := Load([]string{"-addr", "127.0.0.1:9100", "-max-workers", "4", "-min-workers", "2"})
	require.NoError(t, err)
	require.Equal(t, "tcp", cfg.Network)
	require.Equal(t, "127.0.0.1:9100", cfg.Address)
	require.Equal(t, 4096, cfg.MaxSize)
	require.Equal(t, 4, cfg.MaxWorkers)
	require.Equal(t, 2, cfg.MinWorkers)
}

func TestValidate(t *testing.T) {
	good := Config{Network: "tcp", Address: ":0", MaxSize: 10, MinWorkers: 1, MaxWorkers: 2}
	require.NoError(t, good.Validate())

	bad := []func(c *Config){
		func(c *Config) { c.Network = "udp" },
		func(c *Config) { c.Address = "" },
		func(c *Config) { c.MaxSize = 0 },
		func(c *Config) { c.MaxWorkers = 0 },
		func(c *Config) { c.MinWorkers = 3 },
		func(c *Config) { c.MinWorkers = -1 },
	}
	for i, mutate := range bad {
		c := good
		mutate(&c)
		require.Error(t, c.Validate(), "case %d", i)
	}
}

func TestLoad_RejectsBadFlags(t *testing.T) {
	_, err := Load([]string{"-network", "tcp", "-addr", ":0", "-max-size", "0"})
	require.Error(t, err)
}
