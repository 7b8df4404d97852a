package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leonardcser/kvcache/internal/config"
	"github.com/leonardcser/kvcache/internal/logger"
	"github.com/leonardcser/kvcache/internal/metrics"
	"github.com/leonardcser/kvcache/internal/server"
	"github.com/leonardcser/kvcache/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "kvcache-server:", err)
		}
		os.Exit(2)
	}

	if err := logger.Init(cfg.LogPath, cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Close()
	log := logger.Logger()

	if cfg.Network == "unix" {
		// Ensure socket dir exists
		_ = os.MkdirAll(filepath.Dir(cfg.Address), 0o755)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	store := storage.NewSimpleLRU(cfg.MaxSize)
	srv := server.New(store, log, m)
	if err := srv.Start(server.Config{
		Network:    cfg.Network,
		Address:    cfg.Address,
		MinWorkers: cfg.MinWorkers,
		MaxWorkers: cfg.MaxWorkers,
	}); err != nil {
		level.Error(log).Log("msg", "failed to start server", "err", err)
		_ = logger.Close()
		os.Exit(1)
	}
	level.Info(log).Log("msg", "cache ready", "max_size", store.Capacity())

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
		go func() {
			level.Info(log).Log("msg", "serving metrics", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				level.Error(log).Log("msg", "metrics server error", "err", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	level.Info(log).Log("msg", "received shutdown signal")
	srv.Stop()
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}
	srv.Join()
	level.Info(log).Log("msg", "shutdown complete")
}
