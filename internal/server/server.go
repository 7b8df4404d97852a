// Package server exposes a storage.Storage over a socket, one goroutine per
// connection with a fixed upper bound on concurrent connections.
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/semaphore"

	"github.com/leonardcser/kvcache/internal/cache"
	"github.com/leonardcser/kvcache/internal/metrics"
	"github.com/leonardcser/kvcache/internal/storage"
)

// DefaultMaxWorkers bounds concurrent connections when Config.MaxWorkers is unset.
const DefaultMaxWorkers = 10

const rejectLinger = 200 * time.Millisecond

var (
	ErrRunning   = errors.New("server: already running")
	ErrNotJoined = errors.New("server: stopped but not joined")
)

type Config struct {
	Network string
	Address string
	// MinWorkers is advisory; it sizes internal bookkeeping only.
	MinWorkers int
	MaxWorkers int
}

// Server owns a single store and the lock that serializes access to it.
type Server struct {
	logger  log.Logger
	metrics *metrics.Metrics

	storeMu sync.Mutex
	store   storage.Storage

	running atomic.Bool
	// active is set by Start and cleared by Join, so a stopped server cannot
	// be restarted while its goroutines are still draining.
	active   atomic.Bool
	listener net.Listener
	workers  *semaphore.Weighted

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	wg sync.WaitGroup
}

// New builds a server around store. m may be nil.
func New(store storage.Storage, logger log.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		logger:  log.With(logger, "component", "server"),
		metrics: m,
		store:   store,
	}
}

// Start binds the listener and spawns the acceptor. A stopped server may be
// started again only after Join has returned.
func (s *Server) Start(cfg Config) error {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.MinWorkers < 0 || cfg.MinWorkers > cfg.MaxWorkers {
		return fmt.Errorf("min workers %d outside [0, %d]", cfg.MinWorkers, cfg.MaxWorkers)
	}
	if !s.active.CompareAndSwap(false, true) {
		if s.running.Load() {
			return ErrRunning
		}
		return ErrNotJoined
	}
	if cfg.Network == "unix" {
		// Remove a stale socket left by an unclean shutdown.
		_ = os.Remove(cfg.Address)
	}

	l, err := net.Listen(cfg.Network, cfg.Address)
	if err != nil {
		s.active.Store(false)
		return fmt.Errorf("listen %s %s: %w", cfg.Network, cfg.Address, err)
	}
	if cfg.Network == "unix" {
		_ = os.Chmod(cfg.Address, 0o600)
	}

	s.listener = l
	s.workers = semaphore.NewWeighted(int64(cfg.MaxWorkers))
	s.conns = make(map[net.Conn]struct{}, cfg.MinWorkers)
	s.running.Store(true)

	level.Info(s.logger).Log("msg", "listening", "network", cfg.Network, "addr", l.Addr().String(),
		"min_workers", cfg.MinWorkers, "max_workers", cfg.MaxWorkers)

	s.wg.Add(1)
	go s.acceptLoop(l)
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop signals the acceptor and every worker to finish. It does not wait;
// use Join for that. Stop is safe to call more than once.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	level.Info(s.logger).Log("msg", "stopping")
	_ = s.listener.Close()

	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connsMu.Unlock()
}

// Join blocks until the acceptor and all workers have exited.
func (s *Server) Join() {
	s.wg.Wait()
	if !s.running.Load() {
		s.active.Store(false)
	}
}

func (s *Server) acceptLoop(l net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			level.Warn(s.logger).Log("msg", "accept failed", "err", err)
			continue
		}

		if !s.workers.TryAcquire(1) {
			s.wg.Add(1)
			go s.reject(conn)
			continue
		}
		if !s.track(conn) {
			s.workers.Release(1)
			_ = conn.Close()
			continue
		}

		s.wg.Add(1)
		go s.worker(conn)
	}
}

// track registers conn so Stop can close it. It refuses once Stop has run.
func (s *Server) track(conn net.Conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.connsMu.Lock()
	delete(s.conns, conn)
	s.connsMu.Unlock()
}

// reject answers a connection that found no free worker slot and closes it.
func (s *Server) reject(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	level.Warn(s.logger).Log("msg", "rejecting connection, all workers busy", "remote", conn.RemoteAddr())
	if s.metrics != nil {
		s.metrics.RejectedConnections.Inc()
	}
	_ = json.NewEncoder(conn).Encode(cache.Fail(cache.ErrBusy))

	// Drain whatever the peer already sent so closing does not reset the
	// connection before the reply is read.
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		_ = cw.CloseWrite()
	}
	_ = conn.SetReadDeadline(time.Now().Add(rejectLinger))
	_, _ = io.Copy(io.Discard, conn)
}

func (s *Server) worker(conn net.Conn) {
	defer s.wg.Done()
	defer s.workers.Release(1)
	defer s.untrack(conn)
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.ActiveWorkers.Inc()
		defer s.metrics.ActiveWorkers.Dec()
	}
	level.Debug(s.logger).Log("msg", "connection opened", "remote", conn.RemoteAddr())

	dec := json.NewDecoder(bufio.NewReader(conn))
	enc := json.NewEncoder(conn)
	for {
		var req cache.Request
		if err := dec.Decode(&req); err != nil {
			if s.running.Load() && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				level.Debug(s.logger).Log("msg", "connection closed", "remote", conn.RemoteAddr(), "err", err)
			}
			return
		}
		if err := enc.Encode(s.execute(req)); err != nil {
			level.Debug(s.logger).Log("msg", "write failed", "remote", conn.RemoteAddr(), "err", err)
			return
		}
	}
}

// execute runs one request while holding the store lock.
func (s *Server) execute(req cache.Request) cache.Response {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	resp := cache.Execute(s.store, req)
	if s.metrics != nil {
		op := req.Op
		if resp.Error == cache.ErrUnknownOp.Error() {
			op = "unknown"
		}
		s.metrics.ObserveOp(op, resp.OK)
		if r, ok := s.store.(storage.StatsReporter); ok {
			s.metrics.ObserveStats(r.Stats())
		}
	}
	return resp
}
