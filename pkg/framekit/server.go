package framekit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Listen opens a listener for cfg. Unix sockets get their directory created,
// a stale socket file removed and their permissions applied.
func Listen(cfg TransportConfig) (net.Listener, error) {
	if cfg.Network != "unix" {
		ln, err := net.Listen(cfg.Network, cfg.Address)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
		}
		return ln, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Address), 0755); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}
	if err := cleanupSocket(cfg.Address); err != nil {
		return nil, err
	}

	ln, err := net.Listen("unix", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}
	if cfg.SocketPermissions != 0 {
		if err := os.Chmod(cfg.Address, os.FileMode(cfg.SocketPermissions)); err != nil {
			_ = ln.Close()
			return nil, fmt.Errorf("failed to set socket permissions: %w", err)
		}
	}
	return ln, nil
}

// cleanupSocket removes a socket file if it exists
func cleanupSocket(socketPath string) error {
	if _, err := os.Stat(socketPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat socket file: %w", err)
	}
	if err := os.Remove(socketPath); err != nil {
		return fmt.Errorf("failed to remove socket file: %w", err)
	}
	return nil
}

// Server accepts connections and serves each with one Handler. Every
// connection gets its own decoder.
type Server struct {
	opts    ConnOptions
	handler Handler
	logger  *Logger

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[*Conn]struct{}
	closed    bool
	wg        sync.WaitGroup
}

// NewServer creates a server. opts is applied to every accepted connection.
func NewServer(opts ConnOptions, h Handler) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = NopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewStreamMetrics()
	}
	return &Server{
		opts:      opts,
		handler:   h,
		logger:    logger,
		listeners: make(map[net.Listener]struct{}),
		conns:     make(map[*Conn]struct{}),
	}
}

// Metrics returns the metrics shared by all served connections
func (s *Server) Metrics() *StreamMetrics { return s.opts.Metrics }

// Serve accepts connections on ln until ctx is done or the server is closed
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if !s.track(ln) {
		_ = ln.Close()
		return ErrConnClosed
	}
	defer s.untrack(ln)

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.logger.InfoContext(ctx, "listening", "addr", ln.Addr().String())
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("failed to accept: %w", err)
		}

		c, err := NewConn(nc, s.opts)
		if err != nil {
			_ = nc.Close()
			return err
		}
		if !s.addConn(c) {
			_ = c.Close()
			return nil
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.removeConn(c)
			if err := c.Serve(ctx, s.handler); err != nil && ctx.Err() == nil {
				c.Logger().WarnContext(ctx, "connection ended with error", "error", err)
			}
		}()
	}
}

// Close stops all listeners and connections and waits for handlers to return
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	var result error
	for ln := range s.listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			result = multierror.Append(result, err)
		}
	}
	for c := range s.conns {
		if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			result = multierror.Append(result, err)
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	return result
}

func (s *Server) track(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.listeners[ln] = struct{}{}
	return true
}

func (s *Server) untrack(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.listeners, ln)
}

func (s *Server) addConn(c *Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) removeConn(c *Conn) {
	_ = c.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}
