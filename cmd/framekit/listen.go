package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/framekit/pkg/framekit"
)

func newListenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Accept framed connections and print every frame received",
		Args:  cobra.NoArgs,
		RunE:  runListen,
	}
	cmd.Flags().String("network", "", "Listen network, tcp or unix (overrides the config)")
	cmd.Flags().String("address", "", "Listen address (overrides the config)")
	cmd.Flags().Bool("echo", false, "Send every frame back to its sender")
	return cmd
}

func runListen(cmd *cobra.Command, args []string) error {
	s, err := loadSession(cmd)
	if err != nil {
		return err
	}
	if network, _ := cmd.Flags().GetString("network"); network != "" {
		s.cfg.Transport.Network = network
	}
	if address, _ := cmd.Flags().GetString("address"); address != "" {
		s.cfg.Transport.Address = address
	}
	echo, _ := cmd.Flags().GetBool("echo")

	logger := framekit.NewLoggerTo(cmd.ErrOrStderr(), s.cfg.Logging)
	metrics := framekit.NewStreamMetrics()
	opts, err := s.cfg.ConnOptions(logger, metrics)
	if err != nil {
		return err
	}
	opts.Profile = s.profile
	opts.Registry = s.registry

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.cfg.Metrics.Enabled {
		srv := startMetricsServer(ctx, s.cfg.Metrics, metrics, logger)
		defer func() { _ = srv.Close() }()
	}

	var mu sync.Mutex
	enc := json.NewEncoder(cmd.OutOrStdout())
	mux := framekit.NewMux(logger)
	mux.HandleDefault(framekit.HandlerFunc(func(ctx context.Context, c *framekit.Conn, res framekit.Result) {
		mu.Lock()
		_ = enc.Encode(newFrameRecord(res))
		mu.Unlock()
		if echo {
			if err := c.Send(ctx, res.Header, res.Payload); err != nil {
				c.Logger().WarnContext(ctx, "echo failed", "error", err)
			}
		}
	}))

	ln, err := framekit.Listen(s.cfg.Transport)
	if err != nil {
		return err
	}
	server := framekit.NewServer(opts, mux)
	defer func() { _ = server.Close() }()

	logger.InfoContext(ctx, "framekit listening",
		"profile", s.profile.Name(), "network", s.cfg.Transport.Network, "addr", ln.Addr().String())
	if err := server.Serve(ctx, ln); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func startMetricsServer(ctx context.Context, cfg framekit.MetricsConfig, m *framekit.StreamMetrics, logger *framekit.Logger) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.Collector(cfg.Namespace))

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "metrics server failed", "error", err)
		}
	}()
	return srv
}
