package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	coreconfig "github.com/m3rciful/satbot/core/config"
	"github.com/m3rciful/satbot/core/logger"
)

// Server serves /metrics and /health.
type Server struct {
	cfg     coreconfig.MetricsConfig
	server  *http.Server
	done    chan struct{}
	started bool
}

// NewServer returns a server for cfg. It does not listen until Start.
func NewServer(cfg coreconfig.MetricsConfig) *Server {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return &Server{
		cfg: cfg,
		server: &http.Server{
			Addr:              cfg.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		done: make(chan struct{}),
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.server.Handler }

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	MustRegister()
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	s.started = true
	logger.Info(context.Background(), logger.CompMetrics, "metrics.listen",
		slog.String("listen", ln.Addr().String()),
		slog.String("path", s.cfg.Path),
	)
	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), logger.CompMetrics, "metrics.serve", logger.Err(err))
		}
	}()
	return nil
}

// Shutdown stops the server and waits for the serve loop to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.started {
		return nil
	}
	err := s.server.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
	}
	return err
}
