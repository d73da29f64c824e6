// Package metrics serves OpenTelemetry instruments in the Prometheus format.
package metrics

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	Enabled     bool          `envconfig:"METRICS_ENABLED" default:"true"`
	Host        string        `envconfig:"METRICS_HOST" default:"0.0.0.0"`
	Port        int           `envconfig:"METRICS_PORT" default:"9090"`
	ReadTimeout time.Duration `envconfig:"METRICS_READ_TIMEOUT" default:"30s"`
}

// Metrics owns the meter provider registry and the /metrics server.
type Metrics struct {
	config   Config
	registry *prometheus.Registry
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
}

// InitDefault installs the global meter provider and starts serving /metrics.
func InitDefault(config Config, logger *slog.Logger) (*Metrics, error) {
	m := New(config, logger)
	if err := m.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to start metrics server")
	}

	return m, nil
}

func New(config Config, logger *slog.Logger) *Metrics {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	return &Metrics{
		config:   config,
		registry: registry,
		server:   NewHttpServer(config, registry),
		logger:   logger.WithGroup("metrics"),
	}
}

// Start sets the global meter provider and serves in the background.
func (s *Metrics) Start() error {
	if err := InitPrometheus(s.registry); err != nil {
		return errors.Wrap(err, "failed to init prometheus")
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.server.Addr)
	}
	s.listener = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("metrics server failed", "error", err.Error())
		}
	}()

	s.logger.Info("metrics server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address once Start succeeded.
func (s *Metrics) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Metrics) Close() error {
	return errors.Wrap(s.server.Close(), "failed to close metrics")
}

func NewHttpServer(conf Config, gatherer prometheus.Gatherer) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:           r,
		ReadTimeout:       conf.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
