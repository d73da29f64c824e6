package std

import (
	"context"
	stdErr "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/httpserver"
)

const ShutdownTimeout = 15 * time.Second

var _ httpserver.RunableProvider = (*Server)(nil)

// Config of the public API server. WriteTimeout stays 0 by default: one send
// request lasts as long as its batch.
type Config struct {
	Host         string        `envconfig:"WEBSERVER_HOST"`
	Port         int           `envconfig:"WEBSERVER_PORT" default:"8080"`
	TLSCertPath  string        `envconfig:"WEBSERVER_TLS_CERT_PATH"`
	TLSKeyPath   string        `envconfig:"WEBSERVER_TLS_KEY_PATH"`
	ReadTimeout  time.Duration `envconfig:"WEBSERVER_READ_TIMEOUT" default:"60s"`
	WriteTimeout time.Duration `envconfig:"WEBSERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout  time.Duration `envconfig:"WEBSERVER_IDLE_TIMEOUT" default:"120s"`
}

type Server struct {
	logger *slog.Logger
	server *http.Server
	config Config

	mx    sync.Mutex
	ready chan struct{}
	addr  net.Addr
}

// NewDefault creates a server that logs with slog.Default.
func NewDefault(c Config, h http.Handler) *Server {
	return New(c, h, slog.Default())
}

func New(c Config, h http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("webserver")

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", c.Host, c.Port),
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
			ReadTimeout:       c.ReadTimeout,
			WriteTimeout:      c.WriteTimeout,
			IdleTimeout:       c.IdleTimeout,
			ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		logger: logger,
		config: c,
		ready:  make(chan struct{}),
	}
}

// Start listens and serves until Close. Returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.server.Addr)
	}

	s.mx.Lock()
	s.addr = ln.Addr()
	s.mx.Unlock()
	close(s.ready)

	s.logger.Info("server starting", slog.String("addr", ln.Addr().String()))

	if s.config.TLSCertPath == "" {
		err = s.server.Serve(ln)
	} else {
		err = s.server.ServeTLS(ln, s.config.TLSCertPath, s.config.TLSKeyPath)
	}

	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return errors.Wrapf(err, "serve failed")
}

// Addr blocks until the server listens and returns the bound address.
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-s.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mx.Lock()
	defer s.mx.Unlock()
	return s.addr, nil
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		err = stdErr.Join(err, errors.Wrapf(s.server.Close(), "failed to close server"))
	}

	s.logger.Info("server closed")

	return errors.Wrapf(err, "server shutdown failed")
}

func (s *Server) Run() {
	go func() {
		err := s.Start()
		if err != nil {
			s.logger.With("error", err).Error("webserver crashed")
		}
	}()
}
