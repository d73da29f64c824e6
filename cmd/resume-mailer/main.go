package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/pure-golang/resume-mailer/api"
	"github.com/pure-golang/resume-mailer/config"
	"github.com/pure-golang/resume-mailer/dispatch"
	"github.com/pure-golang/resume-mailer/events"
	"github.com/pure-golang/resume-mailer/history"
	"github.com/pure-golang/resume-mailer/httpserver/std"
	"github.com/pure-golang/resume-mailer/kv"
	"github.com/pure-golang/resume-mailer/logger"
	"github.com/pure-golang/resume-mailer/mail"
	mailnoop "github.com/pure-golang/resume-mailer/mail/noop"
	"github.com/pure-golang/resume-mailer/mail/smtp"
	"github.com/pure-golang/resume-mailer/metrics"
	"github.com/pure-golang/resume-mailer/tracing"
	"github.com/pure-golang/resume-mailer/tracing/jaeger"
)

func main() {
	if err := run(); err != nil {
		logger.WithErr(err).Error("resume-mailer stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger.InitDefault(cfg.Logger)
	log := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.EndPoint != "" {
		tp, err := tracing.Init(jaeger.NewProviderBuilder(cfg.Tracing))
		if err != nil {
			log.Warn("tracing disabled", "error", err.Error())
		}
		defer closeQuietly(log, "tracing", tp)
	}

	if cfg.Metrics.Enabled {
		m, err := metrics.InitDefault(cfg.Metrics, log)
		if err != nil {
			return err
		}
		defer closeQuietly(log, "metrics", m)
	}

	store, err := kv.New(ctx, cfg.KV, log)
	if err != nil {
		return errors.Wrap(err, "failed to create kv store")
	}
	defer closeQuietly(log, "kv", store)

	publisher, err := events.NewPublisher(cfg.Events, cfg.RabbitMQ, cfg.Kafka, log)
	if err != nil {
		return errors.Wrap(err, "failed to create events publisher")
	}
	defer closeQuietly(log, "events", publisher)

	var dialer mail.Dialer = smtp.NewDialer(cfg.SMTP)
	if cfg.Mail.Provider == config.MailProviderNoop {
		log.Warn("mail provider is noop, nothing will be delivered")
		dialer = mailnoop.NewDialer()
	}

	service := dispatch.NewService(dialer, dispatch.NewOrchestrator(cfg.Dispatch), publisher, cfg.Limits)
	handler := api.NewHandler(
		service,
		history.NewStore(store),
		history.NewDrafts(store, cfg.Drafts),
		store,
		cfg.Limits,
	)
	server := std.New(cfg.Server, handler.Routes(), log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return server.Close()
	})

	return g.Wait()
}

func closeQuietly(log *slog.Logger, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close "+name, "error", err.Error())
	}
}
