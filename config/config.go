// Package config gathers the configuration of every component of the service.
package config

import (
	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/compose"
	"github.com/pure-golang/resume-mailer/dispatch"
	"github.com/pure-golang/resume-mailer/env"
	"github.com/pure-golang/resume-mailer/events"
	"github.com/pure-golang/resume-mailer/history"
	"github.com/pure-golang/resume-mailer/httpserver/std"
	"github.com/pure-golang/resume-mailer/kv"
	"github.com/pure-golang/resume-mailer/logger"
	"github.com/pure-golang/resume-mailer/mail/smtp"
	"github.com/pure-golang/resume-mailer/metrics"
	"github.com/pure-golang/resume-mailer/queue/kafka"
	"github.com/pure-golang/resume-mailer/queue/rabbitmq"
	"github.com/pure-golang/resume-mailer/tracing/jaeger"
)

type MailProvider string

const (
	MailProviderSMTP MailProvider = "smtp"
	MailProviderNoop MailProvider = "noop"
)

type Mail struct {
	Provider MailProvider `envconfig:"MAIL_PROVIDER" default:"smtp"`
}

type Config struct {
	Logger   logger.Config
	Tracing  jaeger.Config
	Metrics  metrics.Config
	Server   std.Config
	Mail     Mail
	SMTP     smtp.Config
	Dispatch dispatch.Config
	Limits   compose.Limits
	KV       kv.Config
	Drafts   history.DraftConfig
	Events   events.Config

	// Broker settings are read only for the selected events provider.
	RabbitMQ rabbitmq.Config `ignored:"true"`
	Kafka    kafka.Config    `ignored:"true"`
}

// Load reads Config from the environment and the env file.
func Load() (Config, error) {
	cfg, err := env.Load[Config]()
	if err != nil {
		return Config{}, err
	}

	switch cfg.Mail.Provider {
	case MailProviderSMTP, MailProviderNoop:
	default:
		return Config{}, errors.Errorf("unknown mail provider %q", cfg.Mail.Provider)
	}

	if cfg.KV.Provider == kv.ProviderRedis {
		if err := env.InitConfig(&cfg.KV.Redis); err != nil {
			return Config{}, errors.Wrap(err, "failed to load redis config")
		}
	}

	switch cfg.Events.Provider {
	case events.ProviderRabbitMQ:
		if err := env.InitConfig(&cfg.RabbitMQ); err != nil {
			return Config{}, errors.Wrap(err, "failed to load rabbitmq config")
		}
	case events.ProviderKafka:
		if err := env.InitConfig(&cfg.Kafka); err != nil {
			return Config{}, errors.Wrap(err, "failed to load kafka config")
		}
	}

	return cfg, nil
}
