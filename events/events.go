// Package events publishes a report for every completed batch.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/pure-golang/resume-mailer/queue"
	"github.com/pure-golang/resume-mailer/queue/kafka"
	"github.com/pure-golang/resume-mailer/queue/noop"
	"github.com/pure-golang/resume-mailer/queue/rabbitmq"
)

type Provider string

const (
	ProviderNoop     Provider = "noop"
	ProviderRabbitMQ Provider = "rabbitmq"
	ProviderKafka    Provider = "kafka"
)

// TopicBatchCompleted is the topic of Report messages.
const TopicBatchCompleted = "batch.completed"

type Config struct {
	Provider Provider `envconfig:"EVENTS_PROVIDER" default:"noop"`
}

// NewPublisher builds the publisher selected by cfg.Provider. The broker
// configuration is read from the environment by the caller.
func NewPublisher(cfg Config, rabbit rabbitmq.Config, kfk kafka.Config, logger *slog.Logger) (queue.Publisher, error) {
	switch cfg.Provider {
	case ProviderRabbitMQ:
		p := rabbitmq.NewPublisher(rabbit, logger)
		if err := p.Connect(); err != nil {
			return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
		}
		return p, nil
	case ProviderKafka:
		if len(kfk.Brokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is empty")
		}
		return kafka.NewPublisher(kfk, logger), nil
	case ProviderNoop, "":
		return noop.NewPublisher(), nil
	default:
		return nil, errors.Errorf("unknown events provider %q", cfg.Provider)
	}
}

// Report describes a finished batch. Credentials and message content are never included.
type Report struct {
	BatchID     string         `json:"batch_id"`
	Account     string         `json:"account"`
	Subject     string         `json:"subject"`
	Total       int            `json:"total"`
	Successful  int            `json:"successful"`
	Failed      int            `json:"failed"`
	ElapsedMS   int64          `json:"elapsed_ms"`
	Outcomes    []ReportRecord `json:"outcomes"`
	CompletedAt time.Time      `json:"completed_at"`
}

type ReportRecord struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// Publish sends r to the batch topic.
func Publish(ctx context.Context, p queue.Publisher, r Report) error {
	return p.Publish(ctx, queue.Message{
		Topic:   TopicBatchCompleted,
		Headers: map[string]string{"batch_id": r.BatchID},
		Body:    r,
	})
}
