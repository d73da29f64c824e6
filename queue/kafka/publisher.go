package kafka

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/resume-mailer/queue"
	"github.com/pure-golang/resume-mailer/queue/encoders"
)

var _ queue.Publisher = (*Publisher)(nil)

var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher реализует интерфейс queue.Publisher для Kafka
type Publisher struct {
	mx      sync.Mutex
	cfg     Config
	encoder queue.Encoder
	logger  *slog.Logger
	writer  *kafka.Writer
	closed  bool
}

// NewPublisher создает новый Publisher для Kafka.
// Writer не привязан к теме, тема задается в каждом сообщении.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.WithGroup("kafka")

	return &Publisher{
		cfg:     cfg,
		encoder: encoders.JSON{},
		logger:  logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: cfg.WriteTimeout,
			RequiredAcks: kafka.RequireOne,
			Logger:       kafka.LoggerFunc(func(msg string, args ...any) { logger.Debug(msg, "args", args) }),
			ErrorLogger:  kafka.LoggerFunc(func(msg string, args ...any) { logger.Error(msg, "args", args) }),
		},
	}
}

// Publish публикует сообщения в Kafka (синхронно)
func (p *Publisher) Publish(ctx context.Context, messages ...queue.Message) error {
	p.mx.Lock()
	closed := p.closed
	p.mx.Unlock()
	if closed {
		return ErrPublisherClosed
	}

	batch := make([]kafka.Message, 0, len(messages))
	for _, msg := range messages {
		km, err := p.message(ctx, msg)
		if err != nil {
			return err
		}
		batch = append(batch, km)
	}
	if len(batch) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "Kafka.Publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("topic", batch[0].Topic),
		attribute.Int("messages", len(batch)),
	)

	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrap(err, "failed to publish message to Kafka")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// message собирает kafka.Message, тема по умолчанию берется из конфига
func (p *Publisher) message(ctx context.Context, msg queue.Message) (kafka.Message, error) {
	body, err := msg.EncodeValue(p.encoder)
	if err != nil {
		return kafka.Message{}, errors.Wrap(err, "failed to encode message body")
	}

	topic := msg.Topic
	if topic == "" {
		topic = p.cfg.Topic
	}

	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers["content-type"] = p.encoder.ContentType()
	otel.GetTextMapPropagator().Inject(ctx, headersCarrier(headers))

	km := kafka.Message{
		Topic: topic,
		Key:   []byte(uuid.NewString()),
		Value: body,
	}
	for k, v := range headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km, nil
}

// Close закрывает writer и освобождает ресурсы
func (p *Publisher) Close() error {
	p.mx.Lock()
	defer p.mx.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.writer.Close(); err != nil {
		return errors.Wrap(err, "failed to close Kafka writer")
	}
	p.logger.Info("Kafka publisher closed")
	return nil
}
