package rabbitmq

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/resume-mailer/queue"
	"github.com/pure-golang/resume-mailer/queue/encoders"
)

var _ queue.Publisher = (*Publisher)(nil)

var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher sends batch events to a topic exchange.
type Publisher struct {
	mx       sync.Mutex
	dialer   *Dialer
	cfg      Config
	encoder  queue.Encoder
	channel  *amqp.Channel
	notify   <-chan *amqp.Error
	declared bool
	closed   bool
}

// NewPublisher creates a Publisher. Nothing is dialed until Connect.
func NewPublisher(cfg Config, logger *slog.Logger) *Publisher {
	notify := make(chan *amqp.Error, 1)
	close(notify)

	return &Publisher{
		dialer: NewDialer(cfg.URL, &DialerOptions{
			Logger:         logger,
			DialTimeout:    cfg.DialTimeout,
			ConnectionName: "resume-mailer",
		}),
		cfg:     cfg,
		encoder: encoders.JSON{},
		notify:  notify,
	}
}

// Connect dials the broker.
func (p *Publisher) Connect() error {
	return p.dialer.Connect()
}

// Publish messages to the exchange. Method is sync.
func (p *Publisher) Publish(ctx context.Context, messages ...queue.Message) error {
	p.mx.Lock()
	defer p.mx.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}
	if err := p.ensureChannel(); err != nil {
		return err
	}

	for _, msg := range messages {
		if err := p.publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) ensureChannel() error {
	select {
	case <-p.notify:
	default:
		return nil
	}

	channel, err := p.dialer.Channel()
	if err != nil {
		return err
	}
	if !p.declared {
		err = channel.ExchangeDeclare(p.cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
		if err != nil {
			_ = channel.Close()
			return errors.Wrapf(err, "failed to declare exchange %q", p.cfg.Exchange)
		}
		p.declared = true
	}
	p.channel = channel
	p.notify = channel.NotifyClose(make(chan *amqp.Error, 1))
	return nil
}

func (p *Publisher) publish(ctx context.Context, msg queue.Message) error {
	ctx, span := tracer.Start(ctx, "RabbitMQ.Publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	body, err := msg.EncodeValue(p.encoder)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrap(err, "failed to encode message body")
	}

	amqpMsg := amqp.Publishing{
		ContentType:  p.encoder.ContentType(),
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Headers:      amqp.Table{},
	}
	for k, v := range msg.Headers {
		amqpMsg.Headers[k] = v
	}
	if ttl := expiration(p.cfg, msg); ttl != "" {
		amqpMsg.Expiration = ttl
	}

	otel.GetTextMapPropagator().Inject(ctx, tableCarrier(amqpMsg.Headers))

	routingKey := p.cfg.RoutingKey
	if msg.Topic != "" {
		routingKey = msg.Topic
	}

	span.SetAttributes(
		attribute.String("id", amqpMsg.MessageId),
		attribute.String("exchange", p.cfg.Exchange),
		attribute.String("key", routingKey),
		attribute.Int("body_size", len(amqpMsg.Body)),
	)

	err = p.channel.PublishWithContext(ctx, p.cfg.Exchange, routingKey, false, false, amqpMsg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errors.Wrap(err, "failed to publish message to RabbitMQ")
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// expiration returns the AMQP expiration in milliseconds. A per-message TTL wins.
func expiration(cfg Config, msg queue.Message) string {
	ttl := cfg.MessageTTL
	if msg.TTL > 0 {
		ttl = msg.TTL
	}
	if ttl <= 0 {
		return ""
	}
	return strconv.FormatInt(ttl.Milliseconds(), 10)
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	p.mx.Lock()
	defer p.mx.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.channel != nil && !p.channel.IsClosed() {
		_ = p.channel.Close()
	}
	return p.dialer.Close()
}
