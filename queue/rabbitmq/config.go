package rabbitmq

import "time"

// Config describes where batch events are published.
type Config struct {
	URL         string        `envconfig:"RABBITMQ_URL" required:"true"`
	Exchange    string        `envconfig:"RABBITMQ_EXCHANGE" default:"resume-mailer"`
	RoutingKey  string        `envconfig:"RABBITMQ_ROUTING_KEY" default:"batch.completed"`
	MessageTTL  time.Duration `envconfig:"RABBITMQ_MESSAGE_TTL" default:"0s"`
	DialTimeout time.Duration `envconfig:"RABBITMQ_DIAL_TIMEOUT" default:"5s"`
}
