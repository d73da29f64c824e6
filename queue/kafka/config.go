package kafka

import "time"

// Config содержит параметры подключения к Kafka
type Config struct {
	Brokers      []string      `envconfig:"KAFKA_BROKERS" required:"true"`
	Topic        string        `envconfig:"KAFKA_TOPIC" default:"batch.completed"`
	WriteTimeout time.Duration `envconfig:"KAFKA_WRITE_TIMEOUT" default:"10s"`
}
