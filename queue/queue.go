package queue

import (
	"context"
	"io"
	"time"
)

// Publisher sends messages to a topic of a message broker.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message) error
	io.Closer
}

// Encoder converts a message body to []byte.
type Encoder interface {
	Encode(i any) ([]byte, error)
	ContentType() string
}

// Message is used to publish messages to a message broker.
type Message struct {
	Topic   string
	Headers map[string]string
	Body    any
	TTL     time.Duration
}

// EncodeValue converts Body to []byte using Encoder if Body != nil.
func (m *Message) EncodeValue(enc Encoder) ([]byte, error) {
	if m.Body == nil {
		return nil, nil
	}
	return enc.Encode(m.Body)
}
