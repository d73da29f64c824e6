package noop

import (
	"context"
	"sync"

	"github.com/pure-golang/resume-mailer/queue"
)

var _ queue.Publisher = (*Publisher)(nil)

// Publisher keeps published messages in memory and never fails.
type Publisher struct {
	mx       sync.Mutex
	messages []queue.Message
}

// NewPublisher creates a new no-op Publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish stores the messages.
func (p *Publisher) Publish(_ context.Context, msgs ...queue.Message) error {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.messages = append(p.messages, msgs...)
	return nil
}

// Messages returns everything published so far.
func (p *Publisher) Messages() []queue.Message {
	p.mx.Lock()
	defer p.mx.Unlock()
	return append([]queue.Message(nil), p.messages...)
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
