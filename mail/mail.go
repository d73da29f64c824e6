package mail

import (
	"context"
	"io"
)

// Dialer opens mail submission sessions on behalf of a sender.
type Dialer interface {
	Open(ctx context.Context, creds Credentials) (Session, error)
}

// Session is a single authenticated connection to the mail provider.
// Submit calls are serialized: at most one message is in flight.
type Session interface {
	Submit(ctx context.Context, email Email) error
	io.Closer
}

// Credentials identify the sender account. They are forwarded to the
// provider as is and never stored.
type Credentials struct {
	Username string // sender address
	Password string // app password
}

// Email represents an email message.
type Email struct {
	// Envelope
	From    Address
	To      []Address
	Subject string

	// Headers
	Headers map[string]string

	// Body
	Body        string // Plain text body
	Attachments []Attachment
}

// Address represents an email address.
type Address struct {
	Name    string // "John Doe"
	Address string // "john@example.com"
}

// Attachment is a file sent together with the message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Size returns the total size of attachments in bytes.
func (e Email) Size() int64 {
	var n int64
	for _, a := range e.Attachments {
		n += int64(len(a.Content))
	}
	return n
}
