package mail

import "github.com/pkg/errors"

var (
	// ErrSessionClosed is returned by Submit after Close.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNoSender is returned when the message has no from address.
	ErrNoSender = errors.New("no from address specified")

	// ErrNoRecipients is returned when the message has no recipients.
	ErrNoRecipients = errors.New("no recipients specified")
)
