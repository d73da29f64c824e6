package noop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/resume-mailer/mail"
)

func TestSession_Submit(t *testing.T) {
	dialer := NewDialer()

	ctx := context.Background()
	session, err := dialer.Open(ctx, mail.Credentials{Username: "me@example.com"})
	require.NoError(t, err)

	email := mail.Email{
		From:    mail.Address{Address: "me@example.com"},
		To:      []mail.Address{{Address: "to@example.com"}},
		Subject: "Test",
		Body:    "Test body",
	}

	assert.NoError(t, session.Submit(ctx, email))
	assert.Equal(t, 1, dialer.Opened())
	require.Len(t, dialer.Submitted(), 1)
	assert.Equal(t, "to@example.com", dialer.Submitted()[0].To[0].Address)
}

func TestSession_SubmitAfterClose(t *testing.T) {
	dialer := NewDialer()

	session, err := dialer.Open(context.Background(), mail.Credentials{})
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	err = session.Submit(context.Background(), mail.Email{})
	assert.ErrorIs(t, err, mail.ErrSessionClosed)
	assert.Empty(t, dialer.Submitted())
}
