package smtp

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pure-golang/resume-mailer/logger"
	"github.com/pure-golang/resume-mailer/mail"
)

var _ mail.Dialer = (*Dialer)(nil)

// Dialer opens one authenticated SMTP connection per session.
type Dialer struct {
	cfg Config
}

// NewDialer creates a new SMTP Dialer.
func NewDialer(cfg Config) *Dialer {
	if cfg.TLSMode == "" {
		cfg.TLSMode = TLSImplicit
	}
	return &Dialer{cfg: cfg}
}

// Open dials the server, secures the connection and authenticates with creds.
// The returned session owns the connection until Close.
func (d *Dialer) Open(ctx context.Context, creds mail.Credentials) (mail.Session, error) {
	ctx, span := tracer.Start(ctx, "SMTP.Open", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("smtp.host", d.cfg.Host),
		attribute.Int("smtp.port", d.cfg.Port),
		attribute.String("smtp.tls_mode", string(d.cfg.TLSMode)),
		attribute.Bool("smtp.auth", creds.Username != ""),
	)

	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))

	conn, err := d.dial(ctx, addr)
	if err != nil {
		recordError(span, err, "failed to connect")
		return nil, errors.Wrap(err, "failed to connect to SMTP server")
	}
	if d.cfg.IOTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(d.cfg.IOTimeout))
	}

	client, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		_ = conn.Close()
		recordError(span, err, "failed to greet")
		return nil, errors.Wrap(err, "failed to read SMTP greeting")
	}

	if err := d.handshake(client, creds); err != nil {
		_ = client.Close()
		recordError(span, err, err.Error())
		return nil, err
	}

	sessionsOpened.Add(ctx, 1)
	span.SetStatus(codes.Ok, "")

	return &Session{
		cfg:    d.cfg,
		conn:   conn,
		client: client,
		logger: logger.FromContext(ctx).WithGroup("smtp"),
	}, nil
}

func (d *Dialer) dial(ctx context.Context, addr string) (net.Conn, error) {
	netDialer := &net.Dialer{Timeout: d.cfg.DialTimeout}
	if d.cfg.TLSMode != TLSImplicit {
		return netDialer.DialContext(ctx, "tcp", addr)
	}

	tlsDialer := &tls.Dialer{NetDialer: netDialer, Config: d.tlsConfig()}
	return tlsDialer.DialContext(ctx, "tcp", addr)
}

func (d *Dialer) handshake(client *smtp.Client, creds mail.Credentials) error {
	if d.cfg.LocalName != "" {
		if err := client.Hello(d.cfg.LocalName); err != nil {
			return errors.Wrap(err, "failed to send EHLO")
		}
	}

	if d.cfg.TLSMode == TLSStartTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return errors.New("server does not support STARTTLS")
		}
		if err := client.StartTLS(d.tlsConfig()); err != nil {
			return errors.Wrap(err, "failed to start TLS")
		}
	}

	if creds.Username == "" {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return errors.New("server does not support AUTH")
	}

	auth := smtp.PlainAuth("", creds.Username, creds.Password, d.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return errors.Wrap(err, "failed to authenticate")
	}
	return nil
}

func (d *Dialer) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         d.cfg.Host,
		InsecureSkipVerify: d.cfg.Insecure, // #nosec G402 -- controlled by config, user's responsibility
		MinVersion:         tls.VersionTLS12,
	}
}
